package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/vacation-gallery/internal/domain"
)

// csvHeaders is the first row of every CSV export.
var csvHeaders = []string{
	"trip_id", "trip_name", "trip_start_date", "trip_end_date",
	"photo_filename", "photo_title", "taken_at", "latitude", "longitude",
	"city", "country", "landmark", "tags",
}

// ExportRow is one row of the JSON export.
type ExportRow struct {
	TripID        string     `json:"trip_id"`
	TripName      string     `json:"trip_name"`
	TripStartDate string     `json:"trip_start_date"`
	TripEndDate   *string    `json:"trip_end_date,omitempty"`
	PhotoFilename *string    `json:"photo_filename,omitempty"`
	PhotoTitle    *string    `json:"photo_title,omitempty"`
	TakenAt       *time.Time `json:"taken_at,omitempty"`
	Latitude      *float64   `json:"latitude,omitempty"`
	Longitude     *float64   `json:"longitude,omitempty"`
	City          *string    `json:"city,omitempty"`
	Country       *string    `json:"country,omitempty"`
	Landmark      *string    `json:"landmark,omitempty"`
	Tags          []string   `json:"tags"`
}

// GetExport handles GET /export. It returns one row per photo, and one
// row for each trip without photos. ?format=csv selects CSV; JSON is the
// default.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	var format *string
	if !queryParam(w, r, "format", &format) {
		return
	}
	wantCSV := false
	switch derefString(format) {
	case "", "json":
	case "csv":
		wantCSV = true
	default:
		writeError(w, http.StatusBadRequest, "bad_request", "format must be csv or json")
		return
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "nothing to export")
		return
	}

	if wantCSV {
		writeCSV(w, rows)
		return
	}
	out := make([]ExportRow, len(rows))
	for i, row := range rows {
		out[i] = exportRowToResponse(row)
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSV encodes rows as CSV. Tags within a row are joined with "|" so
// every photo stays on one line.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	_ = cw.Write(csvHeaders)
	for _, row := range rows {
		_ = cw.Write(exportRowToCSV(row))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="gallery-export.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func exportRowToResponse(r domain.ExportRow) ExportRow {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return ExportRow{
		TripID:        r.TripID,
		TripName:      r.TripName,
		TripStartDate: r.TripStartDate,
		TripEndDate:   optionalString(r.TripEndDate),
		PhotoFilename: optionalString(r.PhotoFilename),
		PhotoTitle:    optionalString(r.PhotoTitle),
		TakenAt:       r.TakenAt,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
		City:          optionalString(r.City),
		Country:       optionalString(r.Country),
		Landmark:      optionalString(r.Landmark),
		Tags:          tags,
	}
}

func exportRowToCSV(r domain.ExportRow) []string {
	return []string{
		r.TripID,
		r.TripName,
		r.TripStartDate,
		r.TripEndDate,
		r.PhotoFilename,
		r.PhotoTitle,
		formatOptionalTime(r.TakenAt),
		formatOptionalFloat(r.Latitude),
		formatOptionalFloat(r.Longitude),
		r.City,
		r.Country,
		r.Landmark,
		strings.Join(r.Tags, "|"),
	}
}

// formatOptionalTime returns t as RFC 3339 in UTC, or "" if t is nil.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

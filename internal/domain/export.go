package domain

import "time"

// ExportRow is a single row in the full-data export.
// It is a flat, denormalized view: one row per photo, with trip fields repeated
// for every photo on that trip. Trips with no photos yield one row with zero
// values for all photo fields.
//
// Tags is a slice of slugs for the photo, ordered alphabetically.
type ExportRow struct {
	// Trip fields, repeated for every photo on the trip.
	TripID        string
	TripName      string
	TripStartDate string // "2006-01-02" formatted date
	TripEndDate   string // empty string when nil

	// Photo fields; zero values when the trip has no photos.
	PhotoFilename string
	PhotoTitle    string
	TakenAt       *time.Time
	Latitude      *float64
	Longitude     *float64
	City          string
	Country       string
	Landmark      string

	Tags []string
}

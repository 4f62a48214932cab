package geocode

import (
	"strconv"
	"strings"

	"github.com/pkordes/vacation-gallery/internal/domain"
)

// nominatimResponse is the jsonv2 body of GET /reverse.
// A coordinate with nothing nearby yields {"error": "Unable to geocode"}.
type nominatimResponse struct {
	Error       string            `json:"error"`
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Type        string            `json:"type"`
	Class       string            `json:"class"`
	Category    string            `json:"category"` // jsonv2 name for class
	BoundingBox []string          `json:"boundingbox"` // [min_lat, max_lat, min_lon, max_lon]
	Address     *nominatimAddress `json:"address"`
}

type nominatimAddress struct {
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
	Suburb       string `json:"suburb"`
	State        string `json:"state"`
	Region       string `json:"region"`
	Country      string `json:"country"`
	CountryCode  string `json:"country_code"`
}

// toPlace maps a response to a Place. It returns nil when the response has
// no address block, which is how Nominatim reports "nothing here".
func (r nominatimResponse) toPlace(at domain.Coordinate, landmarkClasses map[string]bool) *domain.Place {
	if r.Error != "" || r.Address == nil {
		return nil
	}
	a := r.Address
	p := &domain.Place{
		City:        firstNonEmpty(a.City, a.Town, a.Village, a.Municipality, a.Suburb),
		State:       firstNonEmpty(a.State, a.Region),
		Country:     a.Country,
		CountryCode: strings.ToUpper(a.CountryCode),
		DisplayName: r.DisplayName,
		Lat:         at.Lat,
		Lon:         at.Lon,
	}
	class := firstNonEmpty(r.Class, r.Category)
	if r.Name != "" && (landmarkClasses[class] || landmarkClasses[r.Type]) {
		p.Landmark = r.Name
	}
	return p
}

// bounds returns the result's bounding box grown to include the query
// point, or false when Nominatim sent no usable box.
func (r nominatimResponse) bounds(at domain.Coordinate) (domain.BBox, bool) {
	if len(r.BoundingBox) != 4 {
		return domain.BBox{}, false
	}
	var v [4]float64
	for i, s := range r.BoundingBox {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.BBox{}, false
		}
		v[i] = f
	}
	b := domain.BBox{MinLat: v[0], MaxLat: v[1], MinLon: v[2], MaxLon: v[3]}
	return b.Extend(at), true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

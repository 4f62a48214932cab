package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TransportProfile is the travel mode a route is planned for.
// Values match the OpenRouteService profile path segment.
type TransportProfile string

const (
	ProfileDrivingCar      TransportProfile = "driving-car"
	ProfileDrivingHGV      TransportProfile = "driving-hgv"
	ProfileCyclingRegular  TransportProfile = "cycling-regular"
	ProfileCyclingRoad     TransportProfile = "cycling-road"
	ProfileCyclingMountain TransportProfile = "cycling-mountain"
	ProfileCyclingElectric TransportProfile = "cycling-electric"
	ProfileFootWalking     TransportProfile = "foot-walking"
	ProfileFootHiking      TransportProfile = "foot-hiking"
	ProfileWheelchair      TransportProfile = "wheelchair"
)

// Profiles lists every supported transport profile.
var Profiles = []TransportProfile{
	ProfileDrivingCar,
	ProfileDrivingHGV,
	ProfileCyclingRegular,
	ProfileCyclingRoad,
	ProfileCyclingMountain,
	ProfileCyclingElectric,
	ProfileFootWalking,
	ProfileFootHiking,
	ProfileWheelchair,
}

// Valid reports whether p is one of Profiles.
func (p TransportProfile) Valid() bool {
	for _, known := range Profiles {
		if p == known {
			return true
		}
	}
	return false
}

// Route is a planned path through an ordered list of stops.
// Segments connect consecutive stops and carry the routed geometry.
type Route struct {
	ID        uuid.UUID
	TripID    uuid.UUID
	Title     string
	Profile   TransportProfile
	Stops     []Stop
	Segments  []Segment
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stop is a single waypoint on a route. OrderIndex defines traversal order.
type Stop struct {
	ID          uuid.UUID
	RouteID     uuid.UUID
	Coordinate  Coordinate
	OrderIndex  int
	Title       string
	Description string
	Place       Place
}

// Segment is the routed path between two consecutive stops.
//
// Geometry is either an encoded polyline (optionally prefixed with a
// precision marker, see routepath.DecodeGeometry) or GeoJSON text.
// CoordsHash identifies the profile and endpoints so identical legs can
// reuse geometry instead of calling the routing provider again.
type Segment struct {
	ID          uuid.UUID
	RouteID     uuid.UUID
	StartStopID uuid.UUID
	EndStopID   uuid.UUID
	Distance    float64 // metres
	Duration    float64 // seconds
	Geometry    string
	CoordsHash  string
}

// Path is the display-ready result of aggregating a route.
// Points is the merged raw polyline, Smoothed the curve drawn on the map.
// Distance and Duration cover the segments in Points, not SkippedSegments.
type Path struct {
	RouteID         uuid.UUID
	Points          []Coordinate
	Smoothed        []Coordinate
	Bounds          *BBox
	Distance        float64
	Duration        float64
	SkippedSegments []uuid.UUID
}

// CoordsHash identifies a leg by profile and endpoints. Coordinates are
// rounded to 6 decimals so tiny float noise still hits the same entry.
func CoordsHash(profile TransportProfile, from, to Coordinate) string {
	key := fmt.Sprintf("%s|%.6f,%.6f|%.6f,%.6f", profile, from.Lat, from.Lon, to.Lat, to.Lon)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

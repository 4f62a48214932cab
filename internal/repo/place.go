package repo

import "github.com/pkordes/vacation-gallery/internal/domain"

// placeColumns are the reverse-geocoding columns shared by photos,
// route_stops and geocache, in placeDest order.
const placeColumns = `city, state, country, country_code, landmark, display_name`

func placeDest(p *domain.Place) []any {
	return []any{&p.City, &p.State, &p.Country, &p.CountryCode, &p.Landmark, &p.DisplayName}
}

func placeArgs(p domain.Place, args map[string]any) {
	args["city"] = p.City
	args["state"] = p.State
	args["country"] = p.Country
	args["country_code"] = p.CountryCode
	args["landmark"] = p.Landmark
	args["display_name"] = p.DisplayName
}

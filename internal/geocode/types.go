package geocode

// nominatimAddress mirrors the address components of the OSM reverse payload.
type nominatimAddress struct {
	Road          string `json:"road"`
	HouseNumber   string `json:"house_number"`
	Neighbourhood string `json:"neighbourhood"`
	Suburb        string `json:"suburb"`
	City          string `json:"city"`
	State         string `json:"state"`
	Country       string `json:"country"`
}

// nominatimResponse mirrors the relevant parts of the OSM reverse payload.
type nominatimResponse struct {
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
}

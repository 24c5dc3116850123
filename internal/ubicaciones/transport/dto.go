package transport

import "github.com/google/uuid"

// LookupRequest contains data for the reverse-geocoding lookup endpoint.
// All three fields are required on this endpoint even though lat/lon are
// optional in the persistence model.
type LookupRequest struct {
	Nombre string   `json:"nombre" validate:"required,min=1,max=255"`
	Lat    *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon    *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

// UbicacionResponse represents a location in API responses.
type UbicacionResponse struct {
	ID        uuid.UUID `json:"id"`
	Nombre    string    `json:"nombre"`
	Lat       *float64  `json:"lat,omitempty"`
	Lon       *float64  `json:"lon,omitempty"`
	Status    string    `json:"status"`
	CreatedAt string    `json:"createdAt"`
}

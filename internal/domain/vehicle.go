package domain

import "time"

// VehicleStatus enumerates inventory lifecycle states.
type VehicleStatus string

const (
	VehicleStatusAvailable VehicleStatus = "AVAILABLE"
	VehicleStatusReserved  VehicleStatus = "RESERVED"
	VehicleStatusSold      VehicleStatus = "SOLD"
	VehicleStatusInService VehicleStatus = "IN_SERVICE"
)

// Vehicle models one inventory unit. Latitude and longitude are nil for units
// that have not been geotagged; CustomerID is set once a customer is assigned.
type Vehicle struct {
	ID         string
	VIN        string
	Make       string
	Model      string
	Year       int
	Price      float64
	Status     VehicleStatus
	Latitude   *float64
	Longitude  *float64
	CustomerID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// VehicleLocation is the locator projection: only geotagged units appear.
type VehicleLocation struct {
	ID        string
	VIN       string
	Make      string
	Model     string
	Status    VehicleStatus
	Latitude  float64
	Longitude float64
}

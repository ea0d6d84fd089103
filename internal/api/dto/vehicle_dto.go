package dto

import "time"

// VehicleRequest payload for vehicle create/update.
type VehicleRequest struct {
	VIN       string   `json:"vin"`
	Make      string   `json:"make"`
	Model     string   `json:"model"`
	Year      int      `json:"year"`
	Price     float64  `json:"price"`
	Status    string   `json:"status"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// VehicleSummary is the wire shape for a vehicle.
type VehicleSummary struct {
	ID         string    `json:"id"`
	VIN        string    `json:"vin"`
	Make       string    `json:"make"`
	Model      string    `json:"model"`
	Year       int       `json:"year"`
	Price      float64   `json:"price"`
	Status     string    `json:"status"`
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	CustomerID *string   `json:"customerId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// VehicleLocationSummary is the locator projection for the map screen.
type VehicleLocationSummary struct {
	ID        string  `json:"id"`
	VIN       string  `json:"vin"`
	Make      string  `json:"make"`
	Model     string  `json:"model"`
	Status    string  `json:"status"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

package domain

import "time"

// Customer is a dealership customer record. Customers never authenticate;
// they exist to be assigned to vehicles and looked up by email.
type Customer struct {
	ID          string
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

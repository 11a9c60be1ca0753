package domain

import "time"

// DefaultCountry is stored when an address is created without a country.
const DefaultCountry = "India"

// Address is a postal address owned by exactly one customer.
type Address struct {
	ID          string    `json:"address_id"`
	CustomerID  string    `json:"customer_id"`
	HouseColony string    `json:"house_colony"`
	Landmark    *string   `json:"landmark"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Pincode     string    `json:"pincode"`
	Country     string    `json:"country"`
	CreatedAt   time.Time `json:"created_at"`
}

// Customer represents a registered account together with its addresses.
type Customer struct {
	ID           string    `json:"customer_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	Addresses    []Address `json:"addresses"`
	CreatedAt    time.Time `json:"created_at"`
}

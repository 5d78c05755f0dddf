package types

import "strings"

// Address captures the delivery destination submitted with an order.
// Stored as jsonb via the gorm json serializer.
type Address struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	Area     string `json:"area,omitempty"`
	City     string `json:"city"`
	Postcode string `json:"postcode,omitempty"`
}

// IsZero reports whether the address carries no usable fields.
func (a Address) IsZero() bool {
	return strings.TrimSpace(a.Name) == "" &&
		strings.TrimSpace(a.Phone) == "" &&
		strings.TrimSpace(a.Line1) == "" &&
		strings.TrimSpace(a.City) == ""
}

package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AddressTypeHome  = "home"
	AddressTypeWork  = "work"
	AddressTypeOther = "other"
)

type Address struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	User        primitive.ObjectID `json:"user" bson:"user"`
	FullName    string             `json:"fullName" bson:"fullName"`
	Phone       string             `json:"phone" bson:"phone"`
	Street      string             `json:"street" bson:"street"`
	City        string             `json:"city" bson:"city"`
	State       string             `json:"state" bson:"state"`
	ZipCode     string             `json:"zipCode" bson:"zipCode"`
	Country     string             `json:"country" bson:"country"`
	IsDefault   bool               `json:"isDefault" bson:"isDefault"`
	AddressType string             `json:"addressType" bson:"addressType"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Normalize trims whitespace on every field and defaults country and type.
func (a *Address) Normalize() {
	a.FullName = strings.TrimSpace(a.FullName)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.ZipCode = strings.TrimSpace(a.ZipCode)
	a.Country = strings.TrimSpace(a.Country)
	if a.Country == "" {
		a.Country = "United States"
	}
	switch a.AddressType {
	case AddressTypeHome, AddressTypeWork, AddressTypeOther:
	default:
		a.AddressType = AddressTypeHome
	}
}

// SameLocation reports whether two addresses match on the dedup key:
// trimmed street, city, state and zip.
func (a *Address) SameLocation(street, city, state, zip string) bool {
	return a.Street == strings.TrimSpace(street) &&
		a.City == strings.TrimSpace(city) &&
		a.State == strings.TrimSpace(state) &&
		a.ZipCode == strings.TrimSpace(zip)
}

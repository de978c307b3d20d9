package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncStockStatus(t *testing.T) {
	p := &Product{Stock: 0}
	p.SyncStockStatus()
	assert.False(t, p.InStock)
	assert.Equal(t, StockStatusOut, p.Status)

	p = &Product{Stock: 10}
	p.SyncStockStatus()
	assert.True(t, p.InStock)
	assert.Equal(t, StockStatusLow, p.Status)

	p = &Product{Stock: 11}
	p.SyncStockStatus()
	assert.Equal(t, StockStatusIn, p.Status)
}

func TestSyncStockStatusImageFallback(t *testing.T) {
	p := &Product{Stock: 5, ImageURL: "https://cdn.example.com/throw.jpg"}
	p.SyncStockStatus()
	assert.Equal(t, []string{"https://cdn.example.com/throw.jpg"}, p.Images)

	p = &Product{Stock: 5, ImageURL: "https://cdn.example.com/throw.jpg", Images: []string{"a.jpg"}}
	p.SyncStockStatus()
	assert.Equal(t, []string{"a.jpg"}, p.Images, "existing gallery untouched")
}

func TestUserRoles(t *testing.T) {
	customer := &User{Role: RoleCustomer}
	assert.False(t, customer.IsStaffMember())
	assert.False(t, customer.HasRole(RoleAdmin))

	staff := &User{Role: RoleStaff}
	assert.True(t, staff.IsStaffMember())
	assert.False(t, staff.HasRole(RoleAdmin))

	legacyAdmin := &User{Role: RoleCustomer, IsAdmin: true}
	assert.True(t, legacyAdmin.HasRole(RoleAdmin))
	assert.True(t, legacyAdmin.IsStaffMember())
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{RoleCustomer, RoleStaff, RoleManager, RoleAdmin} {
		role, ok := ParseRole(valid)
		assert.True(t, ok, valid)
		assert.Equal(t, valid, role)
	}
	for _, invalid := range []string{"", "Admin", "superuser"} {
		_, ok := ParseRole(invalid)
		assert.False(t, ok, invalid)
	}
}

func TestParseUserStatus(t *testing.T) {
	for _, valid := range []string{UserStatusActive, UserStatusInactive} {
		status, ok := ParseUserStatus(valid)
		assert.True(t, ok, valid)
		assert.Equal(t, valid, status)
	}
	_, ok := ParseUserStatus("suspended")
	assert.False(t, ok)
}

func TestAddressNormalize(t *testing.T) {
	a := &Address{Street: "  12 Mill Lane ", City: " Portland", AddressType: "castle"}
	a.Normalize()
	assert.Equal(t, "12 Mill Lane", a.Street)
	assert.Equal(t, "Portland", a.City)
	assert.Equal(t, "United States", a.Country)
	assert.Equal(t, AddressTypeHome, a.AddressType)

	b := &Address{Country: "Canada", AddressType: AddressTypeWork}
	b.Normalize()
	assert.Equal(t, "Canada", b.Country)
	assert.Equal(t, AddressTypeWork, b.AddressType)
}

func TestAddressSameLocation(t *testing.T) {
	a := &Address{Street: "12 Mill Lane", City: "Portland", State: "OR", ZipCode: "97201"}
	assert.True(t, a.SameLocation(" 12 Mill Lane ", "Portland", "OR", "97201"))
	assert.False(t, a.SameLocation("13 Mill Lane", "Portland", "OR", "97201"))
}

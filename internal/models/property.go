package models

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PropertyType string

const (
	PropertyTypeApartment PropertyType = "apartment"
	PropertyTypeHouse     PropertyType = "house"
	PropertyTypeVilla     PropertyType = "villa"
	PropertyTypeOffice    PropertyType = "office"
	PropertyTypeLand      PropertyType = "land"
	PropertyTypeOther     PropertyType = "other"
)

func (t PropertyType) IsValid() bool {
	switch t {
	case PropertyTypeApartment, PropertyTypeHouse, PropertyTypeVilla,
		PropertyTypeOffice, PropertyTypeLand, PropertyTypeOther:
		return true
	}
	return false
}

type PropertyPurpose string

const (
	PropertyPurposeSale PropertyPurpose = "sale"
	PropertyPurposeRent PropertyPurpose = "rent"
)

func (p PropertyPurpose) IsValid() bool {
	return p == PropertyPurposeSale || p == PropertyPurposeRent
}

type PropertyStatus string

const (
	PropertyStatusAvailable        PropertyStatus = "available"
	PropertyStatusRented           PropertyStatus = "rented"
	PropertyStatusSold             PropertyStatus = "sold"
	PropertyStatusUnderMaintenance PropertyStatus = "under_maintenance"
)

func (s PropertyStatus) IsValid() bool {
	switch s {
	case PropertyStatusAvailable, PropertyStatusRented, PropertyStatusSold, PropertyStatusUnderMaintenance:
		return true
	}
	return false
}

// Property is a listed real-estate unit. OwnerID is set at creation and never changes.
type Property struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	OwnerID      uuid.UUID       `json:"owner_id" db:"owner_id"`
	Title        string          `json:"title" db:"title"`
	Description  *string         `json:"description,omitempty" db:"description"`
	Address      string          `json:"address" db:"address"`
	City         string          `json:"city" db:"city"`
	Country      string          `json:"country" db:"country"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Currency     string          `json:"currency" db:"currency"`
	PropertyType PropertyType    `json:"property_type" db:"property_type"`
	Purpose      PropertyPurpose `json:"purpose" db:"purpose"`
	Bedrooms     int             `json:"bedrooms" db:"bedrooms"`
	Bathrooms    int             `json:"bathrooms" db:"bathrooms"`
	Size         decimal.Decimal `json:"size" db:"size"`
	Status       PropertyStatus  `json:"status" db:"status"`
	Amenities    []string        `json:"amenities" db:"amenities"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// PropertyInput holds the caller-editable fields. There is no owner field.
type PropertyInput struct {
	Title        string          `json:"title"`
	Description  *string         `json:"description"`
	Address      string          `json:"address"`
	City         string          `json:"city"`
	Country      string          `json:"country"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	PropertyType PropertyType    `json:"property_type"`
	Purpose      PropertyPurpose `json:"purpose"`
	Bedrooms     int             `json:"bedrooms"`
	Bathrooms    int             `json:"bathrooms"`
	Size         decimal.Decimal `json:"size"`
	Amenities    []string        `json:"amenities"`
}

// PropertyFilter narrows property searches. Zero values are ignored.
type PropertyFilter struct {
	City         string
	PropertyType PropertyType
	Purpose      PropertyPurpose
	Status       PropertyStatus
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	MinBedrooms  int
	OwnerID      *uuid.UUID
	Limit        int
	Offset       int
}

// NormalizeAmenities treats amenities as a set: trimmed, lower-cased, deduplicated and sorted.
func NormalizeAmenities(amenities []string) []string {
	seen := make(map[string]struct{}, len(amenities))
	out := make([]string, 0, len(amenities))
	for _, a := range amenities {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// PropertySnapshot is the denormalized copy stored in shortlists.
type PropertySnapshot struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	City         string          `json:"city"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	PropertyType PropertyType    `json:"property_type"`
	Purpose      PropertyPurpose `json:"purpose"`
	Bedrooms     int             `json:"bedrooms"`
	Bathrooms    int             `json:"bathrooms"`
	Size         decimal.Decimal `json:"size"`
	Status       PropertyStatus  `json:"status"`
	AddedAt      time.Time       `json:"added_at"`
}

func (p *Property) Snapshot(now time.Time) PropertySnapshot {
	return PropertySnapshot{
		ID:           p.ID,
		Title:        p.Title,
		City:         p.City,
		Price:        p.Price,
		Currency:     p.Currency,
		PropertyType: p.PropertyType,
		Purpose:      p.Purpose,
		Bedrooms:     p.Bedrooms,
		Bathrooms:    p.Bathrooms,
		Size:         p.Size,
		Status:       p.Status,
		AddedAt:      now,
	}
}

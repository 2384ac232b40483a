package model

import (
	"time"
)

// ClientType enum constants
const (
	ClientTypeIndividual = "INDIVIDUAL"
	ClientTypeCorporate  = "CORPORATE"
)

// Client is a registered taxpayer. Identity fields (email, tax identification
// number) are globally unique; the record is immutable after registration.
type Client struct {
	ID                      uint            `gorm:"primaryKey" json:"id"`
	FullName                string          `gorm:"type:varchar(200);not null" json:"full_name"`
	Email                   string          `gorm:"type:varchar(200);uniqueIndex;not null" json:"email"`
	TaxIdentificationNumber string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"tax_identification_number"`
	ClientType              string          `gorm:"type:varchar(20);not null" json:"client_type"` // INDIVIDUAL, CORPORATE
	CreatedAt               time.Time       `json:"created_at"`
	TaxSubmissions          []TaxSubmission `gorm:"foreignKey:ClientID" json:"-"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusApproved KYCStatus = "approved"
	KYCStatusRejected KYCStatus = "rejected"
)

// Approved KYC may still be revoked. Rejected KYC returns to pending on resubmission.
var kycTransitions = map[KYCStatus][]KYCStatus{
	KYCStatusPending:  {KYCStatusApproved, KYCStatusRejected},
	KYCStatusApproved: {KYCStatusRejected},
	KYCStatusRejected: {KYCStatusPending},
}

func (s KYCStatus) CanTransitionTo(next KYCStatus) bool {
	for _, allowed := range kycTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type IDType string

const (
	IDTypePassport        IDType = "passport"
	IDTypeNationalID      IDType = "national_id"
	IDTypeDriversLicense  IDType = "drivers_license"
	IDTypeResidencePermit IDType = "residence_permit"
)

func (t IDType) IsValid() bool {
	switch t {
	case IDTypePassport, IDTypeNationalID, IDTypeDriversLicense, IDTypeResidencePermit:
		return true
	}
	return false
}

// KYCVerification is the one-per-user identity verification record.
type KYCVerification struct {
	ID               uuid.UUID `json:"id" db:"id"`
	UserID           uuid.UUID `json:"user_id" db:"user_id"`
	IDType           IDType    `json:"id_type" db:"id_type"`
	IDNumber         string    `json:"id_number" db:"id_number"`
	DocumentFrontURL string    `json:"document_front_url" db:"document_front_url"`
	DocumentBackURL  string    `json:"document_back_url" db:"document_back_url"`
	// Front and back download links, presigned on read.
	DocumentFrontLink string     `json:"document_front_link,omitempty" db:"-"`
	DocumentBackLink  string     `json:"document_back_link,omitempty" db:"-"`
	Status            KYCStatus  `json:"status" db:"status"`
	RejectionReason   *string    `json:"rejection_reason,omitempty" db:"rejection_reason"`
	ReviewedBy        *uuid.UUID `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt        *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

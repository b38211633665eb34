package models

import (
	"time"

	"github.com/google/uuid"
)

// CredentialTokenType is the typ claim of tenant verification tokens.
const CredentialTokenType = "tenant-verification"

// TenantCredential records the most recently issued QR credential of a tenant.
type TenantCredential struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	TokenID   string    `json:"token_id" db:"token_id"`
	ImageKey  string    `json:"image_key" db:"image_key"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	IssuedAt  time.Time `json:"issued_at" db:"issued_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// IssuedCredential is returned to the tenant after issuance.
type IssuedCredential struct {
	Token     string    `json:"token"`
	ImageURL  string    `json:"image_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OnboardingState is the derived position of a user in tenant onboarding.
type OnboardingState string

const (
	OnboardingKYCPending       OnboardingState = "KYC_PENDING"
	OnboardingKYCRejected      OnboardingState = "KYC_REJECTED"
	OnboardingKYCApproved      OnboardingState = "KYC_APPROVED"
	OnboardingCredentialIssued OnboardingState = "CREDENTIAL_ISSUED"
	OnboardingLeaseProposed    OnboardingState = "LEASE_PROPOSED"
	OnboardingLeaseActive      OnboardingState = "LEASE_ACTIVE"
)

// OnboardingStatus is the API view of the onboarding state.
type OnboardingStatus struct {
	UserID              uuid.UUID       `json:"user_id"`
	State               OnboardingState `json:"state"`
	KYCStatus           *KYCStatus      `json:"kyc_status,omitempty"`
	CredentialExpiresAt *time.Time      `json:"credential_expires_at,omitempty"`
	ActiveLeases        int             `json:"active_leases"`
	PendingLeases       int             `json:"pending_leases"`
}

// DeriveOnboardingState computes the state from the stored facts.
func DeriveOnboardingState(kyc *KYCVerification, credential *TenantCredential, activeLeases, pendingLeases int, now time.Time) OnboardingState {
	if activeLeases > 0 {
		return OnboardingLeaseActive
	}
	if pendingLeases > 0 {
		return OnboardingLeaseProposed
	}
	if kyc == nil || kyc.Status == KYCStatusPending {
		return OnboardingKYCPending
	}
	if kyc.Status == KYCStatusRejected {
		return OnboardingKYCRejected
	}
	if credential != nil && credential.ExpiresAt.After(now) {
		return OnboardingCredentialIssued
	}
	return OnboardingKYCApproved
}

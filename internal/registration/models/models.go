package models

import (
	"time"

	"github.com/google/uuid"

	"onboard-gateway/internal/onboarding/flow"
)

// Method is how the user intends to sign in once the registration is finalized.
type Method string

const (
	MethodPassword  Method = "password"
	MethodMagicLink Method = "magic_link"
	MethodGoogle    Method = "google"
	MethodApple     Method = "apple"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodPassword, MethodMagicLink, MethodGoogle, MethodApple:
		return true
	}
	return false
}

// RequiresPassword reports whether a password must accompany the method.
func (m Method) RequiresPassword() bool {
	return m == MethodPassword
}

// AddressPreference is how the product should address the user.
type AddressPreference string

const (
	AddressFormal   AddressPreference = "formal"
	AddressInformal AddressPreference = "informal"
)

func (a AddressPreference) IsValid() bool {
	return a == AddressFormal || a == AddressInformal
}

// PendingRegistration is a token-addressed, time-limited registration
// awaiting account finalization.
type PendingRegistration struct {
	ID                  uuid.UUID
	Token               string
	Email               string
	FirstNameOrNickname string
	LastName            string
	Method              Method
	PasswordHash        string
	AddressPreference   *AddressPreference
	EntryAnswerID       flow.EntryAnswerID
	Path                flow.Path
	Responses           map[string]any
	NeutralBlockVisited bool
	CreatedAt           time.Time
	ExpiresAt           time.Time
}

// IsExpired reports whether the registration can no longer be redeemed at now.
func (p *PendingRegistration) IsExpired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// SubmitResult is returned to the client after a pending registration is stored.
type SubmitResult struct {
	Token     string
	ExpiresAt time.Time
}

package models

import (
	"strings"

	"onboard-gateway/internal/onboarding/flow"
	dErrors "onboard-gateway/pkg/domain-errors"
	"onboard-gateway/pkg/email"
)

const (
	maxNameLength      = 100
	maxEmailLength     = 254
	minPasswordLength  = 8
	maxPasswordLength  = 72 // bcrypt input limit
	maxResponseEntries = 100
)

type RegistrationFields struct {
	FirstNameOrNickname string `json:"firstNameOrNickname"`
	LastName            string `json:"lastName"`
	Email               string `json:"email"`
	Method              Method `json:"method"`
	Password            string `json:"password,omitempty"`
}

// SubmitRequest is the payload a draft in the registration stage submits.
type SubmitRequest struct {
	Registration        *RegistrationFields `json:"registration"`
	AddressPreference   *AddressPreference  `json:"addressPreference"`
	Entry               *flow.EntryAnswer   `json:"entry"`
	Path                flow.Path           `json:"path"`
	Responses           map[string]any      `json:"responses"`
	NeutralBlockVisited *bool               `json:"neutralBlockVisited"`
}

func (r *SubmitRequest) Normalize() {
	if r == nil {
		return
	}
	if r.Registration != nil {
		r.Registration.FirstNameOrNickname = strings.TrimSpace(r.Registration.FirstNameOrNickname)
		r.Registration.LastName = strings.TrimSpace(r.Registration.LastName)
		r.Registration.Email = email.Normalize(r.Registration.Email)
		r.Registration.Method = Method(strings.TrimSpace(string(r.Registration.Method)))
	}
}

// Follows validation order: Size -> Required -> Syntax -> Semantic.
func (r *SubmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	reg := r.Registration
	if reg == nil {
		return dErrors.New(dErrors.CodeValidation, "registration is required")
	}

	if len(reg.FirstNameOrNickname) > maxNameLength || len(reg.LastName) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "names must be 100 characters or less")
	}
	if len(reg.Email) > maxEmailLength {
		return dErrors.New(dErrors.CodeValidation, "email must be 254 characters or less")
	}
	if len(reg.Password) > maxPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "password must be 72 bytes or less")
	}
	if len(r.Responses) > maxResponseEntries {
		return dErrors.New(dErrors.CodeValidation, "too many responses")
	}

	if reg.FirstNameOrNickname == "" {
		return dErrors.New(dErrors.CodeValidation, "firstNameOrNickname is required")
	}
	if reg.LastName == "" {
		return dErrors.New(dErrors.CodeValidation, "lastName is required")
	}
	if reg.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if reg.Method == "" {
		return dErrors.New(dErrors.CodeValidation, "method is required")
	}
	if r.Entry == nil {
		return dErrors.New(dErrors.CodeValidation, "entry is required")
	}
	if r.Path == "" {
		return dErrors.New(dErrors.CodeValidation, "path is required")
	}
	if r.Responses == nil {
		return dErrors.New(dErrors.CodeValidation, "responses is required")
	}
	if r.NeutralBlockVisited == nil {
		return dErrors.New(dErrors.CodeValidation, "neutralBlockVisited is required")
	}

	if !email.IsValid(reg.Email) {
		return dErrors.New(dErrors.CodeValidation, "email is malformed")
	}
	if !reg.Method.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "method must be one of password, magic_link, google, apple")
	}
	if r.AddressPreference != nil && !r.AddressPreference.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "addressPreference must be formal, informal or null")
	}
	if !r.Path.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "path must be A, B or C")
	}

	if reg.Method.RequiresPassword() {
		if len(reg.Password) < minPasswordLength {
			return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
		}
	} else if reg.Password != "" {
		return dErrors.New(dErrors.CodeValidation, "password is only accepted with the password method")
	}
	if !r.Entry.Matches() {
		return dErrors.New(dErrors.CodeValidation, "entry answer does not map to entry path")
	}
	if r.Entry.Path != r.Path {
		return dErrors.New(dErrors.CodeValidation, "path must match entry path")
	}
	return nil
}

package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and KV backends return
// these (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: key or row does not exist
//   - ErrConflict: unique constraint hit (e.g. token collision)
//   - ErrExpired: pending registration is past its expiry
//   - ErrUnavailable: backing storage cannot be reached
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
)

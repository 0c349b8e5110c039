package store

import (
	"context"
	"maps"
	"strings"
	"sync"
	"time"

	"onboard-gateway/internal/registration/models"
	"onboard-gateway/pkg/platform/sentinel"
)

// InMemory keeps pending registrations in process. Used in tests and when no
// database is configured.
type InMemory struct {
	mu      sync.RWMutex
	byToken map[string]*models.PendingRegistration
}

func NewInMemory() *InMemory {
	return &InMemory{byToken: make(map[string]*models.PendingRegistration)}
}

// ExpirePending sets the expiry of every still-active registration for email
// to now and returns how many were expired.
func (s *InMemory) ExpirePending(_ context.Context, email string, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, p := range s.byToken {
		if strings.EqualFold(p.Email, email) && p.ExpiresAt.After(now) {
			p.ExpiresAt = now
			n++
		}
	}
	return n, nil
}

func (s *InMemory) Insert(_ context.Context, p *models.PendingRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byToken[p.Token]; exists {
		return sentinel.ErrConflict
	}
	s.byToken[p.Token] = clone(p)
	return nil
}

func (s *InMemory) FindByToken(_ context.Context, token string) (*models.PendingRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byToken[token]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(p), nil
}

// ListByEmail returns every registration stored for email, active or not.
func (s *InMemory) ListByEmail(_ context.Context, email string) ([]*models.PendingRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.PendingRegistration
	for _, p := range s.byToken {
		if strings.EqualFold(p.Email, email) {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func clone(p *models.PendingRegistration) *models.PendingRegistration {
	c := *p
	if p.AddressPreference != nil {
		a := *p.AddressPreference
		c.AddressPreference = &a
	}
	c.Responses = maps.Clone(p.Responses)
	return &c
}

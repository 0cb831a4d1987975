// Package anonymous issues and validates the per-device ids that key guest carts.
package anonymous

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidID = errors.New("invalid guest id")

type Service struct{}

func New() *Service {
	return &Service{}
}

// Issue returns a fresh guest id.
func (s *Service) Issue() string {
	return uuid.NewString()
}

// Resolve validates a client-supplied guest id and returns it in canonical form.
func (s *Service) Resolve(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidID
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", ErrInvalidID
	}
	return id.String(), nil
}

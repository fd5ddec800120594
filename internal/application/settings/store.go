package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"lokl-mora-backend/internal/pkg/apperrors"
	"lokl-mora-backend/internal/pkg/validation"

	"github.com/redis/go-redis/v9"
)

// KeyEmailFrequency holds the reminder cadence chosen from the automations panel.
const KeyEmailFrequency = "mora:settings:email_frequency"

// Store persists automation settings in Redis. Without Redis the value lives in memory
// for the life of the process.
type Store struct {
	Rdb     *redis.Client
	Default string

	mu    sync.Mutex
	local string
}

// EmailFrequency returns the stored cadence, or Default when nothing was stored yet.
func (s *Store) EmailFrequency(ctx context.Context) (string, error) {
	if s.Rdb == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.local != "" {
			return s.local, nil
		}
		return s.Default, nil
	}
	v, err := s.Rdb.Get(ctx, KeyEmailFrequency).Result()
	if errors.Is(err, redis.Nil) {
		return s.Default, nil
	}
	if err != nil {
		return "", fmt.Errorf("read email frequency: %w: %v", apperrors.ErrExternalIO, err)
	}
	return v, nil
}

// SetEmailFrequency validates and stores freq.
func (s *Store) SetEmailFrequency(ctx context.Context, freq string) (string, error) {
	freq = strings.ToLower(strings.TrimSpace(freq))
	if !validation.IsValidFrequency(freq) {
		return "", fmt.Errorf("%w: frecuencia no válida. Use daily, weekly o monthly", apperrors.ErrValidation)
	}
	if s.Rdb == nil {
		s.mu.Lock()
		s.local = freq
		s.mu.Unlock()
		return freq, nil
	}
	if err := s.Rdb.Set(ctx, KeyEmailFrequency, freq, 0).Err(); err != nil {
		return "", fmt.Errorf("store email frequency: %w: %v", apperrors.ErrExternalIO, err)
	}
	return freq, nil
}

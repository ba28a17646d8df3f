package auth

import (
	"crypto/subtle"
	"errors"
	"sync"
)

var (
	// ErrInvalidKey is returned for a key that matches no configured key.
	ErrInvalidKey = errors.New("invalid API key")

	// ErrKeyDisabled is returned for a configured but disabled key.
	ErrKeyDisabled = errors.New("API key disabled")
)

// APIKeyValidator checks presented keys against a fixed set. Comparison
// runs in constant time over every configured key.
type APIKeyValidator struct {
	mu   sync.RWMutex
	keys []APIKey
}

// NewAPIKeyValidator creates a validator over keys.
func NewAPIKeyValidator(keys []APIKey) *APIKeyValidator {
	return &APIKeyValidator{keys: append([]APIKey(nil), keys...)}
}

// Validate returns the configured key matching presented.
func (v *APIKeyValidator) Validate(presented string) (*APIKey, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var match *APIKey
	for i := range v.keys {
		if subtle.ConstantTimeCompare([]byte(v.keys[i].Key), []byte(presented)) == 1 {
			match = &v.keys[i]
		}
	}
	if match == nil {
		return nil, ErrInvalidKey
	}
	if !match.Enabled {
		return nil, ErrKeyDisabled
	}
	found := *match
	return &found, nil
}

// Len returns the number of configured keys.
func (v *APIKeyValidator) Len() int {
	if v == nil {
		return 0
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.keys)
}

// Replace swaps the key set, e.g. after credentials rotate.
func (v *APIKeyValidator) Replace(keys []APIKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.keys = append([]APIKey(nil), keys...)
}

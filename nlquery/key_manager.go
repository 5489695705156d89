package nlquery

import (
	"sync"
	"sync/atomic"
)

// KeyManager handles API key rotation
type KeyManager struct {
	keys    []string
	current atomic.Uint32

	mu     sync.RWMutex
	failed map[string]bool
}

// NewKeyManager rotates over keys in order; empty and repeated keys are dropped.
func NewKeyManager(keys []string) *KeyManager {
	km := &KeyManager{failed: make(map[string]bool)}
	seen := make(map[string]bool)
	for _, k := range keys {
		if k != "" && !seen[k] {
			seen[k] = true
			km.keys = append(km.keys, k)
		}
	}
	return km
}

// Len is the number of configured keys, failed or not.
func (km *KeyManager) Len() int {
	return len(km.keys)
}

// GetNextKey returns the next healthy key in rotation, or "" when every key
// has failed or none is configured.
func (km *KeyManager) GetNextKey() string {
	if len(km.keys) == 0 {
		return ""
	}
	km.mu.RLock()
	defer km.mu.RUnlock()

	for range km.keys {
		n := km.current.Add(1)
		key := km.keys[(n-1)%uint32(len(km.keys))]
		if !km.failed[key] {
			return key
		}
	}
	return ""
}

// MarkKeyFailed takes a key out of rotation, e.g. after a quota error.
func (km *KeyManager) MarkKeyFailed(key string) {
	km.mu.Lock()
	defer km.mu.Unlock()
	km.failed[key] = true
}

package gemini

import (
	"errors"
	"sync"
	"time"
)

const (
	// maxKeyErrors is how many recent failures take a key out of rotation.
	maxKeyErrors = 3
	// keyErrorWindow is how long failures count against a key.
	keyErrorWindow = time.Hour
)

// ErrNoKeys is returned when no API key is configured.
var ErrNoKeys = errors.New("gemini: no api keys configured")

// KeyUsage is the per-key counter exposed by Stats.
type KeyUsage struct {
	Index     int        `json:"index"`
	Uses      int        `json:"uses"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
	Errors    int        `json:"errors"`
	LastError *time.Time `json:"last_error,omitempty"`
}

// KeyStats summarizes the rotation state. Keys themselves are never exposed.
type KeyStats struct {
	TotalKeys    int        `json:"total_keys"`
	CurrentIndex int        `json:"current_index"`
	Keys         []KeyUsage `json:"keys"`
}

// KeyManager hands out API keys round-robin and skips keys that failed
// repeatedly within the last hour.
type KeyManager struct {
	mu    sync.Mutex
	keys  []string
	next  int
	usage []KeyUsage
	now   func() time.Time
}

// NewKeyManager creates a manager over keys. Empty entries are dropped.
func NewKeyManager(keys []string) *KeyManager {
	m := &KeyManager{now: time.Now}
	for _, k := range keys {
		if k != "" {
			m.keys = append(m.keys, k)
		}
	}
	m.usage = make([]KeyUsage, len(m.keys))
	for i := range m.usage {
		m.usage[i].Index = i
	}
	return m
}

// Len returns the number of configured keys.
func (m *KeyManager) Len() int {
	return len(m.keys)
}

// Next returns the next usable key and its index. When every key is out of
// rotation the first key is returned anyway.
func (m *KeyManager) Next() (string, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.keys) == 0 {
		return "", 0, ErrNoKeys
	}

	now := m.now()
	for attempts := 0; attempts < len(m.keys); attempts++ {
		i := m.next
		m.next = (m.next + 1) % len(m.keys)

		u := &m.usage[i]
		if u.LastError != nil && now.Sub(*u.LastError) > keyErrorWindow {
			u.Errors = 0
			u.LastError = nil
		}
		if u.Errors < maxKeyErrors {
			m.markUsed(i, now)
			return m.keys[i], i, nil
		}
	}

	m.markUsed(0, now)
	return m.keys[0], 0, nil
}

func (m *KeyManager) markUsed(i int, now time.Time) {
	t := now
	m.usage[i].Uses++
	m.usage[i].LastUsed = &t
}

// ReportError counts a failure against key i.
func (m *KeyManager) ReportError(i int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.usage) {
		return
	}
	t := m.now()
	m.usage[i].Errors++
	m.usage[i].LastError = &t
}

// ReportSuccess clears the failure count of key i.
func (m *KeyManager) ReportSuccess(i int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.usage) {
		return
	}
	m.usage[i].Errors = 0
	m.usage[i].LastError = nil
}

// Stats returns a copy of the rotation counters.
func (m *KeyManager) Stats() KeyStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return KeyStats{
		TotalKeys:    len(m.keys),
		CurrentIndex: m.next,
		Keys:         append([]KeyUsage{}, m.usage...),
	}
}

// Package storetest provides an in-memory Store for unit tests.
package storetest

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/shipsy/feedback-assistant/internal/store"
)

// MemoryStore is a map-backed store.Store. TTLs are recorded but never
// enforced; tests assert on the recorded values instead of sleeping.
// Individual operations can be made to fail via FailOp.
type MemoryStore struct {
	mu      sync.Mutex
	strings map[string]string
	lists   map[string][]string
	hashes  map[string]map[string]string
	ttls    map[string]time.Duration

	failures    map[string]error
	keyFailures map[string]error
}

func New() *MemoryStore {
	return &MemoryStore{
		strings:     make(map[string]string),
		lists:       make(map[string][]string),
		hashes:      make(map[string]map[string]string),
		ttls:        make(map[string]time.Duration),
		failures:    make(map[string]error),
		keyFailures: make(map[string]error),
	}
}

// FailOp makes every subsequent call to the named operation (e.g. "GetHash",
// "SetString", "HealthCheck") return err. Pass nil to clear.
func (m *MemoryStore) FailOp(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// FailKey makes the named operation fail for one specific key only.
func (m *MemoryStore) FailKey(op, key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.keyFailures, op+" "+key)
		return
	}
	m.keyFailures[op+" "+key] = err
}

// FailAll makes every operation return err.
func (m *MemoryStore) FailAll(err error) {
	for _, op := range []string{
		"GetString", "SetString", "PushList", "TrimList", "RangeList",
		"SetHash", "GetHash", "Expire", "Delete", "Exists", "Increment",
		"HealthCheck",
	} {
		m.FailOp(op, err)
	}
}

// TTL reports the last TTL recorded for key and whether one was set.
func (m *MemoryStore) TTL(key string) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ttl, ok := m.ttls[key]
	return ttl, ok
}

// List returns a copy of the raw list stored at key (most-recent-first).
func (m *MemoryStore) List(key string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.lists[key]))
	copy(out, m.lists[key])
	return out
}

func (m *MemoryStore) fail(op, key string) error {
	if err := m.failures[op]; err != nil {
		return err
	}
	return m.keyFailures[op+" "+key]
}

func (m *MemoryStore) GetString(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetString", key); err != nil {
		return "", err
	}
	val, ok := m.strings[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return val, nil
}

func (m *MemoryStore) SetString(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("SetString", key); err != nil {
		return err
	}
	m.strings[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *MemoryStore) PushList(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("PushList", key); err != nil {
		return err
	}
	m.lists[key] = append([]string{value}, m.lists[key]...)
	return nil
}

func (m *MemoryStore) TrimList(_ context.Context, key string, start, stop int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("TrimList", key); err != nil {
		return err
	}
	list := m.lists[key]
	if start < 0 {
		start = 0
	}
	if stop >= int64(len(list)) {
		stop = int64(len(list)) - 1
	}
	if start > stop || len(list) == 0 {
		m.lists[key] = nil
		return nil
	}
	m.lists[key] = list[start : stop+1]
	return nil
}

func (m *MemoryStore) RangeList(_ context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("RangeList", key); err != nil {
		return nil, err
	}
	list := m.lists[key]
	if stop < 0 {
		stop = int64(len(list)) + stop
	}
	if start < 0 {
		start = 0
	}
	if stop >= int64(len(list)) {
		stop = int64(len(list)) - 1
	}
	if start > stop || len(list) == 0 {
		return nil, nil
	}
	out := make([]string, stop-start+1)
	copy(out, list[start:stop+1])
	return out, nil
}

func (m *MemoryStore) SetHash(_ context.Context, key string, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("SetHash", key); err != nil {
		return err
	}
	if m.hashes[key] == nil {
		m.hashes[key] = make(map[string]string)
	}
	for k, v := range fields {
		m.hashes[key][k] = v
	}
	return nil
}

func (m *MemoryStore) GetHash(_ context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetHash", key); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(m.hashes[key]))
	for k, v := range m.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Expire", key); err != nil {
		return err
	}
	m.ttls[key] = ttl
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Delete", key); err != nil {
		return err
	}
	delete(m.strings, key)
	delete(m.lists, key)
	delete(m.hashes, key)
	delete(m.ttls, key)
	return nil
}

func (m *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Exists", key); err != nil {
		return false, err
	}
	if _, ok := m.strings[key]; ok {
		return true, nil
	}
	if _, ok := m.lists[key]; ok {
		return true, nil
	}
	_, ok := m.hashes[key]
	return ok, nil
}

func (m *MemoryStore) Increment(_ context.Context, key string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Increment", key); err != nil {
		return 0, err
	}
	current, _ := strconv.ParseInt(m.strings[key], 10, 64)
	current += delta
	m.strings[key] = strconv.FormatInt(current, 10)
	return current, nil
}

func (m *MemoryStore) HealthCheck(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fail("HealthCheck", "")
}

package similarity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipsy/feedback-assistant/internal/store/storetest"
)

func TestStoreCache_RoundTrip(t *testing.T) {
	st := storetest.New()
	cache := NewStoreCache(st, "emb:", time.Hour)

	value := []float32{0.25, -1.5, 3.75}
	cache.Set("some text", value, 0)

	got, found := cache.Get("some text")
	require.True(t, found)
	assert.Equal(t, value, got)

	// default TTL applies when Set gets zero
	ttl, ok := st.TTL("emb:some text")
	require.True(t, ok)
	assert.Equal(t, time.Hour, ttl)
}

func TestStoreCache_Miss(t *testing.T) {
	cache := NewStoreCache(storetest.New(), "emb:", time.Hour)

	_, found := cache.Get("never stored")
	assert.False(t, found)
}

func TestStoreCache_SharesKeyspaceWithStore(t *testing.T) {
	st := storetest.New()
	cache := NewStoreCache(st, "emb:", time.Hour)

	cache.Set("text", []float32{1}, time.Minute)

	_, err := st.GetString(context.Background(), "emb:text")
	assert.NoError(t, err)
}

func TestNewCache(t *testing.T) {
	st := storetest.New()

	tests := []struct {
		name     string
		config   CacheConfig
		wantType interface{}
		wantErr  bool
	}{
		{"store", CacheConfig{Type: "store", KeyPrefix: "emb:", TTL: time.Hour}, &StoreCache{}, false},
		{"memory", CacheConfig{Type: "memory", MaxSize: 10, TTL: time.Hour}, &MemoryCache{}, false},
		{"noop", CacheConfig{Type: "noop"}, &NoopCache{}, false},
		{"unknown", CacheConfig{Type: "tiered"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, err := NewCache(tt.config, st)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, cache)
		})
	}
}

func TestNewCache_StoreTypeRequiresStore(t *testing.T) {
	_, err := NewCache(CacheConfig{Type: "store"}, nil)
	assert.Error(t, err)
}

// Package memory maintains the TTL-bounded conversational state: recent
// conversation turns, the per-user profile hash and the archived feedback
// records, plus the multi-source context assembly over all three.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/shipsy/feedback-assistant/internal/metrics"
	"github.com/shipsy/feedback-assistant/internal/similarity"
	"github.com/shipsy/feedback-assistant/internal/store"
)

const (
	// MaxTurns caps the stored conversation history per session.
	MaxTurns = 20
	// FeedbackIndexMax caps the per-user feedback id index.
	FeedbackIndexMax = 100

	ConversationTTL = 24 * time.Hour
	ProfileTTL      = 24 * time.Hour
	FeedbackTTL     = 7 * 24 * time.Hour
)

// Config holds the retrieval limits for context assembly.
type Config struct {
	HistoryLimit int // turns fetched for context, most recent first
	TopK         int // relevant past feedback records fetched for context
}

// Manager owns all reads and writes against the TTL store.
type Manager struct {
	store  store.Store
	engine *similarity.Engine
	cfg    Config
}

func NewManager(s store.Store, engine *similarity.Engine, cfg Config) *Manager {
	if cfg.HistoryLimit == 0 {
		cfg.HistoryLimit = 10
	}
	if cfg.TopK == 0 {
		cfg.TopK = 3
	}
	return &Manager{
		store:  s,
		engine: engine,
		cfg:    cfg,
	}
}

// StoreConversationTurn appends a turn to the session history, trims the
// list to MaxTurns and refreshes the sliding TTL. The push, trim and expire
// are three separate store calls with no atomicity across them; a failure
// in between can leave the history untrimmed or unexpired until the next
// write, which repeats all three.
func (m *Manager) StoreConversationTurn(ctx context.Context, sessionID, message, response string) error {
	turn := ConversationTurn{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Message:   message,
		Response:  response,
	}

	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}

	key := conversationKey(sessionID)
	if err := m.store.PushList(ctx, key, string(data)); err != nil {
		metrics.RecordStoreError("push_turn")
		return fmt.Errorf("push turn: %w", err)
	}
	if err := m.store.TrimList(ctx, key, 0, MaxTurns-1); err != nil {
		metrics.RecordStoreError("trim_history")
		return fmt.Errorf("trim history: %w", err)
	}
	if err := m.store.Expire(ctx, key, ConversationTTL); err != nil {
		metrics.RecordStoreError("expire_history")
		return fmt.Errorf("expire history: %w", err)
	}

	return nil
}

// ConversationHistory returns up to limit turns in chronological order.
// The store keeps turns most-recent-first; the result is reversed on read.
func (m *Manager) ConversationHistory(ctx context.Context, sessionID string, limit int) ([]ConversationTurn, error) {
	raw, err := m.store.RangeList(ctx, conversationKey(sessionID), 0, int64(limit)-1)
	if err != nil {
		return nil, fmt.Errorf("range history: %w", err)
	}

	turns := make([]ConversationTurn, 0, len(raw))
	for _, item := range raw {
		var turn ConversationTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("Skipping malformed conversation turn")
			continue
		}
		turns = append(turns, turn)
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	return turns, nil
}

// UpdateProfile merges fields into the user profile hash and refreshes its
// TTL. Existing fields not named in the update are kept.
func (m *Manager) UpdateProfile(ctx context.Context, userID string, fields map[string]string) error {
	key := profileKey(userID)
	if err := m.store.SetHash(ctx, key, fields); err != nil {
		metrics.RecordStoreError("set_profile")
		return fmt.Errorf("set profile: %w", err)
	}
	if err := m.store.Expire(ctx, key, ProfileTTL); err != nil {
		metrics.RecordStoreError("expire_profile")
		return fmt.Errorf("expire profile: %w", err)
	}
	return nil
}

// GetProfile returns the user profile hash; a missing profile is an empty
// map, not an error.
func (m *Manager) GetProfile(ctx context.Context, userID string) (Profile, error) {
	fields, err := m.store.GetHash(ctx, profileKey(userID))
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return Profile(fields), nil
}

// StoreFeedback archives a classified record and indexes its id for the
// user. Re-storing an id overwrites the serialized record but appends the
// id to the index again; the index tolerates duplicates. The embedding is
// stored best-effort: a store failure there is logged and dropped, absence
// is a valid state.
func (m *Manager) StoreFeedback(ctx context.Context, rec FeedbackRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}

	if err := m.store.SetString(ctx, feedbackKey(rec.UserID, rec.ID), string(data), FeedbackTTL); err != nil {
		metrics.RecordStoreError("set_feedback")
		return fmt.Errorf("set feedback: %w", err)
	}

	indexKey := feedbackIndexKey(rec.UserID)
	if err := m.store.PushList(ctx, indexKey, rec.ID); err != nil {
		metrics.RecordStoreError("push_feedback_index")
		return fmt.Errorf("push feedback index: %w", err)
	}
	if err := m.store.TrimList(ctx, indexKey, 0, FeedbackIndexMax-1); err != nil {
		metrics.RecordStoreError("trim_feedback_index")
		return fmt.Errorf("trim feedback index: %w", err)
	}
	if err := m.store.Expire(ctx, indexKey, FeedbackTTL); err != nil {
		metrics.RecordStoreError("expire_feedback_index")
		return fmt.Errorf("expire feedback index: %w", err)
	}

	vec := m.engine.Embed(ctx, rec.Content)
	vecData, err := json.Marshal(vec)
	if err == nil {
		if err := m.store.SetString(ctx, embeddingKey(rec.ID), string(vecData), FeedbackTTL); err != nil {
			metrics.RecordStoreError("set_embedding")
			log.Warn().Err(err).Str("feedback_id", rec.ID).Msg("Failed to store embedding")
		}
	}

	return nil
}

// SearchRelevantMemories loads every indexed feedback record for the user,
// scores each against the query and returns the top-K above the relevance
// threshold, highest score first.
func (m *Manager) SearchRelevantMemories(ctx context.Context, query, userID string, topK int) ([]RelevantMemory, error) {
	ids, err := m.store.RangeList(ctx, feedbackIndexKey(userID), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("range feedback index: %w", err)
	}

	var memories []RelevantMemory
	for _, id := range ids {
		data, err := m.store.GetString(ctx, feedbackKey(userID, id))
		if err != nil {
			// Expired records linger in the index until it rolls over.
			continue
		}

		var rec FeedbackRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			log.Warn().Err(err).Str("feedback_id", id).Msg("Skipping malformed feedback record")
			continue
		}

		score := m.engine.Relevance(query, rec.Content)
		if !m.engine.Relevant(score) {
			continue
		}

		memories = append(memories, RelevantMemory{
			Score:     score,
			Content:   rec.Content,
			Category:  rec.Category,
			Priority:  rec.Priority,
			Timestamp: rec.Timestamp,
		})
	}

	sort.SliceStable(memories, func(i, j int) bool {
		return memories[i].Score > memories[j].Score
	})

	if topK > 0 && len(memories) > topK {
		memories = memories[:topK]
	}

	return memories, nil
}

// AssembleContext gathers recent history, the user profile and relevant
// past feedback concurrently. Each source is independently fault-tolerant:
// a failed read is logged and replaced by its empty value, so assembly
// always returns a well-formed Context.
func (m *Manager) AssembleContext(ctx context.Context, userID, sessionID, currentMessage string) Context {
	start := time.Now()

	var (
		history  []ConversationTurn
		profile  Profile
		memories []RelevantMemory
	)

	var g errgroup.Group
	g.Go(func() error {
		h, err := m.ConversationHistory(ctx, sessionID, m.cfg.HistoryLimit)
		if err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("History read failed, using empty history")
			return nil
		}
		history = h
		return nil
	})
	g.Go(func() error {
		p, err := m.GetProfile(ctx, userID)
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("Profile read failed, using empty profile")
			return nil
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		mem, err := m.SearchRelevantMemories(ctx, currentMessage, userID, m.cfg.TopK)
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("Memory search failed, using no memories")
			return nil
		}
		memories = mem
		return nil
	})
	// Every branch swallows its own error; Wait only joins.
	_ = g.Wait()

	if history == nil {
		history = []ConversationTurn{}
	}
	if profile == nil {
		profile = Profile{}
	}
	if memories == nil {
		memories = []RelevantMemory{}
	}

	metrics.ContextAssemblyDuration.Observe(time.Since(start).Seconds())

	return Context{
		RecentHistory:    history,
		UserProfile:      profile,
		RelevantMemories: memories,
		CurrentMessage:   currentMessage,
		Timestamp:        time.Now().UTC(),
	}
}

// HealthCheck probes the store with a write-read-delete round-trip.
func (m *Manager) HealthCheck(ctx context.Context) HealthStatus {
	now := time.Now().UTC()
	testKey := fmt.Sprintf("health_check:%d", now.UnixMilli())

	if err := m.store.SetString(ctx, testKey, "ok", time.Minute); err != nil {
		return HealthStatus{Status: "error", Store: "disconnected", Timestamp: now}
	}

	val, err := m.store.GetString(ctx, testKey)
	if err != nil {
		return HealthStatus{Status: "error", Store: "disconnected", Timestamp: now}
	}

	if err := m.store.Delete(ctx, testKey); err != nil {
		log.Warn().Err(err).Msg("Failed to delete health check key")
	}

	status := "healthy"
	if val != "ok" {
		status = "unhealthy"
	}

	return HealthStatus{Status: status, Store: "connected", Timestamp: now}
}

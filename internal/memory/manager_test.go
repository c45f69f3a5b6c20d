package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipsy/feedback-assistant/internal/similarity"
	"github.com/shipsy/feedback-assistant/internal/store"
	"github.com/shipsy/feedback-assistant/internal/store/storetest"
)

func newTestManager(st *storetest.MemoryStore) *Manager {
	return NewManager(st, similarity.NewEngine(nil, 0), Config{})
}

func TestStoreConversationTurn_CapAndOrder(t *testing.T) {
	st := storetest.New()
	m := newTestManager(st)
	ctx := context.Background()

	for i := 0; i < MaxTurns+5; i++ {
		err := m.StoreConversationTurn(ctx, "s1", fmt.Sprintf("message %d", i), fmt.Sprintf("response %d", i))
		require.NoError(t, err)
	}

	assert.Len(t, st.List("conversation_history:s1"), MaxTurns)

	turns, err := m.ConversationHistory(ctx, "s1", MaxTurns)
	require.NoError(t, err)
	require.Len(t, turns, MaxTurns)

	// oldest surviving turn first, newest last
	assert.Equal(t, "message 5", turns[0].Message)
	assert.Equal(t, fmt.Sprintf("message %d", MaxTurns+4), turns[MaxTurns-1].Message)
}

func TestStoreConversationTurn_SetsTTL(t *testing.T) {
	st := storetest.New()
	m := newTestManager(st)

	require.NoError(t, m.StoreConversationTurn(context.Background(), "s1", "hi", "hello"))

	ttl, ok := st.TTL("conversation_history:s1")
	require.True(t, ok)
	assert.Equal(t, ConversationTTL, ttl)
}

func TestConversationHistory_SkipsMalformedTurns(t *testing.T) {
	st := storetest.New()
	m := newTestManager(st)
	ctx := context.Background()

	require.NoError(t, m.StoreConversationTurn(ctx, "s1", "first", "reply"))
	require.NoError(t, st.PushList(ctx, "conversation_history:s1", "{not json"))
	require.NoError(t, m.StoreConversationTurn(ctx, "s1", "second", "reply"))

	turns, err := m.ConversationHistory(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "first", turns[0].Message)
	assert.Equal(t, "second", turns[1].Message)
}

func TestConversationHistory_RespectsLimit(t *testing.T) {
	st := storetest.New()
	m := newTestManager(st)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		require.NoError(t, m.StoreConversationTurn(ctx, "s1", fmt.Sprintf("message %d", i), "reply"))
	}

	turns, err := m.ConversationHistory(ctx, "s1", 3)
	require.NoError(t, err)
	require.Len(t, turns, 3)

	// the 3 most recent turns, chronological
	assert.Equal(t, "message 5", turns[0].Message)
	assert.Equal(t, "message 7", turns[2].Message)
}

func TestUpdateProfile_MergesFields(t *testing.T) {
	st := storetest.New()
	m := newTestManager(st)
	ctx := context.Background()

	require.NoError(t, m.UpdateProfile(ctx, "u1", map[string]string{
		FieldLastMessage:      "hi",
		FieldInteractionCount: "1",
	}))
	require.NoError(t, m.UpdateProfile(ctx, "u1", map[string]string{
		FieldInteractionCount: "2",
	}))

	profile, err := m.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "hi", profile[FieldLastMessage])
	assert.Equal(t, 2, profile.InteractionCount())

	ttl, ok := st.TTL("user_context:u1")
	require.True(t, ok)
	assert.Equal(t, ProfileTTL, ttl)
}

func TestGetProfile_MissingIsEmpty(t *testing.T) {
	m := newTestManager(storetest.New())

	profile, err := m.GetProfile(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, profile)
	assert.Equal(t, "new", profile.EngagementLevel())
	assert.Zero(t, profile.FeedbackCount())
}

func testRecord(id, userID, content string) FeedbackRecord {
	return FeedbackRecord{
		ID:        id,
		UserID:    userID,
		SessionID: "s1",
		Content:   content,
		Timestamp: time.Now().UTC(),
		Sentiment: "neutral",
		Category:  "feature_request",
		Priority:  "medium",
	}
}

func TestStoreFeedback_PersistsRecordIndexAndEmbedding(t *testing.T) {
	st := storetest.New()
	m := newTestManager(st)
	ctx := context.Background()

	rec := testRecord("fb_1", "u1", "please add dark mode")
	require.NoError(t, m.StoreFeedback(ctx, rec))

	data, err := st.GetString(ctx, "feedback:u1:fb_1")
	require.NoError(t, err)
	var stored FeedbackRecord
	require.NoError(t, json.Unmarshal([]byte(data), &stored))
	assert.Equal(t, rec.Content, stored.Content)

	assert.Equal(t, []string{"fb_1"}, st.List("user_feedback:u1"))

	vecData, err := st.GetString(ctx, "embedding:fb_1")
	require.NoError(t, err)
	var vec []float32
	require.NoError(t, json.Unmarshal([]byte(vecData), &vec))
	assert.Len(t, vec, similarity.Dim)

	for _, key := range []string{"feedback:u1:fb_1", "user_feedback:u1", "embedding:fb_1"} {
		ttl, ok := st.TTL(key)
		require.True(t, ok, key)
		assert.Equal(t, FeedbackTTL, ttl, key)
	}
}

func TestStoreFeedback_DuplicateIDAppendsToIndex(t *testing.T) {
	st := storetest.New()
	m := newTestManager(st)
	ctx := context.Background()

	rec := testRecord("fb_1", "u1", "please add dark mode")
	require.NoError(t, m.StoreFeedback(ctx, rec))
	require.NoError(t, m.StoreFeedback(ctx, rec))

	// the record value is overwritten, the index keeps both entries
	assert.Equal(t, []string{"fb_1", "fb_1"}, st.List("user_feedback:u1"))
}

func TestStoreFeedback_EmbeddingFailureIsNonFatal(t *testing.T) {
	st := storetest.New()
	m := newTestManager(st)
	ctx := context.Background()

	st.FailKey("SetString", "embedding:fb_1", errors.New("store down"))

	err := m.StoreFeedback(ctx, testRecord("fb_1", "u1", "dark mode please"))
	require.NoError(t, err)

	_, err = st.GetString(ctx, "feedback:u1:fb_1")
	assert.NoError(t, err)
	_, err = st.GetString(ctx, "embedding:fb_1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStoreFeedback_RecordWriteFailureIsFatal(t *testing.T) {
	st := storetest.New()
	m := newTestManager(st)
	ctx := context.Background()

	st.FailKey("SetString", "feedback:u1:fb_1", errors.New("store down"))

	err := m.StoreFeedback(ctx, testRecord("fb_1", "u1", "dark mode please"))
	assert.Error(t, err)
	assert.Empty(t, st.List("user_feedback:u1"))
}

func TestSearchRelevantMemories(t *testing.T) {
	st := storetest.New()
	m := newTestManager(st)
	ctx := context.Background()

	require.NoError(t, m.StoreFeedback(ctx, testRecord("fb_1", "u1", "the dashboard is slow to load")))
	require.NoError(t, m.StoreFeedback(ctx, testRecord("fb_2", "u1", "please add a dark mode toggle")))
	require.NoError(t, m.StoreFeedback(ctx, testRecord("fb_3", "u1", "billing invoice totals look wrong")))

	memories, err := m.SearchRelevantMemories(ctx, "dark mode on the dashboard", "u1", 3)
	require.NoError(t, err)
	require.NotEmpty(t, memories)

	// best match first, everything above the threshold
	assert.Equal(t, "please add a dark mode toggle", memories[0].Content)
	for i := 1; i < len(memories); i++ {
		assert.GreaterOrEqual(t, memories[i-1].Score, memories[i].Score)
	}
	for _, mem := range memories {
		assert.Greater(t, mem.Score, similarity.DefaultRelevanceThreshold)
	}
}

func TestSearchRelevantMemories_TopK(t *testing.T) {
	st := storetest.New()
	m := newTestManager(st)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := testRecord(fmt.Sprintf("fb_%d", i), "u1", "dark mode request number "+fmt.Sprint(i))
		require.NoError(t, m.StoreFeedback(ctx, rec))
	}

	memories, err := m.SearchRelevantMemories(ctx, "dark mode", "u1", 2)
	require.NoError(t, err)
	assert.Len(t, memories, 2)
}

func TestSearchRelevantMemories_SkipsExpiredRecords(t *testing.T) {
	st := storetest.New()
	m := newTestManager(st)
	ctx := context.Background()

	require.NoError(t, m.StoreFeedback(ctx, testRecord("fb_1", "u1", "dark mode please")))
	require.NoError(t, m.StoreFeedback(ctx, testRecord("fb_2", "u1", "dark mode again")))

	// the record expired but its id still sits in the index
	require.NoError(t, st.Delete(ctx, "feedback:u1:fb_1"))

	memories, err := m.SearchRelevantMemories(ctx, "dark mode", "u1", 10)
	require.NoError(t, err)
	require.Len(t, memories, 1)
	assert.Equal(t, "dark mode again", memories[0].Content)
}

func TestAssembleContext_AllSources(t *testing.T) {
	st := storetest.New()
	m := newTestManager(st)
	ctx := context.Background()

	require.NoError(t, m.StoreConversationTurn(ctx, "s1", "hi", "hello"))
	require.NoError(t, m.UpdateProfile(ctx, "u1", map[string]string{FieldEngagementLevel: "medium"}))
	require.NoError(t, m.StoreFeedback(ctx, testRecord("fb_1", "u1", "please add dark mode")))

	assembled := m.AssembleContext(ctx, "u1", "s1", "dark mode status?")

	require.Len(t, assembled.RecentHistory, 1)
	assert.Equal(t, "hi", assembled.RecentHistory[0].Message)
	assert.Equal(t, "medium", assembled.UserProfile.EngagementLevel())
	require.Len(t, assembled.RelevantMemories, 1)
	assert.Equal(t, "dark mode status?", assembled.CurrentMessage)
	assert.False(t, assembled.Timestamp.IsZero())
}

func TestAssembleContext_ProfileFailureYieldsEmptyProfile(t *testing.T) {
	st := storetest.New()
	m := newTestManager(st)
	ctx := context.Background()

	require.NoError(t, m.StoreConversationTurn(ctx, "s1", "hi", "hello"))
	require.NoError(t, m.StoreFeedback(ctx, testRecord("fb_1", "u1", "please add dark mode")))

	st.FailOp("GetHash", errors.New("store down"))

	assembled := m.AssembleContext(ctx, "u1", "s1", "dark mode status?")

	assert.NotNil(t, assembled.UserProfile)
	assert.Empty(t, assembled.UserProfile)
	assert.Len(t, assembled.RecentHistory, 1)
	assert.Len(t, assembled.RelevantMemories, 1)
}

func TestAssembleContext_TotalFailureStillWellFormed(t *testing.T) {
	st := storetest.New()
	m := newTestManager(st)

	st.FailAll(errors.New("store down"))

	assembled := m.AssembleContext(context.Background(), "u1", "s1", "anything")

	assert.NotNil(t, assembled.RecentHistory)
	assert.Empty(t, assembled.RecentHistory)
	assert.NotNil(t, assembled.UserProfile)
	assert.NotNil(t, assembled.RelevantMemories)
	assert.Equal(t, "anything", assembled.CurrentMessage)
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy store", func(t *testing.T) {
		st := storetest.New()
		m := newTestManager(st)

		status := m.HealthCheck(context.Background())
		assert.Equal(t, "healthy", status.Status)
		assert.Equal(t, "connected", status.Store)
		assert.False(t, status.Timestamp.IsZero())
	})

	t.Run("failing store", func(t *testing.T) {
		st := storetest.New()
		st.FailOp("SetString", errors.New("store down"))
		m := newTestManager(st)

		status := m.HealthCheck(context.Background())
		assert.Equal(t, "error", status.Status)
		assert.Equal(t, "disconnected", status.Store)
	})
}

package memory

import "fmt"

// Store key schema. All state is sharded per user or session key; no two
// logical sessions contend on the same key.
func conversationKey(sessionID string) string {
	return "conversation_history:" + sessionID
}

func profileKey(userID string) string {
	return "user_context:" + userID
}

func feedbackKey(userID, feedbackID string) string {
	return fmt.Sprintf("feedback:%s:%s", userID, feedbackID)
}

func feedbackIndexKey(userID string) string {
	return "user_feedback:" + userID
}

func embeddingKey(feedbackID string) string {
	return "embedding:" + feedbackID
}

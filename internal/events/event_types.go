package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserSignedUp     EventType = "user_signed_up"
	EventUserLoggedIn     EventType = "user_logged_in"
	EventLoginRejected    EventType = "login_rejected"
	EventChatCompleted    EventType = "chat_completed"
	EventGuardrailRefusal EventType = "guardrail_refusal"
)

// Event represents an audit event emitted by services. Subject is the hashed
// account identifier; raw emails are not carried.
type Event struct {
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject"`
	SessionID string      `json:"session_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// LoginRejectedPayload records why a login failed. It is never echoed to the caller.
type LoginRejectedPayload struct {
	Reason string `json:"reason"`
}

// ChatCompletedPayload payload.
type ChatCompletedPayload struct {
	EndSession     bool `json:"end_session"`
	ResponseLength int  `json:"response_length"`
}

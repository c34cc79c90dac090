// Package event defines the envelope and typed payloads carried on the
// quest.events topic. The payload is double-encoded: each typed payload is
// serialized on its own, then wrapped in the envelope which is serialized
// again for transport.
package event

import (
	"encoding/json"
	"fmt"
)

const (
	TypeCreateQuest       = "CREATE_QUEST"
	TypeEditQuest         = "EDIT_QUEST"
	TypeDeleteQuest       = "DELETE_QUEST"
	TypeTakeQuest         = "TAKE_QUEST"
	TypeDropQuest         = "DROP_QUEST"
	TypeSubmitProof       = "SUBMIT_PROOF"
	TypeRegisterCommunity = "REGISTER_COMMUNITY"
)

type Envelope struct {
	EventType string `json:"event_type"`
	Payload   string `json:"payload"`
}

// Marshal wraps a typed payload in an envelope and returns the wire bytes.
func Marshal(eventType string, payload any) ([]byte, error) {
	inner, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}

	data, err := json.Marshal(Envelope{
		EventType: eventType,
		Payload:   string(inner),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}
	return data, nil
}

// Unmarshal decodes the outer envelope only; the payload stays serialized
// until the consumer knows which type to decode it into.
func Unmarshal(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("malformed envelope: %w", err)
	}
	return env, nil
}

// Decode deserializes the inner payload into the given typed payload.
func (e Envelope) Decode(payload any) error {
	if err := json.Unmarshal([]byte(e.Payload), payload); err != nil {
		return fmt.Errorf("malformed %s payload: %w", e.EventType, err)
	}
	return nil
}

type QuestPayload struct {
	QuestID       string `json:"quest_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Slots         int    `json:"slots"`
	OrganizerName string `json:"organizer_name"`
	Schedule      string `json:"schedule"`
	Platform      string `json:"platform"`
	Deadline      string `json:"deadline"`
	CreatorID     string `json:"creator_id"`
}

type EditPayload struct {
	QuestID     string `json:"quest_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Slots       int    `json:"slots"`
	Schedule    string `json:"schedule"`
	Deadline    string `json:"deadline"`
	Platform    string `json:"platform"`
}

type DeletePayload struct {
	QuestID string `json:"quest_id"`
}

// RegistrationPayload is shared by TAKE_QUEST and DROP_QUEST.
type RegistrationPayload struct {
	QuestID string `json:"quest_id"`
	UserID  string `json:"user_id"`
	UserTag string `json:"user_tag"`
}

type ProofPayload struct {
	QuestID  string `json:"quest_id"`
	UserID   string `json:"user_id"`
	ProofURL string `json:"proof_url"`
}

type NewCommunityPayload struct {
	CommunityName string `json:"community_name"`
	LeaderID      string `json:"leader_id"`
}

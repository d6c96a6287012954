package messaging

import (
	"encoding/json"
	"fmt"
	"time"
)

// ChangeEvent announces that a record collection was modified.
type ChangeEvent struct {
	Resource string    `json:"resource"`
	ActorID  string    `json:"actor_id,omitempty"`
	Role     string    `json:"role,omitempty"`
	Origin   string    `json:"origin,omitempty"`
	At       time.Time `json:"at"`
}

// Message encodes e for publishing on its resource subject.
func (e ChangeEvent) Message() (*Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal change event: %w", err)
	}
	msg := &Message{
		Subject:   RecordsChangedSubject(e.Resource),
		Data:      data,
		Timestamp: e.At,
	}
	if e.Origin != "" {
		msg.Metadata = map[string]string{HeaderOrigin: e.Origin}
	}
	return msg, nil
}

// DecodeChangeEvent reads a change event. The resource falls back to the
// subject's last token when the payload omits it.
func DecodeChangeEvent(msg *Message) (ChangeEvent, error) {
	var e ChangeEvent
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			return e, fmt.Errorf("decode change event: %w", err)
		}
	}
	if e.Resource == "" {
		resource, ok := ResourceFromSubject(msg.Subject)
		if !ok {
			return e, fmt.Errorf("decode change event: no resource in %q", msg.Subject)
		}
		e.Resource = resource
	}
	if e.Origin == "" {
		e.Origin = msg.Metadata[HeaderOrigin]
	}
	return e, nil
}

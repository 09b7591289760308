package domain

// Message is a single request or response value exchanged during a turn.
// Text carries the utterance; Misc carries adapter-specific payload
// (attachments, keyboards, annotations) the engine does not interpret.
type Message struct {
	Text string         `json:"text"`
	Misc map[string]any `json:"misc,omitempty"`
}

// NewMessage builds a plain text message.
func NewMessage(text string) Message {
	return Message{Text: text}
}

// IsZero reports whether the message carries nothing.
func (m Message) IsZero() bool {
	return m.Text == "" && len(m.Misc) == 0
}

package genai

import "context"

// Chat is a stateful conversation handle. The full history is replayed on
// every call, with the system instruction pinned to the request. At most one
// Send may be in flight per chat; the session state machine enforces this.
type Chat struct {
	client  *Client
	system  *Content
	history []Content
}

// Send forwards a user message to the ongoing conversation and returns the
// model's reply. The exchange is appended to the chat history only when the
// call succeeds, so a failed turn can be retried without duplicating it.
func (ch *Chat) Send(ctx context.Context, text string) (string, error) {
	turn := Content{Role: "user", Parts: []Part{{Text: text}}}

	req := &generateContentRequest{
		Contents:          append(append([]Content{}, ch.history...), turn),
		SystemInstruction: ch.system,
	}
	reply, err := ch.client.generate(ctx, req)
	if err != nil {
		return "", err
	}

	ch.history = append(ch.history, turn, Content{Role: "model", Parts: []Part{{Text: reply}}})
	return reply, nil
}

// History returns a copy of the accumulated conversation contents.
func (ch *Chat) History() []Content {
	out := make([]Content, len(ch.history))
	copy(out, ch.history)
	return out
}

package interview

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Djalilu/interview-app/internal/domain"
	"github.com/Djalilu/interview-app/internal/tokens"
)

// ConversationCoordinator drives one open-ended multi-turn interview with the
// collaborator under a persona implied by company, role, and company URL.
//
// The coordinator exclusively owns the transcript for the duration of the
// interview; all mutation happens through its operations. The transcript has
// its own lock because the machine releases its lock during collaborator
// calls while snapshots keep reading.
type ConversationCoordinator struct {
	model     LanguageModel
	estimator *tokens.Estimator
	logger    *slog.Logger

	company      string
	jobRole      string
	companyURL   string
	languageName string

	mu         sync.Mutex
	chat       ChatSession
	transcript []domain.Message
}

// NewConversationCoordinator creates a coordinator for the given setup
// fields. The estimator may be nil; prompt sizes are then not reported.
func NewConversationCoordinator(model LanguageModel, estimator *tokens.Estimator, logger *slog.Logger, company, jobRole, companyURL, languageName string) *ConversationCoordinator {
	return &ConversationCoordinator{
		model:        model,
		estimator:    estimator,
		logger:       logger,
		company:      company,
		jobRole:      jobRole,
		companyURL:   companyURL,
		languageName: languageName,
	}
}

// Begin opens the persona conversation and records the first model-generated
// question. On failure nothing is recorded and Begin may be retried.
func (c *ConversationCoordinator) Begin(ctx context.Context) (string, error) {
	chat, first, err := c.model.StartChat(ctx, personaInstruction(c.company, c.jobRole, c.companyURL, c.languageName))
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.chat = chat
	c.transcript = append(c.transcript, domain.Message{Sender: domain.SenderAI, Text: first})
	return first, nil
}

// AppendUser appends a user message to the transcript without forwarding it
// to the collaborator. Used for the sentinel command, which triggers feedback
// instead of a normal exchange.
func (c *ConversationCoordinator) AppendUser(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcript = append(c.transcript, domain.Message{Sender: domain.SenderUser, Text: text})
}

// SendTurn appends the user message, forwards it to the ongoing conversation,
// and appends the model's reply. On failure the user message is removed again
// so a retry does not duplicate it. The machine keeps at most one turn in
// flight, so the message removed on failure is the one appended here.
func (c *ConversationCoordinator) SendTurn(ctx context.Context, text string) (string, error) {
	c.mu.Lock()
	chat := c.chat
	c.transcript = append(c.transcript, domain.Message{Sender: domain.SenderUser, Text: text})
	c.mu.Unlock()

	reply, err := chat.Send(ctx, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.transcript = c.transcript[:len(c.transcript)-1]
		return "", err
	}
	c.transcript = append(c.transcript, domain.Message{Sender: domain.SenderAI, Text: reply})
	return reply, nil
}

// Transcript returns a copy of the message sequence so far.
func (c *ConversationCoordinator) Transcript() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Message, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// ProduceFeedback serializes the transcript and requests the three-section
// feedback report over it.
func (c *ConversationCoordinator) ProduceFeedback(ctx context.Context) (string, error) {
	transcript := c.Transcript()
	prompt := conversationFeedbackPrompt(serializeTranscript(transcript), c.company, c.jobRole, c.languageName)

	if c.estimator != nil {
		c.logger.Debug("feedback prompt built",
			slog.Int("messages", len(transcript)),
			slog.Int("approx_tokens", c.estimator.Count(prompt)),
		)
	}

	return c.model.GenerateText(ctx, prompt)
}

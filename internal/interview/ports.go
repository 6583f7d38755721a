// Package interview contains the session orchestration core: the two
// interview coordinators and the state machine that drives an interview from
// setup through completion.
package interview

import (
	"context"

	"github.com/Djalilu/interview-app/internal/genai"
)

// ChatSession is a stateful conversation handle with the language-generation
// collaborator.
type ChatSession interface {
	Send(ctx context.Context, text string) (string, error)
}

// LanguageModel is the language-generation collaborator contract consumed by
// the coordinators. Any call returning empty text is a failure, never a valid
// empty result.
type LanguageModel interface {
	// StartChat opens a persona conversation, sends the initial trigger, and
	// returns the handle together with the model's opening question.
	StartChat(ctx context.Context, systemInstruction string) (ChatSession, string, error)

	// GenerateText issues a one-shot text generation request.
	GenerateText(ctx context.Context, prompt string) (string, error)

	// GenerateStructured issues a schema-constrained JSON request and
	// unmarshals the payload into out.
	GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema, out any) error
}

// Gemini adapts *genai.Client to the LanguageModel port.
type Gemini struct {
	*genai.Client
}

var _ LanguageModel = Gemini{}

// StartChat narrows the concrete chat handle to the ChatSession interface.
func (g Gemini) StartChat(ctx context.Context, systemInstruction string) (ChatSession, string, error) {
	chat, first, err := g.Client.StartChat(ctx, systemInstruction)
	if err != nil {
		return nil, "", err
	}
	return chat, first, nil
}

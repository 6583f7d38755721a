package interview

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/Djalilu/interview-app/internal/genai"
)

// fakeChat implements ChatSession with scripted replies. A non-nil gate makes
// Send block until the gate is closed.
type fakeChat struct {
	mu      sync.Mutex
	replies []string
	err     error
	sent    []string
	gate    chan struct{}
}

func (f *fakeChat) Send(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, text)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", errors.New("fakeChat: no scripted reply")
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

// fakeModel implements LanguageModel with scripted behavior. A non-nil gate
// makes collaborator calls block until the gate is closed, to exercise the
// in-flight and stale-result paths.
type fakeModel struct {
	mu sync.Mutex

	chat     *fakeChat
	first    string
	startErr error

	text      string
	textErr   error
	textCalls []string

	structuredJSON string
	structuredErr  error

	gate chan struct{}
}

func (f *fakeModel) wait() {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

func (f *fakeModel) StartChat(_ context.Context, _ string) (ChatSession, string, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.startErr != nil {
		return nil, "", f.startErr
	}
	return f.chat, f.first, nil
}

func (f *fakeModel) GenerateText(_ context.Context, prompt string) (string, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()

	f.textCalls = append(f.textCalls, prompt)
	if f.textErr != nil {
		return "", f.textErr
	}
	return f.text, nil
}

func (f *fakeModel) GenerateStructured(_ context.Context, _ string, _ *genai.Schema, out any) error {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.structuredErr != nil {
		return f.structuredErr
	}
	return json.Unmarshal([]byte(f.structuredJSON), out)
}

func (f *fakeModel) feedbackCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.textCalls))
	copy(out, f.textCalls)
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

const questionsJSON = `{"questions":[
	{"id":"q1","text":"Tell me about a conflict you resolved.","category":"Behavioral"},
	{"id":"q2","text":"Explain how a hash map works.","category":"Technical"},
	{"id":"q3","text":"Your deploy fails on a Friday evening. What do you do?","category":"Situational"},
	{"id":"q4","text":"Describe a project you are proud of.","category":"Behavioral"},
	{"id":"q5","text":"How do you keep your skills current?","category":"Behavioral"}
]}`

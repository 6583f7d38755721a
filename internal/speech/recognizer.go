// Package speech abstracts the speech-to-text capture collaborator. The core
// only consumes finalized text fragments; how capture is implemented is up to
// the presentation environment.
package speech

import (
	"context"
	"strings"
	"sync"
)

// Recognizer produces finalized transcript fragments from audio. Start and
// stop are controlled by the presentation layer.
type Recognizer interface {
	// Start begins capture. Fragments are delivered until Stop is called or
	// the context is cancelled.
	Start(ctx context.Context) error

	// Stop ends capture. Safe to call when not capturing.
	Stop() error

	// Fragments returns the stream of finalized text fragments.
	Fragments() <-chan string
}

// Buffer accumulates finalized transcript fragments into the pending answer
// text, merging each fragment after the existing text with a single space.
type Buffer struct {
	mu   sync.Mutex
	text string
}

// Merge appends a finalized fragment to the buffered text.
func (b *Buffer) Merge(fragment string) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.text == "" {
		b.text = fragment
		return
	}
	b.text = strings.TrimSpace(b.text) + " " + fragment
}

// Set replaces the buffered text, for typed edits alongside dictation.
func (b *Buffer) Set(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
}

// Text returns the buffered text.
func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Reset clears the buffer.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = ""
}

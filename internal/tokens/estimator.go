// Package tokens provides approximate token counts for prompt budgeting.
package tokens

import (
	"fmt"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// Estimator counts tokens with a BPE encoding. Gemini does not publish a
// local tokenizer, so counts are approximate; they are used only to log and
// bound prompt sizes, never for billing.
type Estimator struct {
	mu    sync.Mutex
	codec tokenizer.Codec
}

// NewEstimator creates an estimator backed by the o200k_base encoding, the
// closest available proxy for current-generation models.
func NewEstimator() (*Estimator, error) {
	codec, err := tokenizer.Get(tokenizer.O200kBase)
	if err != nil {
		return nil, fmt.Errorf("failed to get tokenizer encoding: %w", err)
	}
	return &Estimator{codec: codec}, nil
}

// Count returns the approximate token count of text. Encoding failures count
// as zero; budgeting is best-effort.
func (e *Estimator) Count(text string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids, _, err := e.codec.Encode(text)
	if err != nil {
		return 0
	}
	return len(ids)
}

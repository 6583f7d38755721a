package interview

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/Djalilu/interview-app/internal/domain"
	"github.com/Djalilu/interview-app/internal/genai"
	"github.com/Djalilu/interview-app/internal/tokens"
)

// QuestionCount is the fixed size of a batch-mode question list.
const QuestionCount = 5

// questionListSchema constrains the structured question request to
// {questions: [{id, text, category}]}.
var questionListSchema = &genai.Schema{
	Type: "object",
	Properties: map[string]*genai.Schema{
		"questions": {
			Type:        "array",
			Description: "List of interview questions.",
			Items: &genai.Schema{
				Type: "object",
				Properties: map[string]*genai.Schema{
					"id":       {Type: "string", Description: `A unique identifier for the question (e.g., "q1").`},
					"text":     {Type: "string", Description: "The text of the interview question."},
					"category": {Type: "string", Description: `The category of the question (e.g., "Behavioral", "Technical", "Situational").`},
				},
				Required: []string{"id", "text", "category"},
			},
		},
	},
	Required: []string{"questions"},
}

// QuestionBatchCoordinator drives the fixed-question-list interview: question
// retrieval, per-question answer collection, and completion-triggered
// feedback generation. Question and answer state has its own lock because the
// machine releases its lock during collaborator calls while snapshots keep
// reading.
type QuestionBatchCoordinator struct {
	model     LanguageModel
	estimator *tokens.Estimator
	logger    *slog.Logger

	jobRole      string
	languageName string

	mu        sync.Mutex
	questions []domain.Question
	answers   []domain.Answer
	index     int
}

// NewQuestionBatchCoordinator creates a coordinator for the given role and
// language. The estimator may be nil.
func NewQuestionBatchCoordinator(model LanguageModel, estimator *tokens.Estimator, logger *slog.Logger, jobRole, languageName string) *QuestionBatchCoordinator {
	return &QuestionBatchCoordinator{
		model:        model,
		estimator:    estimator,
		logger:       logger,
		jobRole:      jobRole,
		languageName: languageName,
	}
}

// FetchQuestions requests the diverse question set for the role. A payload
// that does not parse into the expected shape is rejected whole; no partial
// question list is accepted.
func (b *QuestionBatchCoordinator) FetchQuestions(ctx context.Context) error {
	var payload struct {
		Questions []domain.Question `json:"questions"`
	}
	if err := b.model.GenerateStructured(ctx, questionListPrompt(b.jobRole, b.languageName), questionListSchema, &payload); err != nil {
		return err
	}

	if len(payload.Questions) == 0 {
		return domain.ErrSchemaMismatch("response contained no questions")
	}
	for _, q := range payload.Questions {
		if strings.TrimSpace(q.ID) == "" || strings.TrimSpace(q.Text) == "" {
			return domain.ErrSchemaMismatch("response contained a malformed question")
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.questions = payload.Questions
	b.index = 0
	return nil
}

// Questions returns a copy of the fetched question list.
func (b *QuestionBatchCoordinator) Questions() []domain.Question {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// Current returns the question awaiting an answer, its position, and whether
// one remains.
func (b *QuestionBatchCoordinator) Current() (domain.Question, int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.index >= len(b.questions) {
		return domain.Question{}, b.index, false
	}
	return b.questions[b.index], b.index, true
}

// RecordAnswer captures the answer for the current question, denormalizing
// the question text into the answer record, and advances. It reports whether
// this was the last question.
func (b *QuestionBatchCoordinator) RecordAnswer(answerText string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	q := b.questions[b.index]
	b.answers = append(b.answers, domain.Answer{
		QuestionID:   q.ID,
		QuestionText: q.Text,
		AnswerText:   answerText,
	})
	b.index++
	return b.index >= len(b.questions)
}

// Answers returns a copy of the answer sequence in original order.
func (b *QuestionBatchCoordinator) Answers() []domain.Answer {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Answer, len(b.answers))
	copy(out, b.answers)
	return out
}

// ProduceFeedback formats the recorded answers as question/answer pairs and
// requests the three-section feedback report grounded in them.
func (b *QuestionBatchCoordinator) ProduceFeedback(ctx context.Context) (string, error) {
	answers := b.Answers()
	prompt := answersFeedbackPrompt(serializeAnswers(answers), b.jobRole, b.languageName)

	if b.estimator != nil {
		b.logger.Debug("feedback prompt built",
			slog.Int("answers", len(answers)),
			slog.Int("approx_tokens", b.estimator.Count(prompt)),
		)
	}

	return b.model.GenerateText(ctx, prompt)
}

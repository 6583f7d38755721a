// Package domain provides the core data model for interview sessions.
package domain

import "time"

// Sender identifies who produced a conversation message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is a single turn in a conversation-mode interview. The transcript
// is append-only while the interview is active and immutable once stored.
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// Question is one generated interview question in a batch-mode interview.
type Question struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// Answer pairs a recorded answer with the question it addressed. The question
// text is denormalized at creation time so the record stays self-contained
// even if the question list is discarded.
type Answer struct {
	QuestionID   string `json:"questionId"`
	QuestionText string `json:"questionText"`
	AnswerText   string `json:"answerText"`
}

// InterviewSession is the aggregate describing one interview.
//
// Exactly one of Messages or QuestionsAndAnswers is populated, depending on
// which modality produced the session. FeedbackReport is nil until the
// interview concludes; a session is persisted exactly once, at the moment the
// report becomes non-nil.
type InterviewSession struct {
	ID                  string    `json:"id"`
	Company             string    `json:"company"`
	CompanyURL          string    `json:"companyUrl"`
	JobRole             string    `json:"jobRole"`
	Language            string    `json:"language"`
	Date                time.Time `json:"date"`
	Messages            []Message `json:"messages,omitempty"`
	QuestionsAndAnswers []Answer  `json:"questionsAndAnswers,omitempty"`
	FeedbackReport      *string   `json:"feedbackReport"`
}

// Completed reports whether the session carries a feedback report.
func (s *InterviewSession) Completed() bool {
	return s != nil && s.FeedbackReport != nil
}

// Phase is the observable lifecycle phase of an interview session.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseLoading  Phase = "loading"
	PhaseActive   Phase = "active"
	PhaseFeedback Phase = "feedback"
	PhaseError    Phase = "error"
)

// Mode selects the interview modality.
type Mode string

const (
	// ModeConversation is the open-ended multi-turn dialogue with a
	// company-specific interviewer persona.
	ModeConversation Mode = "conversation"

	// ModeBatch is the fixed five-question interview for a job role.
	ModeBatch Mode = "batch"
)

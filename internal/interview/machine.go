package interview

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Djalilu/interview-app/internal/domain"
	"github.com/Djalilu/interview-app/internal/feedback"
	"github.com/Djalilu/interview-app/internal/storage"
	"github.com/Djalilu/interview-app/internal/tokens"
)

// Params are the modality-specific setup fields entered before an interview
// starts. They are retained across failures so a retry does not require
// re-entering them.
type Params struct {
	Mode       domain.Mode `json:"mode"`
	Company    string      `json:"company"`
	CompanyURL string      `json:"companyUrl"`
	JobRole    string      `json:"jobRole"`
	Language   string      `json:"language"`
}

// defaults recorded for batch-mode sessions, which have no company form.
const (
	batchCompany    = "General Practice"
	batchCompanyURL = ""
)

func (p *Params) validate() error {
	switch p.Mode {
	case domain.ModeConversation:
		if strings.TrimSpace(p.Company) == "" || strings.TrimSpace(p.JobRole) == "" || strings.TrimSpace(p.CompanyURL) == "" {
			return domain.ErrValidation("company, job role and company URL are required")
		}
	case domain.ModeBatch:
		if strings.TrimSpace(p.JobRole) == "" {
			return domain.ErrValidation("job role is required")
		}
	default:
		return domain.ErrValidation("unknown interview mode")
	}
	if _, ok := domain.LanguageName(p.Language); !ok {
		return domain.ErrValidation("unsupported language code")
	}
	return nil
}

// Snapshot is the presentation-facing view of a machine at a point in time.
// The presentation layer renders it and never makes state decisions itself.
type Snapshot struct {
	ID       string       `json:"id"`
	Mode     domain.Mode  `json:"mode"`
	Phase    domain.Phase `json:"phase"`
	Company  string       `json:"company"`
	JobRole  string       `json:"jobRole"`
	Language string       `json:"language"`

	Messages []domain.Message `json:"messages,omitempty"`

	Questions       []domain.Question `json:"questions,omitempty"`
	QuestionIndex   int               `json:"questionIndex,omitempty"`
	CurrentQuestion *domain.Question  `json:"currentQuestion,omitempty"`
	Answers         []domain.Answer   `json:"answers,omitempty"`

	FeedbackReport *string            `json:"feedbackReport,omitempty"`
	Sections       []feedback.Section `json:"sections,omitempty"`

	// PendingInput echoes the last rejected-or-failed input so the user can
	// retry without re-typing.
	PendingInput string `json:"pendingInput,omitempty"`

	// Completed is set once the session carries a feedback report; the
	// machine is terminal from then on.
	Completed bool `json:"completed"`

	Err *domain.CoachError `json:"error,omitempty"`
}

// Machine is the umbrella session lifecycle: setup -> loading -> active
// (repeating through loading on each exchange) -> feedback, with error
// reachable from any collaborator call and cancellation resetting to setup.
//
// The machine exclusively owns the in-progress session record. At most one
// collaborator call is in flight at a time; new submissions are refused while
// loading. Cancellation bumps an epoch counter so a call that resolves after
// cancellation is discarded instead of applied.
type Machine struct {
	mu sync.Mutex

	id           string
	params       Params
	languageName string

	phase     domain.Phase
	lastErr   *domain.CoachError
	pending   string
	inFlight  bool
	epoch     uint64
	completed bool

	session *domain.InterviewSession
	conv    *ConversationCoordinator
	batch   *QuestionBatchCoordinator

	model     LanguageModel
	estimator *tokens.Estimator
	store     storage.SessionStore
	logger    *slog.Logger

	now func() time.Time
}

// NewMachine validates the setup fields and creates a machine in the setup
// phase. Nothing is sent to the collaborator until Start.
func NewMachine(params Params, model LanguageModel, store storage.SessionStore, estimator *tokens.Estimator, logger *slog.Logger) (*Machine, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	languageName, _ := domain.LanguageName(params.Language)

	if params.Mode == domain.ModeBatch {
		params.Company = batchCompany
		params.CompanyURL = batchCompanyURL
	}

	m := &Machine{
		id:           uuid.NewString(),
		params:       params,
		languageName: languageName,
		phase:        domain.PhaseSetup,
		model:        model,
		estimator:    estimator,
		store:        store,
		logger:       logger,
		now:          time.Now,
	}
	m.resetCoordinators()
	return m, nil
}

func (m *Machine) resetCoordinators() {
	switch m.params.Mode {
	case domain.ModeConversation:
		m.conv = NewConversationCoordinator(m.model, m.estimator, m.logger,
			m.params.Company, m.params.JobRole, m.params.CompanyURL, m.languageName)
		m.batch = nil
	case domain.ModeBatch:
		m.batch = NewQuestionBatchCoordinator(m.model, m.estimator, m.logger,
			m.params.JobRole, m.languageName)
		m.conv = nil
	}
}

// ID returns the stable machine identifier, which becomes the session id.
func (m *Machine) ID() string {
	return m.id
}

// Start drives setup -> loading -> active. In conversation mode it opens the
// persona conversation; in batch mode it fetches the question list. On
// collaborator failure the machine lands in error with the setup fields
// retained, and Start may be called again to retry.
func (m *Machine) Start(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()

	if m.phase != domain.PhaseSetup && m.phase != domain.PhaseError {
		defer m.mu.Unlock()
		return m.snapshotLocked(), domain.ErrInvalidState("interview already started")
	}
	if m.session != nil {
		// Error phase with a live session means a failed turn or failed
		// feedback; restarting would discard or duplicate collected state.
		defer m.mu.Unlock()
		return m.snapshotLocked(), domain.ErrInvalidState("interview already in progress, retry the failed operation")
	}
	if m.inFlight {
		defer m.mu.Unlock()
		return m.snapshotLocked(), domain.ErrInvalidState("a request is already in flight")
	}

	m.phase = domain.PhaseLoading
	m.lastErr = nil
	m.inFlight = true
	epoch := m.epoch
	conv, batch := m.conv, m.batch
	m.mu.Unlock()

	var err error
	switch m.params.Mode {
	case domain.ModeConversation:
		_, err = conv.Begin(ctx)
	case domain.ModeBatch:
		err = batch.FetchQuestions(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false

	if m.epoch != epoch {
		// Cancelled while the call was in flight; discard the result.
		return m.snapshotLocked(), nil
	}
	if err != nil {
		m.phase = domain.PhaseError
		m.lastErr = domain.AsCoachError(err)
		return m.snapshotLocked(), nil
	}

	m.session = &domain.InterviewSession{
		ID:         m.id,
		Company:    m.params.Company,
		CompanyURL: m.params.CompanyURL,
		JobRole:    m.params.JobRole,
		Language:   m.params.Language,
		Date:       m.now(),
	}
	m.phase = domain.PhaseActive
	return m.snapshotLocked(), nil
}

// SubmitTurn handles one conversation-mode exchange. The sentinel command is
// intercepted before it reaches the collaborator and triggers feedback
// generation over the transcript so far.
func (m *Machine) SubmitTurn(ctx context.Context, text string) (Snapshot, error) {
	m.mu.Lock()

	if m.params.Mode != domain.ModeConversation {
		defer m.mu.Unlock()
		return m.snapshotLocked(), domain.ErrInvalidState("not a conversation interview")
	}
	if m.phase != domain.PhaseActive && m.phase != domain.PhaseError {
		defer m.mu.Unlock()
		return m.snapshotLocked(), domain.ErrInvalidState("interview is not active")
	}
	if m.session == nil {
		// Error phase without a session: the start itself failed and there is
		// no conversation to address a turn to.
		defer m.mu.Unlock()
		return m.snapshotLocked(), domain.ErrInvalidState("interview has not started, retry start")
	}
	if m.inFlight {
		defer m.mu.Unlock()
		return m.snapshotLocked(), domain.ErrInvalidState("a request is already in flight")
	}
	if strings.TrimSpace(text) == "" {
		defer m.mu.Unlock()
		return m.snapshotLocked(), domain.ErrValidation("message text is required")
	}

	if IsEndCommand(text) {
		m.conv.AppendUser(text)
		return m.finishLocked(ctx)
	}

	m.pending = text
	m.phase = domain.PhaseLoading
	m.lastErr = nil
	m.inFlight = true
	epoch := m.epoch
	conv := m.conv
	m.mu.Unlock()

	_, err := conv.SendTurn(ctx, text)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false

	if m.epoch != epoch {
		return m.snapshotLocked(), nil
	}
	if err != nil {
		m.phase = domain.PhaseError
		m.lastErr = domain.AsCoachError(err)
		return m.snapshotLocked(), nil
	}

	m.pending = ""
	m.phase = domain.PhaseActive
	return m.snapshotLocked(), nil
}

// RecordAnswer captures the answer for the current batch-mode question.
// Recording the last answer automatically triggers feedback generation.
func (m *Machine) RecordAnswer(ctx context.Context, answerText string) (Snapshot, error) {
	m.mu.Lock()

	if m.params.Mode != domain.ModeBatch {
		defer m.mu.Unlock()
		return m.snapshotLocked(), domain.ErrInvalidState("not a question batch interview")
	}
	if m.phase != domain.PhaseActive && m.phase != domain.PhaseError {
		defer m.mu.Unlock()
		return m.snapshotLocked(), domain.ErrInvalidState("interview is not active")
	}
	if m.session == nil {
		defer m.mu.Unlock()
		return m.snapshotLocked(), domain.ErrInvalidState("interview has not started, retry start")
	}
	if m.inFlight {
		defer m.mu.Unlock()
		return m.snapshotLocked(), domain.ErrInvalidState("a request is already in flight")
	}
	if strings.TrimSpace(answerText) == "" {
		defer m.mu.Unlock()
		return m.snapshotLocked(), domain.ErrValidation("answer text is required")
	}

	if m.phase == domain.PhaseError {
		// A failed feedback call is retried via Finish, not by re-answering.
		defer m.mu.Unlock()
		return m.snapshotLocked(), domain.ErrInvalidState("all questions answered, retry finish")
	}

	if _, _, ok := m.batch.Current(); !ok {
		defer m.mu.Unlock()
		return m.snapshotLocked(), domain.ErrInvalidState("no question awaiting an answer")
	}

	if done := m.batch.RecordAnswer(answerText); done {
		return m.finishLocked(ctx)
	}

	defer m.mu.Unlock()
	return m.snapshotLocked(), nil
}

// Finish concludes the interview: it generates the feedback report and, on
// success, seals and persists the session. With no session or job role in
// place it is a no-op rather than an error. A failed finish leaves the
// accumulated transcript or answers intact so it can be retried.
func (m *Machine) Finish(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()

	if m.session == nil || strings.TrimSpace(m.params.JobRole) == "" {
		defer m.mu.Unlock()
		return m.snapshotLocked(), nil
	}
	if m.completed {
		defer m.mu.Unlock()
		return m.snapshotLocked(), nil
	}
	if m.phase != domain.PhaseActive && m.phase != domain.PhaseError {
		defer m.mu.Unlock()
		return m.snapshotLocked(), domain.ErrInvalidState("interview is not active")
	}
	if m.inFlight {
		defer m.mu.Unlock()
		return m.snapshotLocked(), domain.ErrInvalidState("a request is already in flight")
	}

	return m.finishLocked(ctx)
}

// finishLocked runs feedback generation and persistence. Called with the lock
// held; releases it during the collaborator call and returns with it released.
func (m *Machine) finishLocked(ctx context.Context) (Snapshot, error) {
	m.phase = domain.PhaseFeedback
	m.lastErr = nil
	m.inFlight = true
	epoch := m.epoch
	conv, batch := m.conv, m.batch
	m.mu.Unlock()

	var report string
	var err error
	switch m.params.Mode {
	case domain.ModeConversation:
		report, err = conv.ProduceFeedback(ctx)
	case domain.ModeBatch:
		report, err = batch.ProduceFeedback(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false

	if m.epoch != epoch {
		return m.snapshotLocked(), nil
	}
	if err != nil {
		m.phase = domain.PhaseError
		m.lastErr = domain.AsCoachError(err)
		return m.snapshotLocked(), nil
	}

	switch m.params.Mode {
	case domain.ModeConversation:
		m.session.Messages = m.conv.Transcript()
	case domain.ModeBatch:
		m.session.QuestionsAndAnswers = m.batch.Answers()
	}
	m.session.FeedbackReport = &report

	// Persistence is best-effort: the report is already available in memory,
	// so a failed write is logged and never blocks the feedback view.
	if err := m.store.Upsert(ctx, m.session); err != nil {
		m.logger.Error("failed to persist session",
			slog.String("session_id", m.session.ID),
			slog.String("error", err.Error()),
		)
	}

	m.completed = true
	m.pending = ""
	m.phase = domain.PhaseFeedback
	return m.snapshotLocked(), nil
}

// Cancel discards all in-memory interview state and returns the machine to
// setup. It requires explicit confirmation; without it the call leaves state
// unchanged. Nothing is persisted, and a collaborator call still in flight
// has its result discarded when it resolves.
func (m *Machine) Cancel(confirm bool) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.completed {
		return m.snapshotLocked(), domain.ErrInvalidState("interview already completed")
	}
	if !confirm {
		return m.snapshotLocked(), nil
	}

	m.epoch++
	m.phase = domain.PhaseSetup
	m.lastErr = nil
	m.pending = ""
	m.session = nil
	m.resetCoordinators()
	return m.snapshotLocked(), nil
}

// Snapshot returns the current presentation-facing view.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Session returns a copy of the completed session record, if any.
func (m *Machine) Session() (*domain.InterviewSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.completed || m.session == nil {
		return nil, false
	}
	clone := *m.session
	return &clone, true
}

func (m *Machine) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:           m.id,
		Mode:         m.params.Mode,
		Phase:        m.phase,
		Company:      m.params.Company,
		JobRole:      m.params.JobRole,
		Language:     m.params.Language,
		PendingInput: m.pending,
		Completed:    m.completed,
		Err:          m.lastErr,
	}

	switch m.params.Mode {
	case domain.ModeConversation:
		if m.conv != nil {
			snap.Messages = m.conv.Transcript()
		}
	case domain.ModeBatch:
		if m.batch != nil {
			snap.Questions = m.batch.Questions()
			snap.Answers = m.batch.Answers()
			if q, i, ok := m.batch.Current(); ok {
				snap.QuestionIndex = i
				snap.CurrentQuestion = &q
			} else {
				snap.QuestionIndex = i
			}
		}
	}

	if m.session != nil && m.session.FeedbackReport != nil {
		snap.FeedbackReport = m.session.FeedbackReport
		snap.Sections = feedback.Parse(*m.session.FeedbackReport)
	}

	return snap
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Djalilu/interview-app/internal/domain"
	"github.com/Djalilu/interview-app/internal/genai"
	"github.com/Djalilu/interview-app/internal/interview"
	"github.com/Djalilu/interview-app/internal/storage/memory"
)

// scriptedChat replays canned interviewer replies.
type scriptedChat struct {
	replies []string
}

func (c *scriptedChat) Send(_ context.Context, _ string) (string, error) {
	if len(c.replies) == 0 {
		return "", domain.ErrGeneration("model returned no text")
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply, nil
}

// scriptedModel implements interview.LanguageModel with canned content.
type scriptedModel struct {
	first          string
	replies        []string
	report         string
	structuredJSON string
}

func (m *scriptedModel) StartChat(_ context.Context, _ string) (interview.ChatSession, string, error) {
	return &scriptedChat{replies: m.replies}, m.first, nil
}

func (m *scriptedModel) GenerateText(_ context.Context, _ string) (string, error) {
	return m.report, nil
}

func (m *scriptedModel) GenerateStructured(_ context.Context, _ string, _ *genai.Schema, out any) error {
	return json.Unmarshal([]byte(m.structuredJSON), out)
}

const testQuestionsJSON = `{"questions":[
	{"id":"q1","text":"Q one","category":"Behavioral"},
	{"id":"q2","text":"Q two","category":"Technical"},
	{"id":"q3","text":"Q three","category":"Situational"},
	{"id":"q4","text":"Q four","category":"Behavioral"},
	{"id":"q5","text":"Q five","category":"Technical"}
]}`

func newTestServer(t *testing.T, model interview.LanguageModel, store *memory.Store) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	handler := NewHandler(interview.NewRegistry(), model, store, nil, logger)
	router := chi.NewRouter()
	handler.Routes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var out bytes.Buffer
	if _, err := out.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, out.Bytes()
}

func decodeSnapshot(t *testing.T, body []byte) interview.Snapshot {
	t.Helper()
	var snap interview.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("decode snapshot: %v\n%s", err, body)
	}
	return snap
}

func TestConversationFlowOverHTTP(t *testing.T) {
	model := &scriptedModel{
		first:   "Why do you want this role?",
		replies: []string{"Tell me more."},
		report:  "Overall Assessment\nGood.\n\nKey Strengths\nClarity.\n\nAreas for Improvement\nExamples.",
	}
	store := memory.New()
	srv := newTestServer(t, model, store)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/interviews", map[string]any{
		"mode":       "conversation",
		"company":    "Acme",
		"companyUrl": "https://acme.example",
		"jobRole":    "Engineer",
		"language":   "en",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.StatusCode, body)
	}
	snap := decodeSnapshot(t, body)
	if snap.Phase != domain.PhaseActive || len(snap.Messages) != 1 {
		t.Fatalf("unexpected snapshot after create: %+v", snap)
	}
	id := snap.ID

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/interviews/"+id+"/turns", map[string]string{"text": "I like hard problems."})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("turn: expected 200, got %d: %s", resp.StatusCode, body)
	}
	snap = decodeSnapshot(t, body)
	if len(snap.Messages) != 3 {
		t.Fatalf("expected 3 messages after one exchange, got %d", len(snap.Messages))
	}

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/interviews/"+id+"/turns", map[string]string{"text": "End Interview"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("end: expected 200, got %d: %s", resp.StatusCode, body)
	}
	snap = decodeSnapshot(t, body)
	if snap.Phase != domain.PhaseFeedback || !snap.Completed {
		t.Fatalf("expected completed feedback, got %+v", snap)
	}
	if len(snap.Sections) != 3 {
		t.Errorf("expected 3 parsed sections, got %d", len(snap.Sections))
	}

	// The finished session shows up in history.
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/history", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", resp.StatusCode)
	}
	var history []domain.InterviewSession
	if err := json.Unmarshal(body, &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 1 || history[0].ID != id {
		t.Fatalf("expected the finished session in history, got %+v", history)
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/history/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("history by id: expected 200, got %d", resp.StatusCode)
	}
}

func TestBatchFlowOverHTTP(t *testing.T) {
	model := &scriptedModel{structuredJSON: testQuestionsJSON, report: "A report."}
	srv := newTestServer(t, model, memory.New())

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/interviews", map[string]any{
		"mode":    "batch",
		"jobRole": "Engineer",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.StatusCode, body)
	}
	snap := decodeSnapshot(t, body)
	if len(snap.Questions) != 5 || snap.CurrentQuestion == nil {
		t.Fatalf("unexpected batch snapshot: %+v", snap)
	}

	for i := 0; i < 5; i++ {
		resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/interviews/"+snap.ID+"/answers", map[string]string{"text": "answer"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("answer %d: expected 200, got %d: %s", i, resp.StatusCode, body)
		}
	}
	final := decodeSnapshot(t, body)
	if final.Phase != domain.PhaseFeedback || !final.Completed {
		t.Fatalf("expected completion after the last answer, got %+v", final)
	}
	if len(final.Answers) != 5 {
		t.Errorf("expected 5 answers in snapshot, got %d", len(final.Answers))
	}
}

func TestCreateValidationError(t *testing.T) {
	srv := newTestServer(t, &scriptedModel{}, memory.New())

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/interviews", map[string]any{
		"mode":    "conversation",
		"jobRole": "Engineer",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var errResp struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Error.Type != string(domain.ErrorTypeValidation) {
		t.Errorf("expected validation error type, got %q", errResp.Error.Type)
	}
}

func TestUnknownInterviewIs404(t *testing.T) {
	srv := newTestServer(t, &scriptedModel{}, memory.New())

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/interviews/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCancelOverHTTP(t *testing.T) {
	model := &scriptedModel{first: "Q?"}
	srv := newTestServer(t, model, memory.New())

	_, body := doJSON(t, http.MethodPost, srv.URL+"/api/interviews", map[string]any{
		"mode":       "conversation",
		"company":    "Acme",
		"companyUrl": "https://acme.example",
		"jobRole":    "Engineer",
	})
	id := decodeSnapshot(t, body).ID

	_, body = doJSON(t, http.MethodPost, srv.URL+"/api/interviews/"+id+"/cancel", map[string]bool{"confirm": false})
	if snap := decodeSnapshot(t, body); snap.Phase != domain.PhaseActive {
		t.Errorf("unconfirmed cancel must not reset, got %s", snap.Phase)
	}

	_, body = doJSON(t, http.MethodPost, srv.URL+"/api/interviews/"+id+"/cancel", map[string]bool{"confirm": true})
	if snap := decodeSnapshot(t, body); snap.Phase != domain.PhaseSetup {
		t.Errorf("confirmed cancel must reset to setup, got %s", snap.Phase)
	}
}

func TestHistoryFilters(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2026, 8, d, 10, 0, 0, 0, time.UTC) }
	seed := []domain.InterviewSession{
		{ID: "s1", JobRole: "Engineer", Language: "en", Date: day(1)},
		{ID: "s2", JobRole: "Designer", Language: "en", Date: day(2)},
		{ID: "s3", JobRole: "Engineer", Language: "en", Date: day(3)},
	}
	for i := range seed {
		if err := store.Upsert(ctx, &seed[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	srv := newTestServer(t, &scriptedModel{}, store)

	fetch := func(query string) []domain.InterviewSession {
		t.Helper()
		resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/history"+query, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("history%s: expected 200, got %d", query, resp.StatusCode)
		}
		var out []domain.InterviewSession
		if err := json.Unmarshal(body, &out); err != nil {
			t.Fatalf("decode history: %v", err)
		}
		return out
	}

	all := fetch("")
	if len(all) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(all))
	}
	// Newest first regardless of insertion order.
	if all[0].ID != "s3" || all[2].ID != "s1" {
		t.Errorf("history not sorted newest first: %v, %v, %v", all[0].ID, all[1].ID, all[2].ID)
	}

	engineers := fetch("?role=Engineer")
	if len(engineers) != 2 {
		t.Errorf("expected 2 engineer sessions, got %d", len(engineers))
	}

	byDate := fetch("?date=2026-08-02")
	if len(byDate) != 1 || byDate[0].ID != "s2" {
		t.Errorf("expected only s2 for that day, got %+v", byDate)
	}

	both := fetch("?role=Engineer&date=2026-08-03")
	if len(both) != 1 || both[0].ID != "s3" {
		t.Errorf("expected only s3 for role and day, got %+v", both)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	srv := newTestServer(t, &scriptedModel{}, memory.New())

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/catalog/languages", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("languages: expected 200, got %d", resp.StatusCode)
	}
	var languages map[string]string
	if err := json.Unmarshal(body, &languages); err != nil {
		t.Fatalf("decode languages: %v", err)
	}
	if languages["en"] != "English" {
		t.Errorf("expected English for en, got %q", languages["en"])
	}

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/catalog/roles", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("roles: expected 200, got %d", resp.StatusCode)
	}
	var categories []domain.JobCategory
	if err := json.Unmarshal(body, &categories); err != nil {
		t.Fatalf("decode roles: %v", err)
	}
	if len(categories) == 0 || len(categories[0].Roles) == 0 {
		t.Errorf("expected non-empty role catalog, got %+v", categories)
	}
}

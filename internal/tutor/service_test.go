package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rahulj/hintloop/internal/clarify"
	"github.com/rahulj/hintloop/internal/config"
	"github.com/rahulj/hintloop/internal/difficulty"
	"github.com/rahulj/hintloop/internal/extract"
	"github.com/rahulj/hintloop/internal/hint"
	"github.com/rahulj/hintloop/internal/llm"
	"github.com/rahulj/hintloop/internal/segment"
	"github.com/rahulj/hintloop/internal/session"
	"github.com/rahulj/hintloop/internal/store"
)

// memStore is an in-memory stand-in for all three repos, with a switch
// to simulate a storage outage.
type memStore struct {
	mu             sync.Mutex
	failing        bool
	struggles      map[string]*store.StruggleRecord
	difficulty     map[string]*store.DifficultyRecord
	difficultyGets int
	events         []store.HintEvent
	llmEvents      []store.LLMRequestEventData
}

func newMemStore() *memStore {
	return &memStore{
		struggles:  make(map[string]*store.StruggleRecord),
		difficulty: make(map[string]*store.DifficultyRecord),
	}
}

var errStoreDown = errors.New("store down")

func (m *memStore) UpsertStruggle(_ context.Context, rec *store.StruggleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errStoreDown
	}
	m.struggles[rec.SessionID+"|"+rec.QuestionID] = rec
	return nil
}

func (m *memStore) GetStruggle(_ context.Context, sessionID, questionID string) (*store.StruggleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return nil, errStoreDown
	}
	return m.struggles[sessionID+"|"+questionID], nil
}

func (m *memStore) UpsertDifficulty(_ context.Context, rec *store.DifficultyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errStoreDown
	}
	m.difficulty[rec.UserID+"|"+rec.Topic] = rec
	return nil
}

func (m *memStore) GetDifficulty(_ context.Context, userID, topic string) (*store.DifficultyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.difficultyGets++
	if m.failing {
		return nil, errStoreDown
	}
	return m.difficulty[userID+"|"+topic], nil
}

func (m *memStore) Append(_ context.Context, data store.HintEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errStoreDown
	}
	m.events = append(m.events, store.HintEvent{ID: int64(len(m.events) + 1), HintEventData: data})
	return nil
}

func (m *memStore) Recent(_ context.Context, limit int) ([]store.HintEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.events) {
		limit = len(m.events)
	}
	out := make([]store.HintEvent, limit)
	copy(out, m.events[len(m.events)-limit:])
	return out, nil
}

func (m *memStore) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errStoreDown
	}
	m.llmEvents = append(m.llmEvents, data)
	return nil
}

func (m *memStore) setFailing(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = v
}

// Interface adapters so one memStore serves all three repo roles.
type struggleRepo struct{ *memStore }

func (r struggleRepo) Upsert(ctx context.Context, rec *store.StruggleRecord) error {
	return r.UpsertStruggle(ctx, rec)
}
func (r struggleRepo) Get(ctx context.Context, sessionID, questionID string) (*store.StruggleRecord, error) {
	return r.GetStruggle(ctx, sessionID, questionID)
}

type difficultyRepo struct{ *memStore }

func (r difficultyRepo) Upsert(ctx context.Context, rec *store.DifficultyRecord) error {
	return r.UpsertDifficulty(ctx, rec)
}
func (r difficultyRepo) Get(ctx context.Context, userID, topic string) (*store.DifficultyRecord, error) {
	return r.GetDifficulty(ctx, userID, topic)
}

func newTestService(t *testing.T, ms *memStore, ex extract.Extractor) *Service {
	t.Helper()
	return New(config.Default(), Deps{
		Struggles:  struggleRepo{ms},
		Difficulty: difficultyRepo{ms},
		HintEvents: ms,
		LLMEvents:  ms,
		Extractor:  ex,
	})
}

const threeProblems = "1. Solve 2x + 3 = 11\n2. Find the area of a triangle with base 6 and height 4\n3. What is 30% of 80?"

func TestFullTurnFlow(t *testing.T) {
	ms := newMemStore()
	s := newTestService(t, ms, nil)
	ctx := context.Background()

	in, err := s.SubmitText(ctx, "u1", threeProblems)
	if err != nil {
		t.Fatalf("SubmitText: %v", err)
	}
	if len(in.Questions) != 3 {
		t.Fatalf("segmented %d questions, want 3", len(in.Questions))
	}
	if in.Stage != session.StageQuestionSelection {
		t.Fatalf("stage = %s, want question_selection", in.Stage)
	}

	turn := s.HandleTurn(ctx, "u1", "2")
	if turn.Intent != clarify.IntentProbe || turn.Selected == nil {
		t.Fatalf("selection turn: intent=%s selected=%v", turn.Intent, turn.Selected)
	}

	turn = s.HandleTurn(ctx, "u1", "I don't know which formula to use")
	if turn.Intent != clarify.IntentConfirm {
		t.Fatalf("excavation turn: intent = %s, want confirm", turn.Intent)
	}

	turn = s.HandleTurn(ctx, "u1", "yes that's it")
	if turn.Intent != clarify.IntentHintReady {
		t.Fatalf("confirmation turn: intent = %s, want hint_ready", turn.Intent)
	}
	if turn.Hint == nil || turn.Hint.Source != hint.SourceInstant {
		t.Fatalf("hint = %+v, want an instant-tier hint", turn.Hint)
	}

	if len(ms.struggles) != 1 {
		t.Fatalf("persisted %d struggles, want 1", len(ms.struggles))
	}
	if len(ms.events) != 1 {
		t.Fatalf("persisted %d hint events, want 1", len(ms.events))
	}
}

func TestImageIntakeEscalation(t *testing.T) {
	ex := &extract.MockExtractor{
		Results: []extract.Result{
			{Text: "####", TokenConfidences: []float64{0.2}},
			{Text: "####", TokenConfidences: []float64{0.2}},
		},
	}
	s := newTestService(t, newMemStore(), ex)
	ctx := context.Background()

	in, err := s.SubmitImage(ctx, "u1", []byte{0x01})
	if err != nil {
		t.Fatalf("SubmitImage: %v", err)
	}
	if in.Decision != extract.DecisionRetry {
		t.Fatalf("first decision = %s, want retry", in.Decision)
	}

	in, err = s.SubmitImage(ctx, "u1", []byte{0x02})
	if err != nil {
		t.Fatalf("SubmitImage: %v", err)
	}
	if in.Decision != extract.DecisionSwitchInput {
		t.Fatalf("second decision = %s, want switch_input", in.Decision)
	}
	if in.Mode != session.InputText {
		t.Fatalf("mode = %s, want text after switch", in.Mode)
	}
}

func TestNoExtractorConfigured(t *testing.T) {
	s := newTestService(t, newMemStore(), nil)
	if _, err := s.SubmitImage(context.Background(), "u1", nil); !errors.Is(err, ErrNoExtractor) {
		t.Fatalf("want ErrNoExtractor, got %v", err)
	}
}

func TestStorageOutageDefersWrites(t *testing.T) {
	ms := newMemStore()
	s := newTestService(t, ms, nil)
	ctx := context.Background()

	if _, err := s.SubmitText(ctx, "u1", "Solve 2x + 3 = 11"); err != nil {
		t.Fatalf("SubmitText: %v", err)
	}
	ms.setFailing(true)

	s.HandleTurn(ctx, "u1", "I can't isolate x")
	turn := s.HandleTurn(ctx, "u1", "yes")
	if turn.Intent != clarify.IntentHintReady || turn.Hint == nil {
		t.Fatalf("hint should resolve despite storage outage, got intent=%s", turn.Intent)
	}
	if s.queue.Len(kindStruggle) != 1 || s.queue.Len(kindHintEvent) != 1 {
		t.Fatalf("queue lens struggle=%d event=%d, want 1 and 1",
			s.queue.Len(kindStruggle), s.queue.Len(kindHintEvent))
	}

	// Store recovers; draining replays the deferred writes the way the
	// background sweep would.
	ms.setFailing(false)
	for _, kind := range s.queue.Kinds() {
		s.queue.Drain(kind, 10, func(p any) error {
			switch v := p.(type) {
			case *store.StruggleRecord:
				return struggleRepo{ms}.Upsert(ctx, v)
			case store.HintEventData:
				return ms.Append(ctx, v)
			}
			return nil
		})
	}
	if len(ms.struggles) != 1 || len(ms.events) != 1 {
		t.Fatalf("after replay struggles=%d events=%d, want 1 and 1", len(ms.struggles), len(ms.events))
	}
}

func TestReportOutcomeSkipsReadWhileCircuitOpen(t *testing.T) {
	ms := newMemStore()
	ms.difficulty["u1|linear_equation"] = &store.DifficultyRecord{
		UserID: "u1", Topic: "linear_equation", Level: 3,
	}
	s := newTestService(t, ms, nil)

	// Trip the storage breaker; the stored level must not be read while
	// the circuit is open and the write defers to the queue.
	for i := 0; i < config.Default().Resilience.BreakerThreshold; i++ {
		s.storeBreaker.Failure()
	}

	s.ReportOutcome(context.Background(), "u1", "linear_equation", difficulty.Analysis{
		CorrectMethod: true,
		CorrectAnswer: true,
		Confidence:    0.9,
	})

	ms.mu.Lock()
	gets := ms.difficultyGets
	ms.mu.Unlock()
	if gets != 0 {
		t.Fatalf("store read %d times while circuit open, want 0", gets)
	}
	if s.queue.Len(kindDifficulty) != 1 {
		t.Fatalf("queue len = %d, want the deferred write", s.queue.Len(kindDifficulty))
	}
}

func TestGeneratedHintRecordsRequestEvent(t *testing.T) {
	ms := newMemStore()
	provider := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"hint": "Collect the x terms on one side first."}`),
		Usage:   llm.Usage{InputTokens: 80, OutputTokens: 20, TotalTokens: 100},
	})
	s := New(config.Default(), Deps{
		Struggles:  struggleRepo{ms},
		Difficulty: difficultyRepo{ms},
		HintEvents: ms,
		LLMEvents:  ms,
		Provider:   provider,
	})

	sess := s.sessions.GetOrCreate("u1")
	sess.SetQuestions([]segment.Question{{
		Ordinal: 1, Text: "Solve 2x + 3 = 11", Type: segment.TypeLinearEquation, ContentID: "q1",
	}})

	sess.Lock()
	h := s.resolveHint(context.Background(), sess, *sess.Selected(), &session.StruggleAnalysis{
		Description: "confused by the substitution trick",
		Clarity:     session.ClarityClear,
		Confirmed:   true,
	})
	sess.Unlock()

	if h.Source != hint.SourceGenerated {
		t.Fatalf("source = %s, want generated", h.Source)
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if len(ms.llmEvents) != 1 {
		t.Fatalf("recorded %d request events, want 1", len(ms.llmEvents))
	}
	ev := ms.llmEvents[0]
	if ev.Purpose != "hint" || !ev.Success || ev.OutputTokens != 20 {
		t.Fatalf("request event = %+v", ev)
	}
}

func TestRepeatHintKeepsFirstConfirmationTime(t *testing.T) {
	ms := newMemStore()
	s := newTestService(t, ms, nil)
	sess := s.sessions.GetOrCreate("u1")
	sess.SetQuestions([]segment.Question{{
		Ordinal: 1, Text: "Solve 2x + 3 = 11", Type: segment.TypeLinearEquation, ContentID: "q1",
	}})
	struggle := &session.StruggleAnalysis{
		Description: "doesn't know how to isolate x",
		Clarity:     session.ClarityClear,
		Confirmed:   true,
	}

	sess.Lock()
	s.resolveHint(context.Background(), sess, *sess.Selected(), struggle)
	sess.Unlock()

	// Backdate the stored row, then ask again. The upsert must keep the
	// original confirmation time.
	past := time.Now().Add(-time.Hour)
	ms.mu.Lock()
	ms.struggles[sess.ID+"|q1"].ConfirmedAt = past
	ms.mu.Unlock()

	sess.Lock()
	s.resolveHint(context.Background(), sess, *sess.Selected(), struggle)
	sess.Unlock()

	ms.mu.Lock()
	defer ms.mu.Unlock()
	if got := ms.struggles[sess.ID+"|q1"].ConfirmedAt; !got.Equal(past) {
		t.Fatalf("ConfirmedAt = %v, want the first confirmation time %v", got, past)
	}
}

func TestReportOutcomeAdjustsLevel(t *testing.T) {
	ms := newMemStore()
	ms.difficulty["u1|linear_equation"] = &store.DifficultyRecord{
		UserID: "u1", Topic: "linear_equation", Level: 2, Attempts: 4, Successes: 2,
	}
	s := newTestService(t, ms, nil)
	ctx := context.Background()

	res := s.ReportOutcome(ctx, "u1", "linear_equation", difficulty.Analysis{
		CorrectMethod: true,
		CorrectAnswer: true,
		Confidence:    0.9,
	})
	if res.Level != 3 {
		t.Fatalf("level = %d, want 3 after a confident success at 2", res.Level)
	}

	rec := ms.difficulty["u1|linear_equation"]
	if rec.Level != 3 || rec.Attempts != 5 || rec.Successes != 3 {
		t.Fatalf("persisted record = %+v", rec)
	}

	res = s.ReportOutcome(ctx, "u1", "linear_equation", difficulty.Analysis{
		CorrectMethod:  false,
		SpecificIssues: []string{"sign error", "wrong operation", "arithmetic slip"},
	})
	if res.Level != 2 {
		t.Fatalf("level = %d, want 2 after a failed attempt at 3", res.Level)
	}
}

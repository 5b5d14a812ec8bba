package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"ContentCurator/internal/collector"
	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

var (
	_ ports.TopicRepository     = (*memStore)(nil)
	_ ports.SourceRepository    = (*memStore)(nil)
	_ ports.ItemRepository      = (*memStore)(nil)
	_ ports.PrincipleRepository = (*memStore)(nil)
	_ ports.ReportRepository    = (*memStore)(nil)
	_ ports.ActionRepository    = (*memStore)(nil)
	_ ports.FeedbackRepository  = (*memStore)(nil)
)

// memStore is an in-memory stand-in for the SQL store.
type memStore struct {
	mu         sync.Mutex
	topics     []domain.Topic
	sources    []domain.Source
	items      []*domain.CollectedItem
	principles []domain.Principle
	reports    []domain.Report
	actions    []domain.Action
	feedback   []domain.Feedback
	touched    map[string]int

	failUpsert      map[string]bool
	failUpdate      map[string]bool
	listSourcesErr  error
	listPendingErr  error
	createReportErr error
}

func newMemStore() *memStore {
	return &memStore{touched: map[string]int{}, failUpsert: map[string]bool{}, failUpdate: map[string]bool{}}
}

func (m *memStore) addTopic(t domain.Topic) domain.Topic {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	m.topics = append(m.topics, t)
	return t
}

func (m *memStore) addSource(s domain.Source) domain.Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.sources = append(m.sources, s)
	return s
}

func (m *memStore) itemCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *memStore) item(sourceID, externalID string) (domain.CollectedItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.SourceID == sourceID && it.ExternalID == externalID {
			return *it, true
		}
	}
	return domain.CollectedItem{}, false
}

func (m *memStore) GetTopic(_ context.Context, id string) (domain.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.topics {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Topic{}, domain.ErrNotFound
}

func (m *memStore) GetTopicByName(_ context.Context, name string) (domain.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.topics {
		if t.Name == name {
			return t, nil
		}
	}
	return domain.Topic{}, domain.ErrNotFound
}

func (m *memStore) ListActiveSources(_ context.Context, topicID string) ([]domain.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listSourcesErr != nil {
		return nil, m.listSourcesErr
	}
	var out []domain.Source
	for _, s := range m.sources {
		if s.Active && (topicID == "" || s.TopicID == topicID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) ListSourcesByIDs(_ context.Context, ids []string) ([]domain.Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.Source
	for _, s := range m.sources {
		if want[s.ID] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) ListSourceIDsByTopic(_ context.Context, topicID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.sources {
		if s.TopicID == topicID {
			out = append(out, s.ID)
		}
	}
	return out, nil
}

func (m *memStore) TouchCollected(_ context.Context, sourceID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched[sourceID]++
	for i := range m.sources {
		if m.sources[i].ID == sourceID {
			m.sources[i].LastCollectedAt = &at
		}
	}
	return nil
}

func (m *memStore) UpsertItem(_ context.Context, item domain.CollectedItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpsert[item.ExternalID] {
		return errors.New("disk full")
	}
	for _, it := range m.items {
		if it.SourceID == item.SourceID && it.ExternalID == item.ExternalID {
			it.Title, it.Content, it.URL, it.Metadata, it.CollectedAt = item.Title, item.Content, item.URL, item.Metadata, item.CollectedAt
			return nil
		}
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	m.items = append(m.items, &item)
	return nil
}

func (m *memStore) sortedItems(keep func(*domain.CollectedItem) bool, limit int) []domain.CollectedItem {
	var out []domain.CollectedItem
	for _, it := range m.items {
		if keep(it) {
			out = append(out, *it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CollectedAt.After(out[j].CollectedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m *memStore) ListUnscored(_ context.Context, limit int) ([]domain.CollectedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedItems(func(it *domain.CollectedItem) bool { return it.QualityScore == nil }, limit), nil
}

func (m *memStore) ListUnprocessed(_ context.Context, sourceIDs []string, limit int) ([]domain.CollectedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[string]bool{}
	for _, id := range sourceIDs {
		want[id] = true
	}
	return m.sortedItems(func(it *domain.CollectedItem) bool {
		return want[it.SourceID] && it.ProcessedAt == nil
	}, limit), nil
}

func (m *memStore) ListCollectedSince(_ context.Context, since time.Time, limit int) ([]domain.CollectedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedItems(func(it *domain.CollectedItem) bool { return !it.CollectedAt.Before(since) }, limit), nil
}

func (m *memStore) UpdateQuality(_ context.Context, itemID string, res domain.QualityResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdate[itemID] {
		return errors.New("update failed")
	}
	for _, it := range m.items {
		if it.ID == itemID {
			score := res.Score
			it.QualityScore = &score
			it.QualityBreakdown = res.Breakdown
			it.FilteredOut = !res.ShouldProcess
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memStore) MarkProcessed(_ context.Context, itemID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.ID == itemID {
			it.ProcessedAt = &at
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memStore) ResetProcessed(_ context.Context, sourceIDs []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[string]bool{}
	for _, id := range sourceIDs {
		want[id] = true
	}
	n := 0
	for _, it := range m.items {
		if it.ProcessedAt == nil || it.FilteredOut {
			continue
		}
		if len(sourceIDs) > 0 && !want[it.SourceID] {
			continue
		}
		it.ProcessedAt = nil
		n++
	}
	return n, nil
}

func (m *memStore) ListActivePrinciples(_ context.Context, limit int) ([]domain.Principle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Principle
	for _, p := range m.principles {
		if p.Active {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) ListLowConfidence(_ context.Context, below float64) ([]domain.Principle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Principle
	for _, p := range m.principles {
		if p.Active && p.Confidence < below {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) GetPrinciple(_ context.Context, id string) (domain.Principle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.principles {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Principle{}, domain.ErrNotFound
}

func (m *memStore) UpdateConfidence(_ context.Context, id string, confidence float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.principles {
		if m.principles[i].ID == id {
			m.principles[i].Confidence = confidence
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memStore) CreateReport(_ context.Context, r domain.Report) (domain.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createReportErr != nil {
		return domain.Report{}, m.createReportErr
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = domain.ReportPending
	}
	m.reports = append(m.reports, r)
	return r, nil
}

func (m *memStore) CreateAction(_ context.Context, a domain.Action) (domain.Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = domain.ActionPending
	}
	m.actions = append(m.actions, a)
	return a, nil
}

func (m *memStore) ListPendingActions(_ context.Context) ([]domain.Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listPendingErr != nil {
		return nil, m.listPendingErr
	}
	var out []domain.Action
	for _, a := range m.actions {
		if a.Status == domain.ActionPending {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) GetAction(_ context.Context, id string) (domain.Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.actions {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Action{}, domain.ErrNotFound
}

func (m *memStore) UpdateActionStatus(_ context.Context, id string, status domain.ActionStatus, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.actions {
		if m.actions[i].ID != id {
			continue
		}
		m.actions[i].Status = status
		switch status {
		case domain.ActionConfirmed:
			m.actions[i].ConfirmedAt = &at
		case domain.ActionExecuted:
			m.actions[i].ExecutedAt = &at
		}
		return nil
	}
	return domain.ErrNotFound
}

func (m *memStore) CreateFeedback(_ context.Context, fb domain.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback = append(m.feedback, fb)
	return nil
}

func (m *memStore) ListFeedback(_ context.Context) ([]domain.Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Feedback(nil), m.feedback...), nil
}

// stubAdapter returns canned items or an error.
type stubAdapter struct {
	kind  string
	items []domain.CollectedItem
	err   error
	panic bool
}

func (s stubAdapter) SourceKind() string { return s.kind }

func (s stubAdapter) Collect(context.Context) ([]domain.CollectedItem, error) {
	if s.panic {
		panic("adapter exploded")
	}
	return s.items, s.err
}

// registryFor maps each source locator to a canned adapter.
func registryFor(kind domain.SourceKind, byLocator map[string]stubAdapter) *collector.Registry {
	reg := collector.NewRegistry()
	reg.Register(kind, func(src domain.Source) (collector.Adapter, error) {
		a, ok := byLocator[src.Locator]
		if !ok {
			return nil, fmt.Errorf("no stub for %s", src.Locator)
		}
		return a, nil
	})
	return reg
}

// fakeAnalyzer answers every prompt with the same response unless respond
// is set.
type fakeAnalyzer struct {
	mu       sync.Mutex
	response string
	respond  func(prompt string) string
	err      error
	prompts  []string
	budget   int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, prompt string, maxTokens int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.budget = maxTokens
	if f.respond != nil {
		return f.respond(prompt), f.err
	}
	return f.response, f.err
}

func (f *fakeAnalyzer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []string
	fail  bool
	panic bool
}

func (f *fakeNotifier) Send(_ context.Context, action domain.Action) domain.NotifyResult {
	if f.panic {
		panic("notifier exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, action.ID)
	if f.fail {
		return domain.NotifyResult{Success: false, Error: "webhook returned 500"}
	}
	return domain.NotifyResult{Success: true, Message: "sent"}
}

type fakeArchiver struct {
	runs []domain.RunResult
}

func (f *fakeArchiver) ArchiveRun(_ context.Context, res domain.RunResult) error {
	f.runs = append(f.runs, res)
	return nil
}

package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/ports"
)

// MemoryStore keeps records in process memory. Used when no database is configured.
type MemoryStore struct {
	mu          sync.RWMutex
	problems    map[string]domain.Problem
	ideas       map[string]domain.Idea
	validations map[string]domain.Validation
	now         func() time.Time
}

var _ ports.RecordStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		problems:    map[string]domain.Problem{},
		ideas:       map[string]domain.Idea{},
		validations: map[string]domain.Validation{},
		now:         time.Now,
	}
}

// SaveProblems upserts problems by id.
func (m *MemoryStore) SaveProblems(_ context.Context, problems []domain.Problem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range problems {
		m.problems[p.ID] = p
	}
	return nil
}

// FindProblem returns a stored problem or ErrNotFound.
func (m *MemoryStore) FindProblem(_ context.Context, id string) (domain.Problem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.problems[id]
	if !ok {
		return domain.Problem{}, fmt.Errorf("%w: problem %s", domain.ErrNotFound, id)
	}
	return p, nil
}

// SaveIdea stores an idea; an existing id is kept.
func (m *MemoryStore) SaveIdea(_ context.Context, idea domain.Idea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ideas[idea.ID]; !ok {
		m.ideas[idea.ID] = idea
	}
	return nil
}

// Ideas returns the number of stored ideas.
func (m *MemoryStore) Ideas() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ideas)
}

// SaveValidation stores a validation artifact; ids must be unique.
func (m *MemoryStore) SaveValidation(_ context.Context, v domain.Validation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.validations[v.ID]; ok {
		return fmt.Errorf("validation %s already exists", v.ID)
	}
	v.Results = copyResults(v.Results)
	m.validations[v.ID] = v
	return nil
}

// FindValidation returns a stored artifact or ErrNotFound.
func (m *MemoryStore) FindValidation(_ context.Context, id string) (domain.Validation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.validations[id]
	if !ok {
		return domain.Validation{}, fmt.Errorf("%w: validation %s", domain.ErrNotFound, id)
	}
	v.Results = copyResults(v.Results)
	return v, nil
}

// UpdateValidation applies the patch; results are merged key by key.
func (m *MemoryStore) UpdateValidation(_ context.Context, id string, patch domain.ValidationPatch) (domain.Validation, error) {
	if patch.Status != nil && !domain.ValidStatus(*patch.Status) {
		return domain.Validation{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *patch.Status)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.validations[id]
	if !ok {
		return domain.Validation{}, fmt.Errorf("%w: validation %s", domain.ErrNotFound, id)
	}
	if patch.Status != nil {
		v.Status = *patch.Status
	}
	if len(patch.Results) > 0 {
		if v.Results == nil {
			v.Results = map[string]any{}
		}
		for k, val := range patch.Results {
			v.Results[k] = val
		}
	}
	v.UpdatedAt = m.now().UTC()
	m.validations[id] = v

	v.Results = copyResults(v.Results)
	return v, nil
}

// AppendSurveyResponse adds resp to the survey under the write lock.
func (m *MemoryStore) AppendSurveyResponse(_ context.Context, surveyID string, resp domain.SurveyResponse) (domain.Validation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.validations[surveyID]
	if !ok || v.Type != domain.ArtifactSurvey {
		return domain.Validation{}, fmt.Errorf("%w: survey %s", domain.ErrNotFound, surveyID)
	}

	var responses []any
	if existing, ok := v.Results[domain.ResultResponses].([]any); ok {
		responses = append(responses, existing...)
	}
	responses = append(responses, resp.Entry())

	total := 0.0
	for _, r := range responses {
		if entry, ok := r.(map[string]any); ok {
			if w, ok := entry["willingness_to_pay"].(float64); ok {
				total += w
			}
		}
	}

	results := copyResults(v.Results)
	if results == nil {
		results = map[string]any{}
	}
	results[domain.ResultResponses] = responses
	results[domain.ResultTotalResponses] = len(responses)
	results[domain.ResultAvgWillingness] = total / float64(len(responses))
	v.Results = results
	v.UpdatedAt = m.now().UTC()
	m.validations[surveyID] = v

	v.Results = copyResults(v.Results)
	return v, nil
}

func copyResults(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

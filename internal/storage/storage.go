package storage

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/lyriceval/internal/models"
)

// RunStore keeps evaluation runs in memory, keyed by a generated ID.
type RunStore struct {
	runs map[string]*models.EvaluationRun
	mu   sync.RWMutex
}

func New() *RunStore {
	return &RunStore{
		runs: make(map[string]*models.EvaluationRun),
	}
}

// Add assigns run a new ID when it has none and stores it.
func (s *RunStore) Add(run *models.EvaluationRun) string {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return run.ID
}

func (s *RunStore) Get(runID string) (*models.EvaluationRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, exists := s.runs[runID]
	return run, exists
}

// List returns every run, oldest first.
func (s *RunStore) List() []*models.EvaluationRun {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.EvaluationRun, 0, len(s.runs))
	for _, v := range s.runs {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (s *RunStore) Delete(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, runID)
}

package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/lyriceval/internal/models"
)

func TestRunStore(t *testing.T) {
	s := New()
	now := time.Now()

	second := &models.EvaluationRun{CreatedAt: now.Add(time.Second)}
	first := &models.EvaluationRun{ID: "fixed", CreatedAt: now}

	id := s.Add(second)
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("generated ID %q is not a UUID: %v", id, err)
	}
	if s.Add(first) != "fixed" {
		t.Error("existing IDs should be kept")
	}

	if got, ok := s.Get(id); !ok || got != second {
		t.Errorf("Get(%s) = %v, %v", id, got, ok)
	}

	list := s.List()
	if len(list) != 2 || list[0] != first || list[1] != second {
		t.Errorf("List() not ordered by creation time")
	}

	s.Delete("fixed")
	if _, ok := s.Get("fixed"); ok {
		t.Error("Delete() did not remove the run")
	}
}

package mem

import (
	"context"
	"sync"

	"github.com/mockorbit/interviewd/internal/domain"
	"github.com/mockorbit/interviewd/internal/store"
)

// Interview is one seeded record as it appears in config.
type Interview struct {
	ID          string `mapstructure:"id"`
	Interviewer string `mapstructure:"interviewer"`
	Interviewee string `mapstructure:"interviewee"`
	Status      string `mapstructure:"status"`
}

// Config represents the InMemory store config structure.
type Config struct {
	Interviews []Interview `mapstructure:"interviews"`
}

// InMemory represents the in-memory implementation of store.Interviews.
type InMemory struct {
	mu         sync.RWMutex
	interviews map[domain.RoomID]domain.Interview
}

// New returns an in-memory store seeded from cfg.
func New(cfg Config) *InMemory {
	m := &InMemory{interviews: make(map[domain.RoomID]domain.Interview, len(cfg.Interviews))}
	for _, iv := range cfg.Interviews {
		status := domain.InterviewStatus(iv.Status)
		if status == "" {
			status = domain.StatusScheduled
		}
		m.Put(domain.Interview{
			ID:          domain.RoomID(iv.ID),
			Interviewer: domain.UserID(iv.Interviewer),
			Interviewee: domain.UserID(iv.Interviewee),
			Status:      status,
		})
	}
	return m
}

// Put adds or replaces an interview.
func (m *InMemory) Put(iv domain.Interview) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interviews[iv.ID] = iv
}

// GetInterview gets an interview from the store.
func (m *InMemory) GetInterview(_ context.Context, id domain.RoomID) (domain.Interview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	iv, ok := m.interviews[id]
	if !ok {
		return domain.Interview{}, store.ErrInterviewNotFound
	}
	return iv, nil
}

// Package interview owns the session state machine: lifecycle, turn
// sequencing, the coding gate and the termination policy.
package interview

import (
	"context"
	"errors"
	"time"

	"github.com/preplab/preptalk/internal/code"
)

var (
	// ErrNotFound is returned for unknown session ids. It is the only
	// collaborator-independent error surfaced to clients as a hard failure.
	ErrNotFound = errors.New("session not found")

	// ErrSessionFinished rejects submissions arriving after termination.
	ErrSessionFinished = errors.New("session already finished")
)

// Session is the central mutable entity, one per interview. The questions,
// answers, feedback and scores sequences are append-only and parallel:
// len(Answers) == len(Feedback) == len(Scores) == CurrentIndex, and
// len(Questions) == CurrentIndex+1 while the session is open.
type Session struct {
	ID                string         `json:"session_id"`
	Role              string         `json:"role"`
	Seniority         string         `json:"seniority"`
	PreferredLanguage string         `json:"preferred_language,omitempty"`
	Questions         []string       `json:"questions"`
	Answers           []string       `json:"answers"`
	Feedback          []string       `json:"feedback"`
	Scores            []float64      `json:"scores"`
	CodingQuestion    *code.Question `json:"coding_question,omitempty"`
	CodingPresented   bool           `json:"coding_presented"`
	CodingCompleted   bool           `json:"coding_completed"`
	CurrentIndex      int            `json:"current_index"`
	Finished          bool           `json:"finished"`
	StartedAt         time.Time      `json:"started_at"`
	LastActivityAt    time.Time      `json:"last_activity_at"`
}

// Clone returns a deep copy so callers never alias stored state.
func (s *Session) Clone() *Session {
	c := *s
	c.Questions = append([]string(nil), s.Questions...)
	c.Answers = append([]string(nil), s.Answers...)
	c.Feedback = append([]string(nil), s.Feedback...)
	c.Scores = append([]float64(nil), s.Scores...)
	if s.CodingQuestion != nil {
		q := *s.CodingQuestion
		q.Examples = append([]string(nil), s.CodingQuestion.Examples...)
		q.Constraints = append([]string(nil), s.CodingQuestion.Constraints...)
		c.CodingQuestion = &q
	}
	return &c
}

// Store persists sessions keyed by id. Implementations must serialize Update
// calls per session id (concurrent updates for different ids may proceed in
// parallel) and commit the mutation all-or-nothing: when fn returns an error
// the stored session is unchanged.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
	Delete(ctx context.Context, id string) error
	// ExpireBefore evicts sessions idle longer than ttl and reports how many.
	ExpireBefore(ctx context.Context, ttl time.Duration) (int, error)
	// ActiveCount reports open (unfinished, unexpired) sessions.
	ActiveCount(ctx context.Context) (int, error)
	Close() error
}

// NewStore creates a Postgres-backed store when a database URL is configured,
// otherwise the in-memory store.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if databaseURL == "" {
		return NewMemoryStore(), nil
	}
	return NewPostgresStore(ctx, databaseURL)
}

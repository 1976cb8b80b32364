package brain

import (
	"context"
	"errors"
	"sync"
)

// MockClient replays scripted completions in order. Used in tests and when no
// generation backend is configured but augmented behavior must be exercised.
type MockClient struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   int
}

func NewMockClient(replies ...string) *MockClient {
	return &MockClient{replies: replies}
}

// FailWith makes every subsequent Complete call return err.
func (c *MockClient) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *MockClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *MockClient) Complete(_ context.Context, _ string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	if len(c.replies) == 0 {
		return "", errors.New("mock brain: no scripted reply")
	}
	reply := c.replies[0]
	if len(c.replies) > 1 {
		c.replies = c.replies[1:]
	}
	return reply, nil
}

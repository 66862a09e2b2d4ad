package testutil

import (
	"context"
	"sync"
)

// Publisher records published events instead of talking to a broker.
type Publisher struct {
	mu     sync.Mutex
	Events []interface{}
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Publish(_ context.Context, _ string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, value)
	return nil
}

func (p *Publisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Events)
}

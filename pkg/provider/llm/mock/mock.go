// Package mock provides a scripted llm.Provider for tests.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/vorder/vorder/pkg/provider/llm"
)

// Provider is a scripted llm.Provider. Configure Response/Err before use;
// all fields are guarded for concurrent access.
type Provider struct {
	mu sync.Mutex

	// Response is returned by Complete when Err is nil.
	Response string

	// Err, when non-nil, is returned by Complete.
	Err error

	// Delay, when positive, makes Complete sleep (context-aware) before
	// responding. Useful for timeout tests.
	Delay time.Duration

	// Calls counts Complete invocations.
	Calls int

	// LastRequest records the most recent request.
	LastRequest llm.CompletionRequest
}

// Compile-time interface check.
var _ llm.Provider = (*Provider)(nil)

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.Calls++
	p.LastRequest = req
	response, err, delay := p.Response, p.Err, p.Delay
	p.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &llm.CompletionResponse{Content: response}, nil
}

// Package mock provides a scripted intent.Classifier for tests.
package mock

import (
	"context"
	"sync"

	"github.com/vorder/vorder/internal/intent"
	"github.com/vorder/vorder/internal/session"
)

// Classifier is a scripted intent.Classifier. The zero value always answers
// {unknown, 0}, which routes every turn through the booster rules.
type Classifier struct {
	mu sync.Mutex

	// Result is returned by every Classify call.
	Result intent.Classification

	// Err, when non-nil, is returned alongside the zero Classification.
	Err error

	// Calls counts Classify invocations; LastText records the most recent
	// utterance.
	Calls    int
	LastText string
}

// Compile-time interface check.
var _ intent.Classifier = (*Classifier)(nil)

// Classify implements intent.Classifier.
func (c *Classifier) Classify(_ context.Context, text string, _ *session.Session) (intent.Classification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Calls++
	c.LastText = text
	if c.Err != nil {
		return intent.Classification{}, c.Err
	}
	if c.Result.Intent == "" {
		return intent.Classification{Intent: intent.Unknown}, nil
	}
	return c.Result, nil
}

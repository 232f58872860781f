// Package fetch retrieves catalog pages. The production client rides on
// colly; callers compose it with a gate.Gate so every fetch in the process
// shares one admission limiter.
package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/spectralml/webbook-crawler/internal/gate"
)

// Client fetches one catalog page by its relative href and returns the
// decoded body. Every failure mode (transport error, non-2xx status, timeout)
// surfaces as a *Failure; implementations never return raw transport errors.
type Client interface {
	Fetch(ctx context.Context, href string) (string, error)
}

// Failure is the typed outcome for any unsuccessful fetch. StatusCode is zero
// when the request never produced an HTTP response.
type Failure struct {
	Href       string
	StatusCode int
	Err        error
}

func (f *Failure) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", f.Href, f.StatusCode, f.Err)
	}
	return fmt.Sprintf("fetch %s: %v", f.Href, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Gated wraps a Client so every fetch holds a gate slot for its full
// duration. The slot is released on all exit paths.
type Gated struct {
	client Client
	gate   *gate.Gate
}

// NewGated composes a client with the shared gate.
func NewGated(client Client, g *gate.Gate) *Gated {
	return &Gated{client: client, gate: g}
}

// Fetch acquires a slot, delegates, and releases the slot.
func (g *Gated) Fetch(ctx context.Context, href string) (string, error) {
	var body string
	err := g.gate.Do(ctx, func() error {
		var ferr error
		body, ferr = g.client.Fetch(ctx, href)
		return ferr
	})
	if err != nil {
		var failure *Failure
		if errors.As(err, &failure) {
			return "", failure
		}
		return "", &Failure{Href: href, Err: err}
	}
	return body, nil
}

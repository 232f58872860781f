// Package crawl drives discovery and extraction over the catalog: the
// frontier crawler expands index pages level by level until every reachable
// formula page is known, and the batch runner turns formula pages into
// records. All fetches go through the caller-supplied client, which is
// expected to be gated.
package crawl

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spectralml/webbook-crawler/internal/catalog"
	"github.com/spectralml/webbook-crawler/internal/fetch"
	"github.com/spectralml/webbook-crawler/internal/progress"
)

const defaultMaxIterations = 100

// Crawler owns one run of frontier discovery and its follow-up extraction
// batches. It has no process-wide state; logger and progress sink are
// injected.
type Crawler struct {
	client        fetch.Client
	emitter       progress.Emitter
	logger        *zap.Logger
	maxIterations int
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithEmitter injects the progress sink; defaults to a no-op emitter.
func WithEmitter(e progress.Emitter) Option {
	return func(c *Crawler) {
		if e != nil {
			c.emitter = e
		}
	}
}

// WithLogger injects the error logger; defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Crawler) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxIterations overrides the frontier iteration ceiling.
func WithMaxIterations(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// New builds a Crawler over the given page client.
func New(client fetch.Client, opts ...Option) *Crawler {
	c := &Crawler{
		client:        client,
		emitter:       progress.NopEmitter{},
		logger:        zap.NewNop(),
		maxIterations: defaultMaxIterations,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the outcome of a frontier run. It is always a usable partial
// result: HitCeiling (with the Unresolved set) is the only reportable
// condition, never an error.
type Result struct {
	// Leaves holds every discovered formula link.
	Leaves catalog.LinkSet
	// Unresolved holds links still pending when the run stopped early.
	Unresolved catalog.LinkSet
	// Iterations counts classification rounds, the seed round included.
	Iterations int
	// HitCeiling is set when the iteration ceiling stopped the run.
	HitCeiling bool
}

// classify fetches one index page and splits its anchors. A page that cannot
// be fetched reports itself as failed so the frontier retries it next round.
func (c *Crawler) classify(ctx context.Context, runID uuid.UUID, href catalog.Link) catalog.Classification {
	body, err := c.client.Fetch(ctx, string(href))
	if err != nil {
		c.logger.Warn("index page failed", zap.String("href", string(href)), zap.Error(err))
		c.emitter.Emit(progress.Event{
			RunID: runID,
			TS:    time.Now().UTC(),
			Stage: progress.StagePageError,
			Href:  string(href),
			Note:  err.Error(),
		})
		return catalog.Classification{
			Leaves: catalog.NewLinkSet(),
			Groups: catalog.NewLinkSet(),
			Failed: catalog.NewLinkSet(href),
		}
	}
	return catalog.ClassifyIndex(body)
}

// classifyRound expands every link of work concurrently and returns all
// classifications once the whole round has finished. Tasks only return
// values; merging happens after this barrier.
func (c *Crawler) classifyRound(ctx context.Context, runID uuid.UUID, work catalog.LinkSet) []catalog.Classification {
	var (
		mu      sync.Mutex
		results = make([]catalog.Classification, 0, work.Len())
	)
	g, gctx := errgroup.WithContext(ctx)
	for href := range work {
		g.Go(func() error {
			cls := c.classify(gctx, runID, href)
			mu.Lock()
			results = append(results, cls)
			mu.Unlock()
			return nil
		})
	}
	// Tasks never return errors, so Wait is purely the round barrier.
	_ = g.Wait()
	return results
}

// CollectAllLeafLinks discovers every formula link reachable from seed. Group
// pages are expanded once; pages that fail are retried on following rounds
// until they succeed or the iteration ceiling stops the run with a partial
// result.
func (c *Crawler) CollectAllLeafLinks(ctx context.Context, seed catalog.Link) Result {
	runID := uuid.New()
	start := time.Now()
	c.emitter.Emit(progress.Event{
		RunID: runID,
		TS:    start.UTC(),
		Stage: progress.StageRunStart,
		Href:  string(seed),
	})

	leaves := catalog.NewLinkSet()
	settled := catalog.NewLinkSet()

	seedCls := c.classify(ctx, runID, seed)
	leaves.Union(seedCls.Leaves)
	pending := catalog.NewLinkSet()
	pending.Union(seedCls.Groups)
	pending.Union(seedCls.Failed)
	if seedCls.Failed.Len() == 0 {
		settled.Add(seed)
	}

	iterations := 1
	hitCeiling := false

	for pending.Len() > 0 {
		if ctx.Err() != nil {
			c.logger.Warn("crawl canceled", zap.Int("pending", pending.Len()), zap.Error(ctx.Err()))
			break
		}
		if iterations >= c.maxIterations {
			hitCeiling = true
			c.logger.Warn("iteration ceiling reached",
				zap.Int("iterations", iterations),
				zap.Strings("pending", linkStrings(pending)),
			)
			break
		}
		iterations++

		work := pending.Diff(settled)
		outputs := c.classifyRound(ctx, runID, work)

		newGroups := catalog.NewLinkSet()
		failed := catalog.NewLinkSet()
		for _, cls := range outputs {
			leaves.Union(cls.Leaves)
			newGroups.Union(cls.Groups)
			failed.Union(cls.Failed)
		}

		// Everything expanded this round without failing is settled for good.
		settled.Union(work.Diff(failed))

		candidates := newGroups
		candidates.Union(failed)
		pending = candidates.Diff(settled)

		c.emitter.Emit(progress.Event{
			RunID:     runID,
			TS:        time.Now().UTC(),
			Stage:     progress.StageIteration,
			Iteration: iterations,
			Leaves:    leaves.Len(),
			Pending:   pending.Len(),
			Failed:    failed.Len(),
		})
	}

	res := Result{
		Leaves:     leaves,
		Unresolved: pending,
		Iterations: iterations,
		HitCeiling: hitCeiling,
	}
	note := ""
	if hitCeiling {
		note = "iteration ceiling reached"
	}
	c.emitter.Emit(progress.Event{
		RunID:     runID,
		TS:        time.Now().UTC(),
		Stage:     progress.StageRunDone,
		Iteration: iterations,
		Leaves:    leaves.Len(),
		Pending:   pending.Len(),
		Dur:       time.Since(start),
		Note:      note,
	})
	return res
}

func linkStrings(s catalog.LinkSet) []string {
	links := s.Slice()
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = string(l)
	}
	return out
}

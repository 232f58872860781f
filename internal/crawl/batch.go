package crawl

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spectralml/webbook-crawler/internal/catalog"
	"github.com/spectralml/webbook-crawler/internal/progress"
)

// CollectRecords fetches and extracts every given formula page concurrently
// and returns the successful records. Failed pages are logged and dropped;
// result order is unspecified. The caller may re-run on the complement set if
// it wants retries.
func (c *Crawler) CollectRecords(ctx context.Context, links catalog.LinkSet) []catalog.Record {
	runID := uuid.New()
	start := time.Now()

	var (
		mu      sync.Mutex
		records = make([]catalog.Record, 0, links.Len())
	)
	g, gctx := errgroup.WithContext(ctx)
	for href := range links {
		g.Go(func() error {
			rec := c.extractRecord(gctx, runID, href)
			if rec == nil {
				return nil
			}
			mu.Lock()
			records = append(records, *rec)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	c.emitter.Emit(progress.Event{
		RunID:   runID,
		TS:      time.Now().UTC(),
		Stage:   progress.StageRecordsDone,
		Records: len(records),
		Dur:     time.Since(start),
	})
	return records
}

func (c *Crawler) extractRecord(ctx context.Context, runID uuid.UUID, href catalog.Link) *catalog.Record {
	body, err := c.client.Fetch(ctx, string(href))
	if err != nil {
		c.reportPageError(runID, href, err)
		return nil
	}
	rec, err := catalog.ExtractRecord(body, href)
	if err != nil {
		c.reportPageError(runID, href, err)
		return nil
	}
	return rec
}

// CollectCrossReference fetches every given page and harvests the target of
// the first anchor labeled label, e.g. "IR Spectrum". Pages without the
// anchor, or that fail to fetch, contribute nothing.
func (c *Crawler) CollectCrossReference(ctx context.Context, links catalog.LinkSet, label string) catalog.LinkSet {
	runID := uuid.New()

	var (
		mu    sync.Mutex
		found = catalog.NewLinkSet()
	)
	g, gctx := errgroup.WithContext(ctx)
	for href := range links {
		g.Go(func() error {
			body, err := c.client.Fetch(gctx, string(href))
			if err != nil {
				c.reportPageError(runID, href, err)
				return nil
			}
			ref, ok := catalog.ExtractLabeledHref(body, label)
			if !ok {
				return nil
			}
			mu.Lock()
			found.Add(ref)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return found
}

func (c *Crawler) reportPageError(runID uuid.UUID, href catalog.Link, err error) {
	c.logger.Warn("detail page dropped", zap.String("href", string(href)), zap.Error(err))
	c.emitter.Emit(progress.Event{
		RunID: runID,
		TS:    time.Now().UTC(),
		Stage: progress.StagePageError,
		Href:  string(href),
		Note:  err.Error(),
	})
}

package progress

import "context"

// Sink consumes batches of progress events. Implementations must tolerate
// repeated calls, honor ctx deadlines, and may be invoked concurrently.
type Sink interface {
	Consume(ctx context.Context, batch []Event) error
	Close(ctx context.Context) error
}

// Emitter publishes individual events. The crawl engine depends only on this
// interface, so callers decide how events are buffered or exported.
type Emitter interface {
	Emit(evt Event)
}

// NopEmitter discards every event.
type NopEmitter struct{}

// Emit implements Emitter.
func (NopEmitter) Emit(Event) {}

// Fanout is a synchronous Emitter that validates each event and forwards it
// to every sink. Sink errors are ignored at emit time; observability is
// advisory and must never disturb the crawl.
type Fanout struct {
	sinks []Sink
}

// NewFanout builds a Fanout over the given sinks.
func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: append([]Sink(nil), sinks...)}
}

// Emit forwards the event to every sink, dropping invalid events.
func (f *Fanout) Emit(evt Event) {
	if f == nil {
		return
	}
	if err := evt.Validate(); err != nil {
		return
	}
	batch := []Event{evt}
	for _, s := range f.sinks {
		_ = s.Consume(context.Background(), batch)
	}
}

// Close closes every sink, returning the first error encountered.
func (f *Fanout) Close(ctx context.Context) error {
	var firstErr error
	for _, s := range f.sinks {
		if err := s.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

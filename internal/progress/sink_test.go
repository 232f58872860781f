package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubSink records consumed batches for assertions.
type stubSink struct {
	mu      sync.Mutex
	batches [][]Event
	closed  bool
}

func (s *stubSink) Consume(_ context.Context, batch []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := append([]Event(nil), batch...)
	s.batches = append(s.batches, copied)
	return nil
}

func (s *stubSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubSink) events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, b := range s.batches {
		out = append(out, b...)
	}
	return out
}

func sampleEvent(stage Stage) Event {
	evt := Event{
		RunID: uuid.New(),
		TS:    time.Now().UTC(),
		Stage: stage,
	}
	switch stage {
	case StageIteration:
		evt.Iteration = 1
	case StagePageError:
		evt.Href = "/cgi/formula/C6H6"
	}
	return evt
}

// TestFanoutDeliversToAllSinks verifies every registered sink sees each
// valid event.
func TestFanoutDeliversToAllSinks(t *testing.T) {
	t.Parallel()

	first := &stubSink{}
	second := &stubSink{}
	fanout := NewFanout(first, second)

	fanout.Emit(sampleEvent(StageRunStart))
	fanout.Emit(sampleEvent(StageIteration))

	require.Len(t, first.events(), 2)
	require.Len(t, second.events(), 2)
}

// TestFanoutDropsInvalidEvents ensures malformed events never reach sinks.
func TestFanoutDropsInvalidEvents(t *testing.T) {
	t.Parallel()

	sink := &stubSink{}
	fanout := NewFanout(sink)

	fanout.Emit(Event{Stage: StageRunStart}) // missing run id and timestamp
	fanout.Emit(Event{RunID: uuid.New(), TS: time.Now(), Stage: StagePageError})

	require.Empty(t, sink.events())
}

// TestFanoutClosePropagates checks Close reaches every sink.
func TestFanoutClosePropagates(t *testing.T) {
	t.Parallel()

	first := &stubSink{}
	second := &stubSink{}
	fanout := NewFanout(first, second)

	require.NoError(t, fanout.Close(context.Background()))
	require.True(t, first.closed)
	require.True(t, second.closed)
}

// TestEventValidate covers the per-stage validation rules.
func TestEventValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, Event{}.Validate())
	require.Error(t, Event{RunID: uuid.New()}.Validate())

	valid := sampleEvent(StageIteration)
	require.NoError(t, valid.Validate())

	missingHref := sampleEvent(StagePageError)
	missingHref.Href = ""
	require.Error(t, missingHref.Validate())

	unknown := sampleEvent(Stage("BOGUS"))
	require.Error(t, unknown.Validate())

	negative := sampleEvent(StageRunDone)
	negative.Dur = -time.Second
	require.Error(t, negative.Validate())
}

// TestLogSinkConsume exercises the zap-backed sink end to end; it must never
// error regardless of event shape.
func TestLogSinkConsume(t *testing.T) {
	t.Parallel()

	sink := NewLogSink(zap.NewNop())
	batch := []Event{
		sampleEvent(StageRunStart),
		sampleEvent(StageIteration),
		sampleEvent(StagePageError),
		sampleEvent(StageRunDone),
	}
	require.NoError(t, sink.Consume(context.Background(), batch))
	require.NoError(t, sink.Close(context.Background()))
}

// TestLogSinkNilLogger falls back to a no-op logger.
func TestLogSinkNilLogger(t *testing.T) {
	t.Parallel()

	sink := NewLogSink(nil)
	require.NoError(t, sink.Consume(context.Background(), []Event{sampleEvent(StageRunStart)}))
}

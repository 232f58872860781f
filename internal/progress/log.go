package progress

import (
	"context"

	"go.uber.org/zap"
)

// LogSink emits structured logs for progress events. It is the default sink
// for CLI runs, where a metrics endpoint may not exist.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []Event) error {
	for _, evt := range batch {
		fields := []zap.Field{
			zap.String("run_id", evt.RunID.String()),
			zap.String("stage", string(evt.Stage)),
		}
		if evt.Href != "" {
			fields = append(fields, zap.String("href", evt.Href))
		}
		if evt.Stage == StageIteration || evt.Stage == StageRunDone {
			fields = append(fields,
				zap.Int("iteration", evt.Iteration),
				zap.Int("leaves", evt.Leaves),
				zap.Int("pending", evt.Pending),
				zap.Int("failed", evt.Failed),
			)
		}
		if evt.Records > 0 {
			fields = append(fields, zap.Int("records", evt.Records))
		}
		if evt.Dur > 0 {
			fields = append(fields, zap.Duration("dur", evt.Dur))
		}
		if evt.Note != "" {
			fields = append(fields, zap.String("note", evt.Note))
		}
		if evt.Stage == StagePageError {
			s.logger.Warn("progress event", fields...)
			continue
		}
		s.logger.Info("progress event", fields...)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}

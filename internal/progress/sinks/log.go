package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/artappraisal/sitegen/internal/progress"
)

// LogSink emits structured logs for the progress stream. Resolution
// completions log at Info so a build run shows incremental current/total
// output; starts log at Debug to keep the default output readable.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		fields := []zap.Field{
			zap.String("stage", string(evt.Stage)),
			zap.String("city", evt.City),
			zap.String("listing", evt.Listing),
			zap.Int("current", evt.Current),
			zap.Int("total", evt.Total),
		}
		switch evt.Stage {
		case progress.StageResolveDone:
			fields = append(fields,
				zap.String("tier", string(evt.Tier)),
				zap.String("url", evt.URL),
				zap.Duration("dur", evt.Dur),
			)
			s.logger.Info("image resolved", fields...)
		case progress.StageResolveError:
			fields = append(fields, zap.String("note", evt.Note))
			s.logger.Warn("image resolution fell through", fields...)
		default:
			s.logger.Debug("progress event", fields...)
		}
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}

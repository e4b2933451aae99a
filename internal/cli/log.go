package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/moduletree/pkg/pipeline"
)

// newLogger returns a logger writing "15:04:05.00" timestamps to w.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Loaded 12 modules (41ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// stageLogger returns a pipeline stage callback that logs each transition
// at debug level.
func stageLogger(l *log.Logger) func(pipeline.Stage) {
	start := time.Now()
	return func(s pipeline.Stage) {
		l.Debug("stage", "name", s, "elapsed", time.Since(start).Round(time.Millisecond))
	}
}

// stages fans one stage transition out to several callbacks.
func stages(fs ...func(pipeline.Stage)) func(pipeline.Stage) {
	return func(s pipeline.Stage) {
		for _, f := range fs {
			f(s)
		}
	}
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

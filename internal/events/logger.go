package events

import (
	"io"

	"github.com/charmbracelet/log"
)

// NewLogger builds the process logger used by the command line and the front
// ends.
func NewLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "granular",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// LogObserver forwards core events to a charm logger.
type LogObserver struct {
	logger *log.Logger
}

func NewLogObserver(logger *log.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnEvent(e Event) {
	kv := []interface{}{"kind", string(e.Kind)}
	switch e.Kind {
	case SegmentCreated:
		kv = append(kv, "from", e.Pos, "to", e.B)
	case GrainCreated, CapacityExceeded, Emitted:
		kv = append(kv, "x", e.Pos.X, "y", e.Pos.Y)
	}
	if e.Count > 0 {
		kv = append(kv, "count", e.Count)
	}

	switch e.Level {
	case LevelWarn:
		o.logger.Warn(e.Message, kv...)
	case LevelInfo:
		o.logger.Info(e.Message, kv...)
	default:
		o.logger.Debug(e.Message, kv...)
	}
}

package render

import (
	"log/slog"

	"github.com/amishk599/jobfit/internal/model"
)

// LogRenderer writes views and progress to the given logger as structured
// messages. It backs the non-interactive commands.
type LogRenderer struct {
	logger *slog.Logger
}

// NewLogRenderer returns a renderer that logs via slog.
func NewLogRenderer(logger *slog.Logger) *LogRenderer {
	return &LogRenderer{logger: logger}
}

// Render logs the state, job and outcome of v.
func (r *LogRenderer) Render(v model.View) {
	args := []any{"state", v.State}
	if v.JobID != "" {
		args = append(args, "job_id", v.JobID)
	}
	if v.Filename != "" {
		args = append(args, "file", v.Filename)
	}
	if v.Err != nil {
		r.logger.Warn("view error", append(args, "error", v.ErrorMessage())...)
		return
	}
	if v.Notice != "" {
		args = append(args, "notice", v.Notice)
	}
	r.logger.Info("view", args...)
}

// Start logs that an operation is in flight.
func (r *LogRenderer) Start(op model.ViewState, opID string) {
	r.logger.Info("working", "op", op, "op_id", opID)
}

// Stop logs that an operation has finished.
func (r *LogRenderer) Stop(opID string) {
	r.logger.Debug("done", "op_id", opID)
}

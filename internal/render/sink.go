package render

import (
	"time"

	"options-dashboard/internal/models"
)

// Sink presents each refresh cycle through an Output.
type Sink struct {
	out  *Output
	live bool
}

// NewSink creates a Sink. A live sink clears the terminal before each frame.
func NewSink(out *Output, live bool) *Sink {
	return &Sink{out: out, live: live}
}

// Render draws one refresh cycle.
func (s *Sink) Render(state models.DashboardState) error {
	if s.live {
		s.out.ClearScreen()
	}
	if err := s.out.Dashboard(state); err != nil {
		return err
	}
	if s.live && !s.out.IsJSON() {
		s.out.Dim("Press Ctrl+C to exit.")
	}
	return nil
}

// RenderError reports a failed cycle.
func (s *Sink) RenderError(err error) {
	if s.out.IsJSON() {
		_ = s.out.JSON(map[string]string{
			"error": err.Error(),
			"time":  time.Now().Format(time.RFC3339),
		})
		return
	}
	s.out.Error("Refresh failed: %v", err)
}

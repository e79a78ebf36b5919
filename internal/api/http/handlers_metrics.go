package http

import (
	"github.com/GriffinCanCode/filedeck/internal/infrastructure/monitoring"
)

// track starts timing a file operation; call the result with its error.
func (h *Handlers) track(op string) func(error) {
	timer := monitoring.NewTimer(h.metrics, op)
	return timer.Stop
}

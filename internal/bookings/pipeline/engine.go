package pipeline

import (
	"fmt"

	"bookingform/pkg/logger"
)

type Engine struct {
	flows  map[string]*Flow
	logger *logger.Logger
}

func NewEngine(log *logger.Logger, flows ...*Flow) *Engine {
	m := map[string]*Flow{}
	for _, f := range flows {
		m[f.Name()] = f
	}
	return &Engine{flows: m, logger: log}
}

// Run executes the steps of the named flow in order. A failing required step
// stops the run and is returned as a *StepError. Best-effort failures are
// logged and recorded in sc.Failures, and the run continues. A context that
// ended before a best-effort step counts as that step's failure.
func (e *Engine) Run(flowName string, sc *SubmissionContext) error {
	f, exists := e.flows[flowName]
	if !exists {
		return fmt.Errorf("unsupported flow: %v", flowName)
	}

	for _, step := range f.Steps() {
		err := sc.Ctx.Err()
		if err == nil {
			err = step.Execute(sc)
		}
		if err == nil {
			continue
		}
		if step.Required {
			return &StepError{Step: step.Name, Err: err}
		}

		sc.Failures[step.Name] = err
		e.logger.Warn("Optional step failed, continuing",
			"flow", flowName,
			"step", step.Name,
			"email", bookingEmail(sc),
			"error", err,
		)
	}
	return nil
}

func bookingEmail(sc *SubmissionContext) string {
	if sc.Booking != nil {
		return sc.Booking.Email
	}
	if sc.Request != nil {
		return sc.Request.Email.String()
	}
	return ""
}

package pipeline

import "fmt"

// Step names of the submission flow.
const (
	StepVerifyCaptcha  = "verify_captcha"
	StepValidate       = "validate"
	StepSanitize       = "sanitize"
	StepRecordSheet    = "record_sheet"
	StepNotifyOperator = "notify_operator"
	StepPublishEvent   = "publish_event"
)

type Step struct {
	Name string
	// Required steps abort the run on error. Other steps are logged and skipped.
	Required bool
	Execute  func(sc *SubmissionContext) error
}

func NewStep(name string, execute func(sc *SubmissionContext) error) *Step {
	return &Step{
		Name:     name,
		Required: true,
		Execute:  execute,
	}
}

func NewBestEffortStep(name string, execute func(sc *SubmissionContext) error) *Step {
	return &Step{
		Name:    name,
		Execute: execute,
	}
}

type Flow struct {
	name  string
	steps []*Step
}

func NewFlow(name string, steps ...*Step) *Flow {
	return &Flow{name: name, steps: steps}
}

func (f *Flow) Name() string {
	return f.name
}

func (f *Flow) Steps() []*Step {
	return f.steps
}

// StepError is returned when a required step fails.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed, pipeline errored: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

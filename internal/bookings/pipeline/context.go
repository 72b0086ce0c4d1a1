package pipeline

import (
	"context"
	"time"

	"bookingform/pkg/model"
)

// SubmissionContext carries one form submission through the steps of a flow.
type SubmissionContext struct {
	Ctx      context.Context
	Request  *model.BookingRequest
	RemoteIP string
	Booking  *model.Booking
	Process  map[string]any
	// Failures collects the errors of best-effort steps, keyed by step name.
	Failures map[string]error

	release context.CancelFunc
}

func NewSubmissionContext(ctx context.Context, req *model.BookingRequest, remoteIP string) *SubmissionContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &SubmissionContext{
		Ctx:      ctx,
		Request:  req,
		RemoteIP: remoteIP,
		Process:  make(map[string]any),
		Failures: make(map[string]error),
	}
}

// Detach moves the remaining steps onto a context that survives the
// caller's cancellation and ends after timeout. Values such as the request
// id are kept.
func (sc *SubmissionContext) Detach(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(sc.Ctx), timeout)
	sc.Release()
	sc.Ctx = ctx
	sc.release = cancel
}

// Release frees the detached context, if any.
func (sc *SubmissionContext) Release() {
	if sc.release != nil {
		sc.release()
		sc.release = nil
	}
}

// Failed reports whether the named best-effort step failed.
func (sc *SubmissionContext) Failed(step string) bool {
	_, ok := sc.Failures[step]
	return ok
}

package metrics

import (
	"time"

	obserrors "github.com/diffscope/diffscope/internal/observability/errors"
	"github.com/diffscope/diffscope/internal/observability/statsd"
)

// Transition constants for review job lifecycle metrics.
const (
	TransitionClaim    = "claim"
	TransitionComplete = "complete"
	TransitionRequeue  = "requeue"
	TransitionFail     = "fail"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// JobMetric captures details about a review job lifecycle event.
type JobMetric struct {
	Transition string
	Result     string
	Duration   time.Duration
	Err        error
}

// EmitJobLifecycle emits standardised review job lifecycle metrics.
func EmitJobLifecycle(sink statsd.Sink, in JobMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"transition": in.Transition,
		"result":     in.Result,
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("job.transition", 1, tags)

	if in.Duration > 0 {
		sink.Timing("job.duration", in.Duration, tags)
	}
}

// EmitInflight records the current number of jobs executing in this process.
func EmitInflight(sink statsd.Sink, count int) {
	if sink == nil {
		return
	}
	sink.Gauge("jobs.inflight", float64(count), nil)
}

package notify

import (
	"context"
	"errors"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
)

// ReviewFailurePayload captures the canonical data we emit when a review job
// reaches a terminal failure.
type ReviewFailurePayload struct {
	JobID          string
	InstallationID int64
	Repo           string
	PRNumber       int
	HeadSHA        string
	Attempts       int
	Error          string
	ErrorClass     string
	Severity       string
	OccurredAt     time.Time
}

// Sink describes a destination capable of consuming review failure notifications.
type Sink interface {
	SendReviewFailure(ctx context.Context, payload ReviewFailurePayload) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, payload ReviewFailurePayload) error

// SendReviewFailure implements the Sink interface.
func (f SinkFunc) SendReviewFailure(ctx context.Context, payload ReviewFailurePayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}

// MultiSink fans a notification out to every configured sink and joins any errors.
type MultiSink []Sink

// SendReviewFailure implements the Sink interface.
func (m MultiSink) SendReviewFailure(ctx context.Context, payload ReviewFailurePayload) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.SendReviewFailure(ctx, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

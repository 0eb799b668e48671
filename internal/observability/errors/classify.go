package errors

import (
	"context"
	goerrors "errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/diffscope/diffscope/internal/domain/retry"
)

// Classify returns a normalized error class suitable for tagging metrics and
// notifications. Known domain errors get stable names; anything else falls
// back to the innermost concrete type name.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case goerrors.Is(err, retry.ErrRateLimited):
		return "rate_limited"
	case goerrors.Is(err, context.DeadlineExceeded):
		return "deadline_exceeded"
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	}

	var statusErr *retry.StatusError
	if goerrors.As(err, &statusErr) {
		return "http_" + strconv.Itoa(statusErr.Code)
	}

	// Unwrap to the innermost error for better signal.
	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}

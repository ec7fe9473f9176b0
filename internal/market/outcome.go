package market

import (
	"fmt"
	"time"
)

// OutcomeKind classifies one fetch attempt.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeRetryableServerError
	OutcomeRateLimited
	OutcomeForbidden
	OutcomeUnclassifiedError
	OutcomeConnectionFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetryableServerError:
		return "retryable_server_error"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeForbidden:
		return "forbidden"
	case OutcomeUnclassifiedError:
		return "unclassified_error"
	case OutcomeConnectionFailure:
		return "connection_failure"
	default:
		return "unknown"
	}
}

// Retryable reports whether the kind consumes a retry and backs off.
func (k OutcomeKind) Retryable() bool {
	switch k {
	case OutcomeRetryableServerError, OutcomeRateLimited, OutcomeConnectionFailure:
		return true
	default:
		return false
	}
}

// FetchOutcome is the tagged result of a single attempt. Only the fields
// relevant to Kind are set.
type FetchOutcome struct {
	Kind       OutcomeKind
	Status     int
	Rows       []Candle
	RetryAfter time.Duration
	Err        error
}

func (o FetchOutcome) String() string {
	switch o.Kind {
	case OutcomeSuccess:
		return fmt.Sprintf("success rows=%d", len(o.Rows))
	case OutcomeRateLimited:
		return fmt.Sprintf("rate_limited retry_after=%s", o.RetryAfter)
	case OutcomeConnectionFailure:
		return fmt.Sprintf("connection_failure err=%v", o.Err)
	case OutcomeForbidden:
		return "forbidden status=403"
	default:
		return fmt.Sprintf("%s status=%d", o.Kind, o.Status)
	}
}

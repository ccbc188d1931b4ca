package share

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for failure classification. Per-item failures are caught
// at the item boundary and folded into summary counters; only configuration
// errors and full-chain exhaustion propagate to the run result.
var (
	ErrConfiguration        = errors.New("configuration error")
	ErrStrategyFailure      = errors.New("strategy failure")
	ErrEnumerationExhausted = errors.New("enumeration exhausted")
	ErrRetrievalExhausted   = errors.New("retrieval exhausted")
	ErrDeletionFailure      = errors.New("deletion failure")
)

// Wrap tags an error with one of the sentinel markers above while preserving
// operation context in the message.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrStrategyFailure
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether an error should stop the run instead of becoming a
// summary counter.
func Fatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "acquisition failure"
	}
	return strings.Join(parts, ": ")
}

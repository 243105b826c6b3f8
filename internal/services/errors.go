package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAuth marks authentication failures against the library API. These are
	// fatal to a run; nothing downstream can proceed without a session.
	ErrAuth = errors.New("authentication error")
	// ErrEnumeration marks listing failures. Enumeration stops, but items
	// settled before the failure are preserved and finalization still runs.
	ErrEnumeration = errors.New("enumeration error")
	// ErrTransfer marks a download that failed after exhausting its retry
	// budget. The failure is isolated to the item.
	ErrTransfer = errors.New("transfer error")
	// ErrConversion marks a format conversion failure. The caller keeps the
	// original artifact and continues.
	ErrConversion = errors.New("conversion error")
	// ErrPersistence marks ledger, sidecar, or report write failures. These
	// are logged and never abort a run.
	ErrPersistence = errors.New("persistence error")
	// ErrExternalTool marks failures invoking external binaries.
	ErrExternalTool = errors.New("external tool error")
	// ErrValidation marks configuration or input validation failures.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks lookups that produced no result.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks retryable failures with no more specific class.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureKind maps an error to the short classification label persisted in
// run history rows and surfaced in reports.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrEnumeration):
		return "enumeration"
	case errors.Is(err, ErrTransfer):
		return "transfer"
	case errors.Is(err, ErrConversion):
		return "conversion"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	default:
		return "transient"
	}
}

// IsFatal reports whether the error must terminate the run with a non-zero
// exit. Only authentication failures qualify; everything else either isolates
// to an item or degrades gracefully.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAuth)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

package cmdutil

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	oerrors "github.com/opmodel/apimpub/internal/errors"
	"github.com/opmodel/apimpub/internal/output"
)

// Fail logs err under msg and returns it as an ExitError marked printed, so
// main does not print it again.
func Fail(msg string, err error) error {
	PrintError(msg, err)

	code := oerrors.ExitCodeFromError(err)
	var exitErr *oerrors.ExitError
	if errors.As(err, &exitErr) {
		err = exitErr.Err
	}
	return &oerrors.ExitError{Code: code, Err: err, Printed: true}
}

// PrintError prints err in a user-friendly format. Structured errors print
// their message with location, field, context and hint as key-value pairs.
func PrintError(msg string, err error) {
	var detail *oerrors.DetailError
	if !errors.As(err, &detail) {
		output.Error(msg, "error", err)
		return
	}

	var keyvals []any
	if detail.Location != "" {
		keyvals = append(keyvals, "location", detail.Location)
	}
	if detail.Field != "" {
		keyvals = append(keyvals, "field", detail.Field)
	}
	for _, k := range slices.Sorted(maps.Keys(detail.Context)) {
		keyvals = append(keyvals, k, detail.Context[k])
	}
	if detail.Hint != "" {
		keyvals = append(keyvals, "hint", detail.Hint)
	}
	output.Error(fmt.Sprintf("%s: %s", msg, detail.Message), keyvals...)
}

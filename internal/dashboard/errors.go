package dashboard

import (
	"errors"
	"net/http"

	"iris-app/internal/dataset"
	"iris-app/internal/ml"
)

var (
	// ErrOutOfRange reports a slider value outside its control bounds.
	ErrOutOfRange = errors.New("value out of range")
	// ErrSelectionFull reports an attempt to select a third column.
	ErrSelectionFull = errors.New("at most two columns can be selected")
	// ErrUnknownControl reports a session message for a control that does not exist.
	ErrUnknownControl = errors.New("unknown control")
	// ErrBadValue reports a control value of the wrong JSON type.
	ErrBadValue = errors.New("bad control value")
	// ErrUnavailable reports that the prediction view cannot run because
	// the artifacts failed to load.
	ErrUnavailable = errors.New("prediction unavailable")
)

// ErrUnknownColumn is the dataset's error, re-exported for callers that only
// deal with selections.
var ErrUnknownColumn = dataset.ErrUnknownColumn

// statusFor maps an error to the HTTP status used by handlers and session
// error events.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrOutOfRange),
		errors.Is(err, ErrSelectionFull),
		errors.Is(err, ErrUnknownColumn),
		errors.Is(err, ErrUnknownControl),
		errors.Is(err, ErrBadValue),
		errors.Is(err, ml.ErrInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

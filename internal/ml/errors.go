package ml

import "errors"

var (
	// ErrFormat reports an artifact whose content cannot be decoded.
	ErrFormat = errors.New("artifact format error")
	// ErrSchema reports an artifact that decodes but does not fit the
	// four-feature, three-class layout this service expects.
	ErrSchema = errors.New("artifact schema mismatch")
	// ErrInput reports a feature vector that cannot be scored.
	ErrInput = errors.New("invalid input")
)

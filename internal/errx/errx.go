// Package errx provides typed application errors for the link service.
// Invalid, Conflict and Storage are the kinds the core returns; Unauthenticated
// and Internal only appear at the HTTP boundary.
package errx

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for callers that must react to it.
type Kind uint8

const (
	Unknown Kind = iota
	Invalid
	Conflict
	Storage
	Unauthenticated
	Internal
)

var kindNames = [...]string{
	Unknown:         "Unknown",
	Invalid:         "Invalid",
	Conflict:        "Conflict",
	Storage:         "Storage",
	Unauthenticated: "Unauthenticated",
	Internal:        "Internal",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Error records the operation that failed and how.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

// E wraps err with op and kind. A nil err stays nil.
func E(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Errorf is E with a formatted cause.
func Errorf(op string, kind Kind, format string, args ...any) error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Op
	case e.Op == "":
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind of the outermost *Error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether the outermost *Error in err's chain has the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func OpOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

// Message returns the innermost error text, which is the message meant for
// callers. Storage and internal faults must not be passed through it.
func Message(err error) string {
	if err == nil {
		return ""
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

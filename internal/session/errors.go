package session

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures.
type ErrorKind int

const (
	// KindInput is an invalid action for the state; the state is re-prompted.
	KindInput ErrorKind = iota + 1
	// KindDesync means the context lacks data the state needs; the conversation restarts.
	KindDesync
	// KindNotFound is a mutation with nothing to act on; reported, not failed.
	KindNotFound
	// KindStorage is a persistence failure; the context is left unchanged.
	KindStorage
)

func (k ErrorKind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindDesync:
		return "desync"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// EngineError is returned by state transitions. Key is the message key
// shown to the user.
type EngineError struct {
	Kind ErrorKind
	Key  string
	Err  error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Key, e.Err)
	}
	return fmt.Sprintf("%s (%s)", e.Kind, e.Key)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

func inputErr(key string) error {
	return &EngineError{Kind: KindInput, Key: key}
}

func desyncErr(key string) error {
	return &EngineError{Kind: KindDesync, Key: key}
}

func notFoundErr(key string) error {
	return &EngineError{Kind: KindNotFound, Key: key}
}

func storageErr(op string, err error) error {
	return &EngineError{Kind: KindStorage, Key: "error_text", Err: fmt.Errorf("%s: %w", op, err)}
}

// KindOf returns the kind of an engine error, or 0 for other errors.
func KindOf(err error) ErrorKind {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return 0
}

func IsInput(err error) bool    { return KindOf(err) == KindInput }
func IsDesync(err error) bool   { return KindOf(err) == KindDesync }
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
func IsStorage(err error) bool  { return KindOf(err) == KindStorage }

package sabnfvm

import (
	"errors"
	"fmt"
)

var (
	// Setup errors, detected before any opcode executes.
	ErrGrammar      = errors.New("invalid grammar object")
	ErrStartRule    = errors.New("unknown start rule")
	ErrWindow       = errors.New("substring window out of range")
	ErrUDTCallback  = errors.New("missing UDT callback")
	ErrCallbackName = errors.New("callback name not in grammar")
	ErrNodeName     = errors.New("AST node name not in grammar")
	ErrFilterName   = errors.New("unknown name in trace filter")

	// Runtime safety errors. The parse is aborted when one is raised.
	ErrMaxNodeHits  = errors.New("safety limit: maximum node hits exceeded")
	ErrMaxTreeDepth = errors.New("safety limit: maximum tree depth exceeded")

	// Callback contract violations.
	ErrCallbackState  = errors.New("callback returned an unrecognized state")
	ErrCallbackActive = errors.New("callback returned ACTIVE in post phase")
	ErrCallbackLength = errors.New("callback phrase length exceeds remaining window")
	ErrUDTEmpty       = errors.New("EMPTY returned by UDT declared non-empty")
)

// OpError is an error raised during opcode execution. This means a safety
// cap was breached or a rule/UDT callback violated its contract; it never
// represents an ordinary match failure, which is reported as NoMatchState.
type OpError struct {
	Err         error
	Code        OpCode
	Name        string
	PhraseIndex int
}

func (e *OpError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("github.com/chronos-tachyon/go-sabnf/sabnfvm: parse error @ %s(%s) index %d: %v",
			e.Code, e.Name, e.PhraseIndex, e.Err)
	}
	return fmt.Sprintf("github.com/chronos-tachyon/go-sabnf/sabnfvm: parse error @ %s index %d: %v",
		e.Code, e.PhraseIndex, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// SetupError is an error raised while initializing a parse, before any
// opcode executes.
type SetupError struct {
	Err    error
	Detail string
}

func (e *SetupError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("github.com/chronos-tachyon/go-sabnf/sabnfvm: setup error: %v: %s", e.Err, e.Detail)
	}
	return fmt.Sprintf("github.com/chronos-tachyon/go-sabnf/sabnfvm: setup error: %v", e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

func setupError(err error, format string, args ...interface{}) error {
	return &SetupError{Err: err, Detail: fmt.Sprintf(format, args...)}
}

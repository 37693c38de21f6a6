package diagnostics

import (
	"fmt"
	"sort"

	"github.com/Microindole/lency/internal/token"
)

type Level int

const (
	Error Level = iota
	Warning
	Info
	Hint
)

func (l Level) String() string {
	switch l {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Hint:
		return "hint"
	}
	return "unknown"
}

type ErrorCode string

// Lexical
const (
	ErrL001 ErrorCode = "L001" // unterminated string
	ErrL002 ErrorCode = "L002" // invalid escape sequence
	ErrL003 ErrorCode = "L003" // unknown character
	ErrL004 ErrorCode = "L004" // malformed number literal
)

// Syntactic
const (
	ErrP001 ErrorCode = "P001" // unexpected token
	ErrP002 ErrorCode = "P002" // expected token
	ErrP003 ErrorCode = "P003" // no prefix parse rule
	ErrP004 ErrorCode = "P004" // invalid pattern
	ErrP005 ErrorCode = "P005" // invalid type syntax
	ErrP006 ErrorCode = "P006" // recursion depth exceeded / structural
)

// Modules
const (
	ErrM001 ErrorCode = "M001" // ImportNotFound
	ErrM002 ErrorCode = "M002" // CyclicImport
)

// Resolution
const (
	ErrR001 ErrorCode = "R001" // UnresolvedName
	ErrR002 ErrorCode = "R002" // DuplicateDeclaration
	ErrR003 ErrorCode = "R003" // ShadowInSameScope
	ErrR004 ErrorCode = "R004" // not a type / not a value
)

// Types and traits
const (
	ErrT001 ErrorCode = "T001" // TypeMismatch
	ErrT002 ErrorCode = "T002" // UnresolvedMethod
	ErrT003 ErrorCode = "T003" // MissingField
	ErrT004 ErrorCode = "T004" // FieldNotInStruct
	ErrT005 ErrorCode = "T005" // GenericArityMismatch
	ErrT006 ErrorCode = "T006" // UnsatisfiedBound
	ErrT007 ErrorCode = "T007" // NullableAccess
	ErrT008 ErrorCode = "T008" // NonExhaustiveMatch
	ErrT009 ErrorCode = "T009" // AssignToImmutable
	ErrT010 ErrorCode = "T010" // IncompleteImpl
	ErrT011 ErrorCode = "T011" // wrong argument count
	ErrT012 ErrorCode = "T012" // try operator misuse
)

// Warnings
const (
	WarnT101 ErrorCode = "T101" // extra method in trait impl
	WarnT102 ErrorCode = "T102" // unreachable match arm
	WarnM101 ErrorCode = "M101" // unused import
)

// Monomorphization consistency
const (
	ErrC001 ErrorCode = "C001" // unresolved generic survived rewrite
	ErrC002 ErrorCode = "C002" // declaration set not closed
)

// Internal
const (
	ErrI001 ErrorCode = "I001" // internal invariant violation
)

// Diagnostic is one structured compiler message. The sink is append-only;
// rendering happens once per phase boundary in the driver.
type Diagnostic struct {
	Level       Level
	Code        ErrorCode
	Message     string
	Span        token.Span
	Notes       []string
	Suggestions []string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s[%s]: %s", d.Span.File, d.Span.Line, d.Span.Column, d.Level, d.Code, d.Message)
}

// WithNote appends a note and returns the diagnostic for chaining.
func (d *Diagnostic) WithNote(format string, args ...interface{}) *Diagnostic {
	d.Notes = append(d.Notes, fmt.Sprintf(format, args...))
	return d
}

// WithHelp appends a suggestion and returns the diagnostic for chaining.
func (d *Diagnostic) WithHelp(format string, args ...interface{}) *Diagnostic {
	d.Suggestions = append(d.Suggestions, fmt.Sprintf(format, args...))
	return d
}

// NewError builds an Error-level diagnostic anchored at tok.
func NewError(code ErrorCode, tok token.Token, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Level:   Error,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Span:    tok.Span,
	}
}

// NewErrorAt builds an Error-level diagnostic anchored at a span.
func NewErrorAt(code ErrorCode, span token.Span, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Level:   Error,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Span:    span,
	}
}

// NewWarning builds a Warning-level diagnostic anchored at a span.
func NewWarning(code ErrorCode, span token.Span, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Level:   Warning,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Span:    span,
	}
}

// Sink accumulates diagnostics across all phases. It is owned by the
// driver and passed by reference to one phase at a time.
type Sink struct {
	diags  []*Diagnostic
	strict bool
}

func NewSink() *Sink {
	return &Sink{}
}

// SetStrict promotes warnings to errors for HasErrors purposes.
func (s *Sink) SetStrict(strict bool) {
	s.strict = strict
}

func (s *Sink) Add(d *Diagnostic) {
	s.diags = append(s.diags, d)
}

func (s *Sink) Errorf(code ErrorCode, span token.Span, format string, args ...interface{}) *Diagnostic {
	d := NewErrorAt(code, span, format, args...)
	s.Add(d)
	return d
}

func (s *Sink) Warnf(code ErrorCode, span token.Span, format string, args ...interface{}) *Diagnostic {
	d := NewWarning(code, span, format, args...)
	s.Add(d)
	return d
}

func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Level == Error {
			return true
		}
		if s.strict && d.Level == Warning {
			return true
		}
	}
	return false
}

// Count returns the number of accumulated diagnostics.
func (s *Sink) Count() int {
	return len(s.diags)
}

// Diagnostics returns the accumulated records sorted by (file, offset).
// The underlying slice is not exposed; the sink stays append-only.
func (s *Sink) Diagnostics() []*Diagnostic {
	out := make([]*Diagnostic, len(s.diags))
	copy(out, s.diags)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Span.File != out[j].Span.File {
			return out[i].Span.File < out[j].Span.File
		}
		return out[i].Span.Start < out[j].Span.Start
	})
	return out
}

// ByCode returns all diagnostics carrying the given code, in sink order.
func (s *Sink) ByCode(code ErrorCode) []*Diagnostic {
	var out []*Diagnostic
	for _, d := range s.diags {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

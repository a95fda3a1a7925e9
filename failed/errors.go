// Package failed holds the diagnostics the resolver accumulates.
// Resolution never stops at the first problem: each finding becomes a
// Diagnostic on a Handler and analysis continues with the any type.
package failed

import (
	"fmt"
	"strings"

	"github.com/kcl-lang/kcl-sub002/ast"
)

type ErrCode int

const (
	None ErrCode = iota
	CompileError
	TypeError
	NameError
	UniqueKeyError
	ImmutableError
	IllegalInheritError
	IllegalAttributeError
	IllegalParameterError
	IndexSignatureError
	CannotFindModule
	MultiInheritError
	CycleInheritError

	// Warnings
	UnusedImportWarning
	ReimportWarning
	ImportPositionWarning
	SchemaFlagMismatchWarning
)

func (c ErrCode) String() string {
	switch c {
	case CompileError:
		return "CompileError"
	case TypeError:
		return "TypeError"
	case NameError:
		return "NameError"
	case UniqueKeyError:
		return "UniqueKeyError"
	case ImmutableError:
		return "ImmutableError"
	case IllegalInheritError:
		return "IllegalInheritError"
	case IllegalAttributeError:
		return "IllegalAttributeError"
	case IllegalParameterError:
		return "IllegalParameterError"
	case IndexSignatureError:
		return "IndexSignatureError"
	case CannotFindModule:
		return "CannotFindModule"
	case MultiInheritError:
		return "MultiInheritError"
	case CycleInheritError:
		return "CycleInheritError"
	case UnusedImportWarning:
		return "UnusedImportWarning"
	case ReimportWarning:
		return "ReimportWarning"
	case ImportPositionWarning:
		return "ImportPositionWarning"
	case SchemaFlagMismatchWarning:
		return "SchemaFlagMismatchWarning"
	}
	return "UnknownError"
}

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Message is one positioned line of a diagnostic.
type Message struct {
	ast.Positioner
	Text string
	// Suggestions are replacement candidates offered to the user,
	// e.g. names close to a misspelt attribute.
	Suggestions []string
}

func (m Message) String() string {
	out := fmt.Sprintf("%v: %v", m.Range(), m.Text)
	if len(m.Suggestions) > 0 {
		out += fmt.Sprintf(", did you mean '%v'?", strings.Join(m.Suggestions, "', '"))
	}
	return out
}

// Range renders the position of the message, tolerating a nil
// Positioner for program level findings.
func (m Message) Range() string {
	if m.Positioner == nil {
		return "<unknown>"
	}
	return ast.RangeBetween(m.Positioner, m.Positioner).String()
}

// Diagnostic is a single finding with one or more positioned messages.
type Diagnostic struct {
	Severity Severity
	Code     ErrCode
	Messages []Message
}

func (d *Diagnostic) Error() string {
	parts := make([]string, 0, len(d.Messages))
	for _, msg := range d.Messages {
		parts = append(parts, msg.String())
	}
	return fmt.Sprintf("%v [%v]: %v", d.Severity, d.Code, strings.Join(parts, "; "))
}

var _ error = (*Diagnostic)(nil)

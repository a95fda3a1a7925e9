package failed

import (
	"fmt"
	"sort"

	"github.com/kcl-lang/kcl-sub002/ast"
)

// Handler accumulates diagnostics during resolution.
type Handler struct {
	Diagnostics []*Diagnostic
}

func NewHandler() *Handler {
	return &Handler{}
}

// Add appends an already built diagnostic.
func (h *Handler) Add(d *Diagnostic) {
	h.Diagnostics = append(h.Diagnostics, d)
}

// AddError records an error diagnostic of the given code.
func (h *Handler) AddError(code ErrCode, msgs ...Message) {
	h.Add(&Diagnostic{Severity: SeverityError, Code: code, Messages: msgs})
}

// AddWarning records a warning diagnostic of the given code.
func (h *Handler) AddWarning(code ErrCode, msgs ...Message) {
	h.Add(&Diagnostic{Severity: SeverityWarning, Code: code, Messages: msgs})
}

// AddCompileError records a generic compile error at pos.
func (h *Handler) AddCompileError(pos ast.Positioner, format string, args ...any) {
	h.AddError(CompileError, Message{Positioner: pos, Text: fmt.Sprintf(format, args...)})
}

// AddTypeError records a type mismatch at pos.
func (h *Handler) AddTypeError(pos ast.Positioner, format string, args ...any) {
	h.AddError(TypeError, Message{Positioner: pos, Text: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any error severity diagnostic was added.
func (h *Handler) HasErrors() bool {
	for _, d := range h.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (h *Handler) ErrorCount() int {
	n := 0
	for _, d := range h.Diagnostics {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Sorted returns the diagnostics ordered by the position of their
// first message, keeping insertion order for ties.
func (h *Handler) Sorted() []*Diagnostic {
	out := make([]*Diagnostic, len(h.Diagnostics))
	copy(out, h.Diagnostics)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := firstPos(out[i]), firstPos(out[j])
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		return pi.Column < pj.Column
	})
	return out
}

func firstPos(d *Diagnostic) ast.Pos {
	if len(d.Messages) == 0 || d.Messages[0].Positioner == nil {
		return ast.Pos{}
	}
	return d.Messages[0].Positioner.Pos()
}

// Bug panics on a broken internal invariant. User input must never be
// able to reach a Bug call; anything input-dependent is a Diagnostic.
func Bug(format string, args ...any) {
	panic(fmt.Sprintf("internal error: %v (this is a bug, please report it)", fmt.Sprintf(format, args...)))
}

package ast

import "fmt"

// Pos is a location in a source file, 1-based for both line and column.
type Pos struct {
	Filename string `json:"filename"`
	Line     uint64 `json:"line"`
	Column   uint64 `json:"column"`
}

func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%v:%v", p.Line, p.Column)
	}
	return fmt.Sprintf("%v:%v:%v", p.Filename, p.Line, p.Column)
}

// Positioner allows finding the location of a node in the original source file.
// The easiest way to be a Positioner is to embed a Range.
type Positioner interface {
	Pos() Pos // position of the first character belonging to the node
	End() Pos // position of the first character immediately after the node
}

type Range struct {
	PosStart Pos
	PosEnd   Pos
}

func (r Range) Pos() Pos { return r.PosStart }
func (r Range) End() Pos { return r.PosEnd }
func (r Range) String() string {
	if r.PosStart == r.PosEnd {
		return r.PosStart.String()
	}
	return fmt.Sprintf("%v-%v:%v", r.PosStart, r.PosEnd.Line, r.PosEnd.Column)
}

func RangeBetween(fst, snd Positioner) Range {
	return Range{fst.Pos(), snd.End()}
}

package kaleido

import "fmt"

// CompileError is a diagnosed failure of one top-level unit.
type CompileError interface {
	error
	Location() *Location
}

type ParseError struct {
	Loc *Location
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s parse error: %s", e.Loc, e.Msg)
}

func (e *ParseError) Location() *Location {
	return e.Loc
}

type CodegenError struct {
	Loc *Location
	Msg string
}

func (e *CodegenError) Error() string {
	return fmt.Sprintf("%s codegen error: %s", e.Loc, e.Msg)
}

func (e *CodegenError) Location() *Location {
	return e.Loc
}

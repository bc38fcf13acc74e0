package engine

import (
	"fmt"
	"strings"
)

// DataLoadError reports a dataset that cannot be used: missing or unreadable
// file, malformed values, or missing required columns.
type DataLoadError struct {
	Path   string
	Line   int
	Column string
	Err    error
}

func (e *DataLoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "engine: load %s", e.Path)
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

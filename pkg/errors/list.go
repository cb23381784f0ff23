package errors

import (
	"fmt"
	"slices"
	"strings"
)

// List is an ordered collection of diagnostic messages gathered across a
// whole pass. Operations that can fail for several independent reasons
// return a List instead of stopping at the first problem.
//
// The zero value is an empty list ready for use. A nil *List is also empty.
type List struct {
	items []string
}

// Add appends msg to the list.
func (l *List) Add(msg string) {
	l.items = append(l.items, msg)
}

// Addf appends a formatted message to the list.
func (l *List) Addf(format string, args ...any) {
	l.items = append(l.items, fmt.Sprintf(format, args...))
}

// AddErr appends the user message of err. Nil errors are ignored.
// A *ListError is flattened so its items keep their order.
func (l *List) AddErr(err error) {
	if err == nil {
		return
	}
	if le, ok := err.(*ListError); ok {
		l.items = append(l.items, le.Items...)
		return
	}
	l.items = append(l.items, UserMessage(err))
}

// Merge appends every item of other.
func (l *List) Merge(other *List) {
	if other == nil {
		return
	}
	l.items = append(l.items, other.items...)
}

// Empty reports whether no problems were recorded.
func (l *List) Empty() bool { return l == nil || len(l.items) == 0 }

// Len returns the number of recorded problems.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// Items returns a copy of the recorded messages in insertion order.
func (l *List) Items() []string {
	if l == nil {
		return nil
	}
	return slices.Clone(l.items)
}

// Err converts the list into an error tagged with code, or nil when the
// list is empty. The summary message prefixes the full report.
func (l *List) Err(code Code, summary string) error {
	if l.Empty() {
		return nil
	}
	return &ListError{Code: code, Summary: summary, Items: l.Items()}
}

// ListError carries a non-empty [List] across an error return.
type ListError struct {
	Code    Code
	Summary string
	Items   []string
}

// Error implements the error interface. Every item is printed on its own line.
func (e *ListError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.report())
}

func (e *ListError) report() string {
	var b strings.Builder
	b.WriteString(e.Summary)
	for _, item := range e.Items {
		b.WriteString("\n  - ")
		b.WriteString(strings.ReplaceAll(item, "\n", "\n    "))
	}
	return b.String()
}

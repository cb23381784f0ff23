package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestListCollectsInOrder(t *testing.T) {
	var l List
	l.Add("first")
	l.Addf("second %d", 2)
	l.AddErr(New(ErrCodeArtifactNotFound, "third"))
	l.AddErr(nil)

	want := []string{"first", "second 2", "third"}
	got := l.Items()
	if len(got) != len(want) {
		t.Fatalf("Items() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Items()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestListEmpty(t *testing.T) {
	var nilList *List
	if !nilList.Empty() || nilList.Len() != 0 {
		t.Error("nil list should be empty")
	}
	if err := nilList.Err(ErrCodeInternal, "x"); err != nil {
		t.Errorf("Err() on nil list = %v, want nil", err)
	}

	var l List
	if err := l.Err(ErrCodeInternal, "x"); err != nil {
		t.Errorf("Err() on empty list = %v, want nil", err)
	}
}

func TestListMerge(t *testing.T) {
	var a, b List
	a.Add("a")
	b.Add("b1")
	b.Add("b2")
	a.Merge(&b)
	a.Merge(nil)

	if a.Len() != 3 {
		t.Errorf("Len() = %d, want 3", a.Len())
	}
}

func TestListErrorReport(t *testing.T) {
	var l List
	l.Add("Unable to locate dependency [a]")
	l.Add("Unable to locate dependency [b]")

	err := l.Err(ErrCodeArtifactNotFound, "resolution failed")
	var le *ListError
	if !errors.As(err, &le) {
		t.Fatalf("Err() returned %T, want *ListError", err)
	}
	if len(le.Items) != 2 {
		t.Errorf("Items = %v, want 2 entries", le.Items)
	}

	msg := err.Error()
	for _, want := range []string{"ARTIFACT_NOT_FOUND", "resolution failed", "[a]", "[b]"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
	if strings.HasPrefix(UserMessage(err), "ARTIFACT_NOT_FOUND") {
		t.Errorf("UserMessage() should omit the code, got %q", UserMessage(err))
	}
}

func TestListAddErrFlattens(t *testing.T) {
	var inner List
	inner.Add("x")
	inner.Add("y")

	var outer List
	outer.AddErr(inner.Err(ErrCodeInternal, "inner"))
	if outer.Len() != 2 {
		t.Errorf("Len() = %d, want 2", outer.Len())
	}
}

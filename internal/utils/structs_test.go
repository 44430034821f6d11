package utils

import (
	"errors"
	"reflect"
	"testing"
)

type row struct {
	ID       string  `db:"id"`
	Name     *string `db:"name"`
	Computed string  `db:"-"`
	Loose    string
	hidden   string `db:"hidden"`
}

func TestStructTagValues(t *testing.T) {
	got := StructTagValues(row{})
	want := []string{"id", "name"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("StructTagValues() = %v, want %v", got, want)
	}
}

func TestStructToMap(t *testing.T) {
	name := "tap"
	got := StructToMap(&row{ID: "a1", Name: &name, Computed: "x", Loose: "y", hidden: "z"})

	if len(got) != 2 {
		t.Fatalf("expected 2 columns, got %d: %v", len(got), got)
	}
	if got["id"] != "a1" {
		t.Errorf("id = %v", got["id"])
	}
	if p, ok := got["name"].(*string); !ok || *p != "tap" {
		t.Errorf("name = %v", got["name"])
	}
}

func TestStructToMapPanicsOnNonStruct(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for non-struct input")
		}
	}()
	StructToMap(42)
}

func TestErrorWrapOrNil(t *testing.T) {
	if ErrorWrapOrNil(nil, "msg") != nil {
		t.Error("nil error should stay nil")
	}

	base := errors.New("boom")
	wrapped := ErrorWrapOrNil(base, "failed to create snag")
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error should match base")
	}
	if wrapped.Error() != "failed to create snag: boom" {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
	if ErrorWrapOrNil(base, "") != base {
		t.Error("empty message should return the original error")
	}
}

func TestNilIfBlank(t *testing.T) {
	if NilIfBlank("   ") != nil {
		t.Error("blank should be nil")
	}
	if got := NilIfBlank("  Plumber "); got == nil || *got != "Plumber" {
		t.Errorf("NilIfBlank trimmed = %v", got)
	}
}

func TestNanoID(t *testing.T) {
	id := NanoID()
	if len(id) != NanoidSize {
		t.Errorf("len = %d, want %d", len(id), NanoidSize)
	}
	if NanoID() == id {
		t.Error("expected distinct ids")
	}
}

package lineindex

import "testing"

const sample = "line one\nline two\nline three\n"

func TestNew_LineCount(t *testing.T) {
	idx := New(sample)
	if got := idx.LineCount(); got != 3 {
		t.Errorf("expected 3 lines, got %d", got)
	}
}

func TestNew_NoTrailingNewline(t *testing.T) {
	idx := New("line one\nline two")
	if got := idx.LineCount(); got != 2 {
		t.Errorf("expected 2 lines, got %d", got)
	}
}

func TestByteOffset(t *testing.T) {
	idx := New(sample)

	if off := idx.ByteOffset(1); off != 0 {
		t.Errorf("expected line 1 at offset 0, got %d", off)
	}
	if off := idx.ByteOffset(2); off != len("line one\n") {
		t.Errorf("expected line 2 at offset %d, got %d", len("line one\n"), off)
	}
	if off := idx.ByteOffset(0); off != -1 {
		t.Errorf("expected -1 for out-of-range line 0, got %d", off)
	}
	if off := idx.ByteOffset(99); off != -1 {
		t.Errorf("expected -1 for out-of-range line 99, got %d", off)
	}
}

func TestLineNumber(t *testing.T) {
	idx := New(sample)

	tests := []struct {
		byteOffset int
		want       int
	}{
		{0, 1},
		{len("line one"), 1},
		{len("line one\n"), 2},
		{len(sample) - 1, 3},
	}
	for _, tt := range tests {
		if got := idx.LineNumber(tt.byteOffset); got != tt.want {
			t.Errorf("LineNumber(%d) = %d, want %d", tt.byteOffset, got, tt.want)
		}
	}
}

func TestLines_SingleLine(t *testing.T) {
	idx := New(sample)
	if got := idx.Lines(2, 2); got != "line two\n" {
		t.Errorf("Lines(2,2) = %q, want %q", got, "line two\n")
	}
}

func TestLines_MultiLine(t *testing.T) {
	idx := New(sample)
	got := idx.Lines(1, 2)
	want := "line one\nline two\n"
	if got != want {
		t.Errorf("Lines(1,2) = %q, want %q", got, want)
	}
}

func TestLines_ToEndOfBuffer(t *testing.T) {
	idx := New(sample)
	got := idx.Lines(3, 3)
	if got != "line three\n" {
		t.Errorf("Lines(3,3) = %q, want %q", got, "line three\n")
	}
}

func TestLines_ClampsOutOfRangeBounds(t *testing.T) {
	idx := New(sample)
	if got := idx.Lines(0, 99); got != sample {
		t.Errorf("Lines(0,99) = %q, want full buffer", got)
	}
}

func TestLines_EmptyWhenStartAfterEnd(t *testing.T) {
	idx := New(sample)
	if got := idx.Lines(5, 2); got != "" {
		t.Errorf("expected empty string for inverted range, got %q", got)
	}
}

func TestRange_Len(t *testing.T) {
	r := Range{Start: 10, End: 15}
	if r.Len() != 6 {
		t.Errorf("expected length 6, got %d", r.Len())
	}
}

func TestRange_Overlaps(t *testing.T) {
	a := Range{Start: 1, End: 5}
	b := Range{Start: 5, End: 10}
	c := Range{Start: 6, End: 10}

	if !a.Overlaps(b) {
		t.Error("expected a and b to overlap at line 5")
	}
	if a.Overlaps(c) {
		t.Error("expected a and c not to overlap")
	}
}

func TestRange_Merge(t *testing.T) {
	a := Range{Start: 1, End: 5}
	b := Range{Start: 3, End: 10}

	m := a.Merge(b)
	if m.Start != 1 || m.End != 10 {
		t.Errorf("Merge() = %+v, want {1 10}", m)
	}
}

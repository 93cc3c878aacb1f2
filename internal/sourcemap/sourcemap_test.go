package sourcemap

import "testing"

func TestPositionResolution(t *testing.T) {
	text := "line one\nline two\nline three"
	f := NewFile("test.stm", text)

	tests := []struct {
		name   string
		offset int
		want   Position
	}{
		{"start of file", 0, Position{"test.stm", 1, 1, 0}},
		{"mid first line", 5, Position{"test.stm", 1, 6, 5}},
		{"start of second line", 9, Position{"test.stm", 2, 1, 9}},
		{"start of third line", 18, Position{"test.stm", 3, 1, 18}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Position(tt.offset)
			if got != tt.want {
				t.Errorf("Position(%d) = %+v, want %+v", tt.offset, got, tt.want)
			}
		})
	}
}

func TestSpanContainsAndCover(t *testing.T) {
	a := Span{Start: 2, End: 5}
	b := Span{Start: 4, End: 9}

	if !a.Contains(3) {
		t.Error("expected span to contain offset 3")
	}
	if a.Contains(5) {
		t.Error("span end is exclusive; should not contain offset 5")
	}

	cover := a.Cover(b)
	if cover != (Span{Start: 2, End: 9}) {
		t.Errorf("Cover() = %+v, want {2 9}", cover)
	}
}

func TestSliceExtractsText(t *testing.T) {
	f := NewFile("test.stm", "numerus x = 10;")
	got := f.Slice(Span{Start: 0, End: 7})
	if got != "numerus" {
		t.Errorf("Slice() = %q, want %q", got, "numerus")
	}
}

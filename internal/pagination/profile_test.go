package pagination

import "testing"

func TestProfileTable(t *testing.T) {
	tests := []struct {
		size         Size
		charsPerLine int
		linesPerPage int
		capacity     int
	}{
		{Small, 42, 21, 882},
		{Medium, 32, 16, 512},
		{Large, 28, 14, 392},
		{Huge, 24, 11, 264},
	}

	for _, tt := range tests {
		t.Run(tt.size.String(), func(t *testing.T) {
			p := ProfileFor(tt.size)
			if p.Size != tt.size {
				t.Errorf("Size = %v, want %v", p.Size, tt.size)
			}
			if p.CharsPerLine != tt.charsPerLine || p.LinesPerPage != tt.linesPerPage {
				t.Errorf("got %dx%d, want %dx%d", p.CharsPerLine, p.LinesPerPage, tt.charsPerLine, tt.linesPerPage)
			}
			if p.Capacity() != tt.capacity {
				t.Errorf("Capacity() = %d, want %d", p.Capacity(), tt.capacity)
			}
		})
	}
}

func TestProfileForUnknownSize(t *testing.T) {
	if got := ProfileFor(Size(9)); got.Size != Medium {
		t.Errorf("ProfileFor(9).Size = %v, want medium", got.Size)
	}
}

func TestNewProfile(t *testing.T) {
	if _, err := NewProfile(Medium, 0, 10); err == nil {
		t.Error("expected error for zero chars per line")
	}
	if _, err := NewProfile(Medium, 10, -1); err == nil {
		t.Error("expected error for negative lines per page")
	}
	p, err := NewProfile(Large, 3, 4)
	if err != nil {
		t.Fatalf("NewProfile: %v", err)
	}
	if p.Capacity() != 12 {
		t.Errorf("Capacity() = %d, want 12", p.Capacity())
	}
}

func TestParseSize(t *testing.T) {
	for _, s := range Sizes {
		got, err := ParseSize(s.String())
		if err != nil {
			t.Fatalf("ParseSize(%q): %v", s, err)
		}
		if got != s {
			t.Errorf("ParseSize(%q) = %v", s, got)
		}
	}

	if got, err := ParseSize(" HUGE "); err != nil || got != Huge {
		t.Errorf("ParseSize(\" HUGE \") = %v, %v", got, err)
	}
	if _, err := ParseSize("gigantic"); err == nil {
		t.Error("expected error for unknown size")
	}
}

func TestSizeStepping(t *testing.T) {
	if Small.Smaller() != Small {
		t.Error("Small.Smaller() should stay Small")
	}
	if Huge.Bigger() != Huge {
		t.Error("Huge.Bigger() should stay Huge")
	}
	if Medium.Bigger() != Large || Medium.Smaller() != Small {
		t.Error("Medium should step to Large and Small")
	}
}

func TestSizeText(t *testing.T) {
	var s Size
	if err := s.UnmarshalText([]byte("large")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if s != Large {
		t.Errorf("got %v, want large", s)
	}
	if _, err := Size(-1).MarshalText(); err == nil {
		t.Error("expected error marshaling invalid size")
	}
}

package lrc

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sample = `[ti:心经]
[00:05.50] 观自在菩萨
[00:01.00]摩诃般若波罗蜜多心经
[00:10.125]行深般若波罗蜜多时
[00:12.00]
no tag here
[01:02.30]照见五蕴皆空
`

func TestParse(t *testing.T) {
	lines := Parse(sample)

	want := []Line{
		{1 * time.Second, "摩诃般若波罗蜜多心经"},
		{5*time.Second + 500*time.Millisecond, "观自在菩萨"},
		{10*time.Second + 125*time.Millisecond, "行深般若波罗蜜多时"},
		{62*time.Second + 300*time.Millisecond, "照见五蕴皆空"},
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines %v, want %d", len(lines), lines, len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %+v, want %+v", i, lines[i], want[i])
		}
	}
}

func TestParseEmpty(t *testing.T) {
	if lines := Parse(""); len(lines) != 0 {
		t.Errorf("Parse(\"\") = %v, want empty", lines)
	}
}

func TestAt(t *testing.T) {
	lines := Parse(sample)

	tests := []struct {
		at   time.Duration
		text string
		ok   bool
	}{
		{0, "", false},
		{time.Second, "摩诃般若波罗蜜多心经", true},
		{5 * time.Second, "摩诃般若波罗蜜多心经", true},
		{6 * time.Second, "观自在菩萨", true},
		{time.Hour, "照见五蕴皆空", true},
	}
	for _, tt := range tests {
		line, ok := At(lines, tt.at)
		if ok != tt.ok || line.Text != tt.text {
			t.Errorf("At(%v) = %q, %v; want %q, %v", tt.at, line.Text, ok, tt.text, tt.ok)
		}
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heart.lrc")
	os.WriteFile(path, []byte(sample), 0644)

	lines, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(lines) != 4 {
		t.Errorf("got %d lines, want 4", len(lines))
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.lrc")); err == nil {
		t.Error("expected error for missing file")
	}
}

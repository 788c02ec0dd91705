//go:build !gui

package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crab-xieyujin/foshuo/internal/pagination"
	"github.com/crab-xieyujin/foshuo/internal/reader"
)

func newTestModel(t *testing.T, text string) model {
	t.Helper()
	s, _ := newTestSession(t, text)
	m := newModel(s)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 160, Height: 60})
	return updated.(model)
}

func press(m model, k string) (model, tea.Cmd) {
	var msg tea.KeyMsg
	switch k {
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	updated, cmd := m.Update(msg)
	return updated.(model), cmd
}

func TestModelFlipping(t *testing.T) {
	m := newTestModel(t, longText(30))

	if m.Current() != 0 {
		t.Fatalf("expected to open at the cover, got leaf %d", m.Current())
	}
	if !strings.Contains(m.View(), "心经") {
		t.Error("cover should show the title")
	}

	m, _ = press(m, "right")
	if m.Current() != 1 {
		t.Errorf("right: leaf = %d, want 1", m.Current())
	}
	if !strings.Contains(m.View(), "观") {
		t.Error("first page should show text")
	}

	m, _ = press(m, " ")
	m, _ = press(m, "left")
	if m.Current() != 1 {
		t.Errorf("space then left: leaf = %d, want 1", m.Current())
	}

	m, _ = press(m, "left")
	m, _ = press(m, "left")
	if m.Current() != 0 {
		t.Errorf("left past the cover: leaf = %d, want 0", m.Current())
	}
}

func TestModelFontSize(t *testing.T) {
	m := newTestModel(t, longText(60))
	m, _ = press(m, "right")
	m, _ = press(m, "right")
	off := m.Offset()

	m, _ = press(m, "+")
	if m.Size() != pagination.Large {
		t.Fatalf("+ from medium gave %v, want large", m.Size())
	}
	if got := m.store.Settings().Size; got != pagination.Large {
		t.Errorf("size not saved, store has %v", got)
	}
	if span := m.CurrentLeaf().Span; off < span.Start || off >= span.End {
		t.Errorf("offset %d left the page %+v after resize", off, span)
	}

	m, _ = press(m, "-")
	m, _ = press(m, "-")
	if m.Size() != pagination.Small {
		t.Errorf("two - from large gave %v, want small", m.Size())
	}
	m, _ = press(m, "-")
	if m.Size() != pagination.Small {
		t.Errorf("- at small gave %v, want small", m.Size())
	}
}

func TestModelModeToggle(t *testing.T) {
	m := newTestModel(t, longText(30))

	m, _ = press(m, "m")
	if m.Mode != reader.ModeScroll {
		t.Fatalf("m: mode = %v, want scroll", m.Mode)
	}
	if !strings.Contains(m.View(), "观自在菩萨") {
		t.Error("scroll view should show the text")
	}

	m, _ = press(m, "m")
	if m.Mode != reader.ModeFlip {
		t.Errorf("m twice: mode = %v, want flip", m.Mode)
	}
}

func TestModelAutoPlay(t *testing.T) {
	m := newTestModel(t, longText(30))

	m, cmd := press(m, "a")
	if !m.AutoPlay || cmd == nil {
		t.Fatal("a should start auto-play and schedule a tick")
	}

	// A tick from an older run does nothing.
	updated, _ := m.Update(tickMsg{gen: m.autoGen - 1})
	m = updated.(model)
	if m.Current() != 0 {
		t.Errorf("stale tick moved to leaf %d", m.Current())
	}

	updated, cmd = m.Update(tickMsg{gen: m.autoGen})
	m = updated.(model)
	if m.Current() != 1 || cmd == nil {
		t.Errorf("tick: leaf = %d, next tick scheduled = %v", m.Current(), cmd != nil)
	}

	m, _ = press(m, "a")
	if m.AutoPlay {
		t.Fatal("a again should stop auto-play")
	}
	updated, _ = m.Update(tickMsg{gen: m.autoGen})
	m = updated.(model)
	if m.Current() != 1 {
		t.Errorf("tick after stop moved to leaf %d", m.Current())
	}
}

func TestModelAutoPlayStopsAtEnd(t *testing.T) {
	m := newTestModel(t, "甲。")
	m, _ = press(m, "a")

	updated, cmd := m.Update(tickMsg{gen: m.autoGen})
	m = updated.(model)
	if cmd == nil {
		t.Fatal("cover to page should keep ticking")
	}
	updated, cmd = m.Update(tickMsg{gen: m.autoGen})
	m = updated.(model)
	if !m.AtEnd() || cmd != nil {
		t.Errorf("expected to stop at the back cover, at end = %v", m.AtEnd())
	}
}

func TestModelChapterJump(t *testing.T) {
	s, _ := newTestSession(t, "")
	doc := reader.ParseMarkdown("经", []byte("## 第一品\n\n"+longText(10)+"\n\n## 第二品\n\n"+longText(10)))
	s.Reader = reader.NewReader(doc, pagination.Medium)
	m := newModel(s)

	m, _ = press(m, "t")
	m, _ = press(m, "t")
	if got := m.CurrentChapterTitle(); got != "第二品" {
		t.Errorf("two t presses landed in %q, want 第二品", got)
	}
	if !strings.Contains(m.status(), "第二品") {
		t.Error("status line should name the chapter")
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t, longText(3))

	m, cmd := press(m, "q")
	if !m.quitting || cmd == nil {
		t.Fatal("q should quit")
	}
	if m.View() != "" {
		t.Error("quitting mid-book should clear the screen")
	}
}

func TestModelCaption(t *testing.T) {
	m := newTestModel(t, longText(3))
	m.err = nil
	m.subtitle = "观自在菩萨"
	if !strings.Contains(m.View(), "观自在菩萨") {
		t.Error("caption should be shown")
	}
}

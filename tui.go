//go:build !gui

package main

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/crab-xieyujin/foshuo/internal/reader"
)

var (
	coverStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E8C872")).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#8B5A2B")).
			Padding(1, 4)

	pageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F2E6CE"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	captionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E8C872")).
			Italic(true)

	autoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	completeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)
)

type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Bigger   key.Binding
	Smaller  key.Binding
	Mode     key.Binding
	AutoPlay key.Binding
	Chapter  key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Bigger, k.Smaller, k.Mode, k.AutoPlay, k.Chapter, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultKeys = keyMap{
	Next:     key.NewBinding(key.WithKeys("right", "l", " "), key.WithHelp("→", "next")),
	Prev:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev")),
	Bigger:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "bigger")),
	Smaller:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "smaller")),
	Mode:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "flip/scroll")),
	AutoPlay: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto-play")),
	Chapter:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "next chapter")),
	Quit:     key.NewBinding(key.WithKeys("q", "Q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type model struct {
	*session
	keys     keyMap
	help     help.Model
	viewport viewport.Model
	subtitle string
	err      error
	autoGen  int
	quitting bool
	width    int
	height   int
}

// tickMsg advances auto-play. Ticks from an earlier auto-play run are
// ignored by comparing gen.
type tickMsg struct {
	gen int
}

type clockMsg time.Time

func newModel(s *session) model {
	m := model{
		session:  s,
		keys:     defaultKeys,
		help:     help.New(),
		viewport: viewport.New(80, 20),
		width:    80,
		height:   24,
	}
	m.refresh()
	return m
}

func (m model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.AutoPlay {
		cmds = append(cmds, m.tick())
	}
	if len(m.captions) > 0 {
		cmds = append(cmds, clock())
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refresh()
		return m, nil

	case tickMsg:
		if msg.gen != m.autoGen || !m.AutoPlay {
			return m, nil
		}
		if m.Mode == reader.ModeScroll {
			if m.viewport.AtBottom() {
				return m, nil
			}
			m.viewport.SetYOffset(m.viewport.YOffset + 1)
			return m, m.tick()
		}
		if m.Next() && !m.AtEnd() {
			return m, m.tick()
		}
		return m, nil

	case clockMsg:
		m.subtitle = m.caption(time.Time(msg))
		return m, clock()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.syncFromViewport()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Bigger):
		m.syncFromViewport()
		m.err = m.setSize(m.Size().Bigger())
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Smaller):
		m.syncFromViewport()
		m.err = m.setSize(m.Size().Smaller())
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Mode):
		m.syncFromViewport()
		m.err = m.toggleMode()
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.AutoPlay):
		if m.err = m.toggleAutoPlay(); m.err != nil || !m.AutoPlay {
			return m, nil
		}
		m.autoGen++
		return m, m.tick()

	case key.Matches(msg, m.keys.Chapter):
		m.syncFromViewport()
		m.nextChapter()
		m.refresh()
		return m, nil
	}

	if m.Mode == reader.ModeScroll {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Next):
		m.Next()
	case key.Matches(msg, m.keys.Prev):
		m.Prev()
	}
	return m, nil
}

// tick schedules the next auto-play step: one leaf per Delay in flip
// mode, a page's worth of lines per Delay in scroll mode.
func (m model) tick() tea.Cmd {
	d := m.Delay()
	if m.Mode == reader.ModeScroll {
		d /= time.Duration(m.Profile().LinesPerPage)
	}
	gen := m.autoGen
	return tea.Tick(d, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func clock() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

// bodyHeight is what remains for the page after the status, caption and
// help lines.
func (m model) bodyHeight() int {
	return max(1, m.height-3)
}

// lineCells is the wrap width: one line of the profile, two cells per
// CJK character, narrowed to fit the terminal.
func (m model) lineCells() int {
	return max(2, min(m.Profile().CharsPerLine*2, m.width-4))
}

// refresh rebuilds the scroll view after a layout change and keeps it on
// the current passage.
func (m *model) refresh() {
	m.viewport.Width = m.width
	m.viewport.Height = m.bodyHeight()
	if m.Mode != reader.ModeScroll {
		return
	}
	rows := wrapRows(m.Text(), m.lineCells())
	m.viewport.SetContent(pageStyle.Render(strings.Join(rows, "\n")))

	total := utf8.RuneCountInString(m.Text())
	if total == 0 {
		return
	}
	ratio := float64(m.Offset()) / float64(total)
	m.viewport.SetYOffset(int(ratio * float64(len(rows))))
}

// syncFromViewport moves the flip position to what the scroll view shows.
func (m *model) syncFromViewport() {
	if m.Mode != reader.ModeScroll {
		return
	}
	total := utf8.RuneCountInString(m.Text())
	if m.viewport.YOffset == 0 {
		m.SeekOffset(0)
		return
	}
	m.SeekOffset(int(m.viewport.ScrollPercent() * float64(total)))
}

func (m model) View() string {
	if m.quitting {
		if m.AtEnd() {
			return completeStyle.Render("\n  全文完。功德圆满\n")
		}
		return ""
	}

	var body string
	if m.Mode == reader.ModeScroll {
		body = m.viewport.View()
	} else {
		body = lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, m.renderLeaf())
	}

	bottom := ""
	switch {
	case m.err != nil:
		bottom = errorStyle.Render(m.err.Error())
	case m.subtitle != "":
		bottom = captionStyle.Render(m.subtitle)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.status(),
		body,
		lipgloss.PlaceHorizontal(m.width, lipgloss.Center, bottom),
		m.help.View(m.keys),
	)
}

func (m model) status() string {
	current, total := m.Progress()
	parts := []string{m.Doc.Title}
	if ch := m.CurrentChapterTitle(); ch != "" {
		parts = append(parts, ch)
	}
	parts = append(parts,
		fmt.Sprintf("%d/%d", current, total),
		m.Size().String(),
		m.Mode.String(),
	)
	line := statusStyle.Render(strings.Join(parts, " | "))
	if m.AutoPlay {
		line += autoStyle.Render(fmt.Sprintf(" [AUTO %ds]", int(m.Delay()/time.Second)))
	}
	return line
}

func (m model) renderLeaf() string {
	leaf := m.CurrentLeaf()
	switch leaf.Kind {
	case reader.LeafCover:
		return coverStyle.Render(m.Doc.Title)
	case reader.LeafBackCover:
		return coverStyle.Render("全文完")
	}

	p := m.Profile()
	cols := columns(leaf.Text, p.CharsPerLine)
	if p.CharsPerLine <= m.bodyHeight() && len(cols)*3 <= m.width {
		return pageStyle.Render(renderVertical(cols, p.CharsPerLine))
	}
	return pageStyle.Render(strings.Join(wrapRows(leaf.Text, m.lineCells()), "\n"))
}

func runReader(s *session) error {
	p := tea.NewProgram(newModel(s), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

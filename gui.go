//go:build gui

package main

import (
	"fmt"
	"image/color"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/crab-xieyujin/foshuo/internal/pagination"
	"github.com/crab-xieyujin/foshuo/internal/reader"
)

var (
	inkColor   = color.RGBA{R: 0x3B, G: 0x2A, B: 0x1A, A: 0xFF}
	paperColor = color.RGBA{R: 0xF5, G: 0xEB, B: 0xD7, A: 0xFF}
	goldColor  = color.RGBA{R: 0xB8, G: 0x86, B: 0x0B, A: 0xFF}
)

// textSizes maps font-size classes to point sizes.
var textSizes = map[pagination.Size]float32{
	pagination.Small:  16,
	pagination.Medium: 22,
	pagination.Large:  26,
	pagination.Huge:   30,
}

// pageView renders the current leaf as one canvas.Text per row.
func pageView(s *session) fyne.CanvasObject {
	leaf := s.CurrentLeaf()
	size := textSizes[s.Size()]

	switch leaf.Kind {
	case reader.LeafCover, reader.LeafBackCover:
		title := s.Doc.Title
		if leaf.Kind == reader.LeafBackCover {
			title = "全文完"
		}
		t := canvas.NewText(title, goldColor)
		t.TextSize = size * 1.6
		t.TextStyle.Bold = true
		return container.NewCenter(t)
	}

	p := s.Profile()
	rows := wrapRows(leaf.Text, p.CharsPerLine*2)
	objs := make([]fyne.CanvasObject, len(rows))
	for i, row := range rows {
		t := canvas.NewText(row, inkColor)
		t.TextSize = size
		objs[i] = t
	}
	return container.NewCenter(container.NewVBox(objs...))
}

// scrollView shows the whole document in one scrolling label.
func scrollView(s *session) fyne.CanvasObject {
	label := widget.NewLabel(s.Text())
	label.Wrapping = fyne.TextWrapWord
	return container.NewVScroll(label)
}

func statusText(s *session) string {
	current, total := s.Progress()
	parts := []string{s.Doc.Title}
	if ch := s.CurrentChapterTitle(); ch != "" {
		parts = append(parts, ch)
	}
	parts = append(parts, fmt.Sprintf("%d/%d", current, total), s.Size().String(), s.Mode.String())
	if s.AutoPlay {
		parts = append(parts, fmt.Sprintf("AUTO %ds", int(s.Delay()/time.Second)))
	}
	return strings.Join(parts, " | ")
}

func runReader(s *session) error {
	a := app.New()
	w := a.NewWindow("foshuo - " + s.Doc.Title)

	statusLabel := widget.NewLabel("")
	statusLabel.Alignment = fyne.TextAlignCenter
	captionLabel := widget.NewLabel("")
	captionLabel.Alignment = fyne.TextAlignCenter
	controlsLabel := widget.NewLabel("←/→: flip  +/-: font  M: flip/scroll  A: auto-play  T: chapter  F: fullscreen  Q: quit")
	controlsLabel.Alignment = fyne.TextAlignCenter

	paper := canvas.NewRectangle(paperColor)
	pageContainer := container.NewStack()

	updateDisplay := func() {
		var body fyne.CanvasObject
		if s.Mode == reader.ModeScroll {
			body = scrollView(s)
		} else {
			body = pageView(s)
		}
		pageContainer.Objects = []fyne.CanvasObject{paper, body}
		pageContainer.Refresh()
		statusLabel.SetText(statusText(s))
	}

	report := func(err error) {
		if err != nil {
			captionLabel.SetText(err.Error())
		}
	}

	prevButton := widget.NewButton("◀", func() {
		s.Prev()
		updateDisplay()
	})
	nextButton := widget.NewButton("▶", func() {
		s.Next()
		updateDisplay()
	})

	content := container.NewBorder(
		statusLabel,
		container.NewVBox(captionLabel, controlsLabel),
		prevButton, nextButton,
		pageContainer,
	)

	ticker := time.NewTicker(s.Delay())
	clockTicker := time.NewTicker(clockInterval)
	done := make(chan bool)
	var closeOnce sync.Once
	stop := func() {
		closeOnce.Do(func() {
			ticker.Stop()
			clockTicker.Stop()
			close(done)
		})
	}

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fyne.Do(func() {
					if s.AutoPlay && s.Mode == reader.ModeFlip && !s.AtEnd() {
						s.Next()
						updateDisplay()
					}
				})
			case now := <-clockTicker.C:
				if len(s.captions) == 0 {
					continue
				}
				fyne.Do(func() {
					captionLabel.SetText(s.caption(now))
				})
			}
		}
	}()

	w.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeyRight, fyne.KeySpace:
			s.Next()
			updateDisplay()

		case fyne.KeyLeft:
			s.Prev()
			updateDisplay()

		case fyne.KeyF:
			w.SetFullScreen(!w.FullScreen())

		case fyne.KeyQ:
			stop()
			a.Quit()
		}
	})

	w.Canvas().SetOnTypedRune(func(r rune) {
		switch r {
		case '+', '=':
			report(s.setSize(s.Size().Bigger()))
		case '-':
			report(s.setSize(s.Size().Smaller()))
		case 'm', 'M':
			report(s.toggleMode())
		case 'a', 'A':
			report(s.toggleAutoPlay())
			ticker.Reset(s.Delay())
		case 't', 'T':
			s.nextChapter()
		default:
			return
		}
		updateDisplay()
	})

	w.SetOnClosed(stop)
	w.Resize(fyne.NewSize(800, 900))
	w.SetContent(content)
	updateDisplay()
	w.ShowAndRun()
	return nil
}

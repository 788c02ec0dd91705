package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/crab-xieyujin/foshuo/internal/lrc"
	"github.com/crab-xieyujin/foshuo/internal/pagination"
	"github.com/crab-xieyujin/foshuo/internal/reader"
	"github.com/crab-xieyujin/foshuo/internal/state"
)

// clockInterval is how often frontends refresh the caption.
const clockInterval = 250 * time.Millisecond

// session is one open document shared by the terminal and window
// frontends. It follows settings changes made through the store.
type session struct {
	*reader.Reader
	store    *state.Store
	hash     string
	captions []lrc.Line
	started  time.Time
	log      *zap.Logger
	cancel   func()
}

func newSession(doc reader.Document, settings state.Settings, p pagination.Paginator, store *state.Store, log *zap.Logger) *session {
	r := reader.NewReader(doc, settings.Size, reader.WithPaginator(p), reader.WithMode(settings.Mode))
	r.AutoPlay = settings.AutoPlay
	r.Speed = settings.AutoPlaySpeed

	s := &session{
		Reader:  r,
		store:   store,
		hash:    state.HashText(r.Text()),
		started: time.Now(),
		log:     log,
	}
	s.cancel = store.Subscribe(s.apply)
	return s
}

func (s *session) apply(st state.Settings) {
	if st.Size != s.Size() {
		s.SetSize(st.Size)
		s.log.Debug("repaginated",
			zap.Stringer("size", st.Size),
			zap.Int("pages", s.PageCount()),
			zap.Int("leaf", s.Current()))
	}
	s.Mode = st.Mode
	s.AutoPlay = st.AutoPlay
	s.Speed = st.AutoPlaySpeed
}

// restore reopens the document where it was left.
func (s *session) restore() {
	if off := s.store.GetPosition(s.hash); off > 0 {
		s.SeekOffset(off)
	}
}

// save records the current passage. Finishing the book forgets it.
func (s *session) save() error {
	switch s.CurrentLeaf().Kind {
	case reader.LeafBackCover:
		return s.store.Clear(s.hash)
	case reader.LeafCover:
		return nil
	}
	return s.store.SetPosition(s.hash, s.Offset())
}

// The setters below write through the store so changes are remembered,
// session overrides from flags included.

// setSize changes the font size and re-paginates.
func (s *session) setSize(size pagination.Size) error {
	return s.store.UpdateSettings(func(st *state.Settings) error {
		st.Size = size
		st.Mode = s.Mode
		return nil
	})
}

func (s *session) toggleMode() error {
	next := reader.ModeScroll
	if s.Mode == reader.ModeScroll {
		next = reader.ModeFlip
	}
	return s.store.UpdateSettings(func(st *state.Settings) error {
		st.Size = s.Size()
		st.Mode = next
		return nil
	})
}

func (s *session) toggleAutoPlay() error {
	on := !s.AutoPlay
	return s.store.UpdateSettings(func(st *state.Settings) error {
		st.Size = s.Size()
		st.Mode = s.Mode
		st.AutoPlay = on
		return nil
	})
}

// nextChapter jumps to the chapter after the current one.
func (s *session) nextChapter() bool {
	return s.JumpToChapter(s.CurrentChapter() + 1)
}

// caption returns the caption line for the time spent reading.
func (s *session) caption(now time.Time) string {
	if line, ok := lrc.At(s.captions, now.Sub(s.started)); ok {
		return line.Text
	}
	return ""
}

func (s *session) close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

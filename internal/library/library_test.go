package library

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestAddGeneratesIDAndDescription(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	content := strings.Repeat("观自在菩萨", 20)
	sc, err := s.Add(ctx, Scripture{Title: "心经", Content: content})
	require.NoError(t, err)

	assert.Len(t, sc.ID, 36)
	assert.Equal(t, strings.Repeat("观自在菩萨", 10)+"...", sc.Description)
	assert.Equal(t, content, sc.Content)
	assert.False(t, sc.CreatedAt.IsZero())
}

func TestAddKeepsExplicitFields(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	sc, err := s.Add(ctx, Scripture{
		ID:          "heart",
		Title:       "心经",
		Author:      "玄奘",
		Description: "短",
		Content:     "色即是空",
		AudioURL:    "/assets/audio/heart-sutra.mp3",
	})
	require.NoError(t, err)
	assert.Equal(t, "heart", sc.ID)
	assert.Equal(t, "短", sc.Description)
	assert.Equal(t, "玄奘", sc.Author)
	assert.Equal(t, "/assets/audio/heart-sutra.mp3", sc.AudioURL)
}

func TestAddUpsertsByID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	first, err := s.Add(ctx, Scripture{ID: "x", Title: "旧", Content: "一"})
	require.NoError(t, err)
	second, err := s.Add(ctx, Scripture{ID: "x", Title: "新", Content: "二"})
	require.NoError(t, err)

	assert.Equal(t, "新", second.Title)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAddValidates(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Add(ctx, Scripture{Title: " ", Content: "x"})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = s.Add(ctx, Scripture{Title: "t"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestUpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	sc, err := s.Add(ctx, Scripture{Title: "金刚经", Content: "如是我闻"})
	require.NoError(t, err)

	sc.Content = "如是我闻。一时佛在舍卫国"
	updated, err := s.Update(ctx, sc)
	require.NoError(t, err)
	assert.Equal(t, sc.Content, updated.Content)

	_, err = s.Update(ctx, Scripture{ID: "missing", Title: "t", Content: "c"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Remove(ctx, sc.ID))
	_, err = s.Get(ctx, sc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Remove(ctx, sc.ID), ErrNotFound)
}

func TestListOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, title := range []string{"一", "二", "三"} {
		_, err := s.Add(ctx, Scripture{Title: title, Content: title})
		require.NoError(t, err)
	}

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "一", all[0].Title)
	assert.Equal(t, "三", all[2].Title)
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "lib", "library.db")

	s1, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = s1.Add(ctx, Scripture{ID: "a", Title: "t", Content: "c"})
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(ctx, path)
	require.NoError(t, err)
	defer s2.Close()
	got, err := s2.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "c", got.Content)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Add(ctx, Scripture{ID: "m", Title: "t", Content: "c"})
	require.NoError(t, err)
	_, err = s.Get(ctx, "m")
	assert.NoError(t, err)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "短文", Summarize("短文"))
	assert.Equal(t, strings.Repeat("字", 50), Summarize(strings.Repeat("字", 50)))
	assert.Equal(t, strings.Repeat("字", 50)+"...", Summarize(strings.Repeat("字", 51)))
}

func TestReleases(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Latest(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	r, ok, err := s.CheckUpdate(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Publish(ctx, Release{Version: "1.0.0", Build: 1, DownloadURL: "https://example.com/1.apk"})
	require.NoError(t, err)
	_, err = s.Publish(ctx, Release{Version: "1.1.0", Build: 3, DownloadURL: "https://example.com/3.apk", Notes: "翻页更顺"})
	require.NoError(t, err)

	_, err = s.Publish(ctx, Release{Version: "1.0.5", Build: 2, DownloadURL: "https://example.com/2.apk"})
	assert.ErrorIs(t, err, ErrInvalid, "older build must be rejected")

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, latest.Build)
	assert.Equal(t, "翻页更顺", latest.Notes)

	r, ok, err = s.CheckUpdate(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1.1.0", r.Version)

	_, ok, err = s.CheckUpdate(ctx, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPublishValidates(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	cases := []Release{
		{Build: 1, DownloadURL: "u"},
		{Version: "1", Build: 0, DownloadURL: "u"},
		{Version: "1", Build: 1},
	}
	for _, r := range cases {
		_, err := s.Publish(ctx, r)
		assert.ErrorIs(t, err, ErrInvalid, "%+v", r)
	}
}

func TestStoreInstaller(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "foshuo-1.1.0.apk")
	require.NoError(t, os.WriteFile(src, []byte("installer bytes"), 0644))

	outDir := filepath.Join(t.TempDir(), "artifacts")
	dst, digest, err := StoreInstaller(src, outDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "foshuo-1.1.0.apk"), dst)
	assert.Len(t, digest, 64)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "installer bytes", string(data))

	_, again, err := StoreInstaller(src, outDir)
	require.NoError(t, err)
	assert.Equal(t, digest, again)

	_, _, err = StoreInstaller(filepath.Join(srcDir, "missing.apk"), outDir)
	assert.Error(t, err)
}

package library

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeebo/blake3"
)

// Release describes one published app build.
type Release struct {
	Version     string    `json:"version"`
	Build       int       `json:"build"`
	DownloadURL string    `json:"downloadUrl"`
	Notes       string    `json:"releaseNotes,omitempty"`
	Digest      string    `json:"digest,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Publish records r as the newest release. Its build number must be
// greater than every published build.
func (s *Store) Publish(ctx context.Context, r Release) (Release, error) {
	if strings.TrimSpace(r.Version) == "" {
		return Release{}, fmt.Errorf("%w: version is required", ErrInvalid)
	}
	if r.Build < 1 {
		return Release{}, fmt.Errorf("%w: build must be positive, got %d", ErrInvalid, r.Build)
	}
	if strings.TrimSpace(r.DownloadURL) == "" {
		return Release{}, fmt.Errorf("%w: download url is required", ErrInvalid)
	}

	latest, err := s.Latest(ctx)
	switch {
	case err == nil && r.Build <= latest.Build:
		return Release{}, fmt.Errorf("%w: build %d is not newer than %d", ErrInvalid, r.Build, latest.Build)
	case err != nil && !errors.Is(err, ErrNotFound):
		return Release{}, err
	}

	r.PublishedAt = s.now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO releases (build, version, download_url, notes, digest, published_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.Build, r.Version, r.DownloadURL, r.Notes, r.Digest, formatTime(r.PublishedAt))
	if err != nil {
		return Release{}, fmt.Errorf("failed to publish release: %w", err)
	}
	return r, nil
}

// Latest returns the release with the highest build number.
func (s *Store) Latest(ctx context.Context) (Release, error) {
	var r Release
	var published string
	err := s.db.QueryRowContext(ctx, `
		SELECT build, version, download_url, notes, digest, published_at
		FROM releases ORDER BY build DESC LIMIT 1`).
		Scan(&r.Build, &r.Version, &r.DownloadURL, &r.Notes, &r.Digest, &published)
	if errors.Is(err, sql.ErrNoRows) {
		return Release{}, fmt.Errorf("release: %w", ErrNotFound)
	}
	if err != nil {
		return Release{}, err
	}
	if r.PublishedAt, err = parseTime(published); err != nil {
		return Release{}, err
	}
	return r, nil
}

// CheckUpdate reports whether a release newer than currentBuild exists.
func (s *Store) CheckUpdate(ctx context.Context, currentBuild int) (Release, bool, error) {
	latest, err := s.Latest(ctx)
	if errors.Is(err, ErrNotFound) {
		return Release{}, false, nil
	}
	if err != nil {
		return Release{}, false, err
	}
	if latest.Build > currentBuild {
		return latest, true, nil
	}
	return Release{}, false, nil
}

// StoreInstaller copies the installer at src into dir and returns the
// stored path and its blake3 digest. A partial copy is removed.
func StoreInstaller(src, dir string) (dst, digest string, err error) {
	in, err := os.Open(src)
	if err != nil {
		return "", "", err
	}
	defer in.Close()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", err
	}
	target := filepath.Join(dir, filepath.Base(src))
	out, err := os.Create(target)
	if err != nil {
		return "", "", err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(target)
			dst, digest = "", ""
		}
	}()

	h := blake3.New()
	if _, err = io.Copy(io.MultiWriter(out, h), in); err != nil {
		return "", "", fmt.Errorf("failed to copy installer: %w", err)
	}
	return target, hex.EncodeToString(h.Sum(nil)), nil
}

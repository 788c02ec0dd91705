// Package lrc parses LRC caption files used to follow an audio track.
package lrc

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Line is one timed caption.
type Line struct {
	Time time.Duration
	Text string
}

// [mm:ss.xx] or [mm:ss.xxx]
var timeTag = regexp.MustCompile(`\[(\d{2}):(\d{2})\.(\d{2,3})\]`)

// Parse reads LRC text. Lines without a time tag or without text are
// skipped. A two-digit fraction is centiseconds, three digits is
// milliseconds. Only the first tag on a line is used.
func Parse(src string) []Line {
	var lines []Line
	sc := bufio.NewScanner(strings.NewReader(src))
	for sc.Scan() {
		if l, ok := parseLine(sc.Text()); ok {
			lines = append(lines, l)
		}
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Time < lines[j].Time })
	return lines
}

// ParseFile reads and parses an LRC file.
func ParseFile(filename string) ([]Line, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return Parse(string(data)), nil
}

func parseLine(s string) (Line, bool) {
	m := timeTag.FindStringSubmatchIndex(s)
	if m == nil {
		return Line{}, false
	}
	minutes, _ := strconv.Atoi(s[m[2]:m[3]])
	seconds, _ := strconv.Atoi(s[m[4]:m[5]])
	frac := s[m[6]:m[7]]
	n, _ := strconv.Atoi(frac)

	unit := 10 * time.Millisecond
	if len(frac) == 3 {
		unit = time.Millisecond
	}

	text := strings.TrimSpace(s[:m[0]] + s[m[1]:])
	if text == "" {
		return Line{}, false
	}
	d := time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second + time.Duration(n)*unit
	return Line{Time: d, Text: text}, true
}

// At returns the caption showing at t: the last line whose time is not
// after t. ok is false before the first line.
func At(lines []Line, t time.Duration) (line Line, ok bool) {
	i := sort.Search(len(lines), func(i int) bool { return lines[i].Time > t })
	if i == 0 {
		return Line{}, false
	}
	return lines[i-1], true
}

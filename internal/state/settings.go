package state

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/crab-xieyujin/foshuo/internal/pagination"
	"github.com/crab-xieyujin/foshuo/internal/reader"
)

// ErrInvalidSetting is returned for unknown keys and out-of-range values.
var ErrInvalidSetting = errors.New("invalid setting")

// FontFamilies lists the typefaces the reader offers.
var FontFamilies = []string{"songti", "kaiti", "heiti"}

// Settings are the reader preferences.
type Settings struct {
	Size          pagination.Size `json:"font_size"`
	FontFamily    string          `json:"font_family"`
	Mode          reader.Mode     `json:"reading_mode"`
	AutoPlay      bool            `json:"auto_play"`
	AutoPlaySpeed int             `json:"auto_play_speed"` // seconds per page
	BGMEnabled    bool            `json:"bgm_enabled"`
	BGMVolume     float64         `json:"bgm_volume"`
}

// DefaultSettings returns the settings of a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Size:          pagination.Medium,
		FontFamily:    "songti",
		Mode:          reader.ModeFlip,
		AutoPlay:      false,
		AutoPlaySpeed: reader.DefaultSpeed,
		BGMEnabled:    true,
		BGMVolume:     0.3,
	}
}

// SettingKeys lists the keys accepted by Settings.Set, in display order.
var SettingKeys = []string{"font_size", "font_family", "reading_mode", "auto_play", "auto_play_speed", "bgm_enabled", "bgm_volume"}

// Get returns the string form of one setting.
func (s Settings) Get(key string) (string, error) {
	switch key {
	case "font_size":
		return s.Size.String(), nil
	case "font_family":
		return s.FontFamily, nil
	case "reading_mode":
		return s.Mode.String(), nil
	case "auto_play":
		return strconv.FormatBool(s.AutoPlay), nil
	case "auto_play_speed":
		return strconv.Itoa(s.AutoPlaySpeed), nil
	case "bgm_enabled":
		return strconv.FormatBool(s.BGMEnabled), nil
	case "bgm_volume":
		return strconv.FormatFloat(s.BGMVolume, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("%w: unknown key %q", ErrInvalidSetting, key)
}

// Set parses value and assigns it to key.
func (s *Settings) Set(key, value string) error {
	value = strings.TrimSpace(value)
	var err error
	switch key {
	case "font_size":
		s.Size, err = pagination.ParseSize(value)
	case "font_family":
		if !validFamily(value) {
			err = fmt.Errorf("unknown font family %q", value)
		} else {
			s.FontFamily = value
		}
	case "reading_mode":
		s.Mode, err = reader.ParseMode(value)
	case "auto_play":
		s.AutoPlay, err = strconv.ParseBool(value)
	case "auto_play_speed":
		var n int
		n, err = strconv.Atoi(value)
		if err == nil && (n < 1 || n > 60) {
			err = fmt.Errorf("speed must be between 1 and 60 seconds, got %d", n)
		}
		if err == nil {
			s.AutoPlaySpeed = n
		}
	case "bgm_enabled":
		s.BGMEnabled, err = strconv.ParseBool(value)
	case "bgm_volume":
		var v float64
		v, err = strconv.ParseFloat(value, 64)
		if err == nil && (v < 0 || v > 1) {
			err = fmt.Errorf("volume must be between 0 and 1, got %v", v)
		}
		if err == nil {
			s.BGMVolume = v
		}
	default:
		return fmt.Errorf("%w: unknown key %q", ErrInvalidSetting, key)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSetting, key, err)
	}
	return nil
}

// Validate reports the first out-of-range field.
func (s Settings) Validate() error {
	if !s.Size.Valid() {
		return fmt.Errorf("%w: font_size %d", ErrInvalidSetting, int(s.Size))
	}
	if !validFamily(s.FontFamily) {
		return fmt.Errorf("%w: font_family %q", ErrInvalidSetting, s.FontFamily)
	}
	if s.AutoPlaySpeed < 1 {
		return fmt.Errorf("%w: auto_play_speed %d", ErrInvalidSetting, s.AutoPlaySpeed)
	}
	if s.BGMVolume < 0 || s.BGMVolume > 1 {
		return fmt.Errorf("%w: bgm_volume %v", ErrInvalidSetting, s.BGMVolume)
	}
	return nil
}

func validFamily(name string) bool {
	for _, f := range FontFamilies {
		if f == name {
			return true
		}
	}
	return false
}

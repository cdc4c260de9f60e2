// Package storage keeps the only durable state: the theme preference.
package storage

import (
	"context"
	"fmt"
	"strings"

	"interview-coach/internal/config"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ParseTheme accepts "light" or "dark" in any case.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	default:
		return "", fmt.Errorf("unknown theme %q", s)
	}
}

// PreferenceStore reads and writes a user's theme. Theme returns ThemeLight
// when nothing was saved yet.
type PreferenceStore interface {
	Theme(ctx context.Context, user string) (Theme, error)
	SetTheme(ctx context.Context, user string, theme Theme) error
}

// Open builds the store selected by cfg. The returned close func is never nil.
func Open(ctx context.Context, cfg config.StorageConfig) (PreferenceStore, func() error, error) {
	switch cfg.Backend {
	case config.StorageRedis:
		client, err := ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, func() error { return nil }, err
		}
		return NewRedisStore(client), client.Close, nil
	default:
		return NewFileStore(cfg.PreferencesFile), func() error { return nil }, nil
	}
}

package domain

import (
	"fmt"
	"strings"
	"time"
)

// Session is the stored state of one calculator session.
type Session struct {
	ID        string      `json:"id"`
	Policy    Policy      `json:"policy"`
	Plan      SavingsPlan `json:"plan"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Source distinguishes the precise number field from the bounded slider.
type Source string

const (
	SourceField  Source = "field"
	SourceSlider Source = "slider"
)

// ParseSource reads an input source. Empty means the number field.
func ParseSource(raw string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SourceField:
		return SourceField, nil
	case SourceSlider:
		return SourceSlider, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSource, raw)
}

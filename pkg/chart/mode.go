package chart

import (
	"fmt"
	"strings"
)

// ViewMode selects which holdings feed the chart.
type ViewMode int

const (
	ModeTotal ViewMode = iota
	ModeCryptoOnly
	ModeFiatOnly

	modeCount = 3
)

func (m ViewMode) String() string {
	switch m {
	case ModeTotal:
		return "Total"
	case ModeCryptoOnly:
		return "Crypto"
	case ModeFiatOnly:
		return "Fiat"
	}
	return fmt.Sprintf("ViewMode(%d)", int(m))
}

// Valid reports whether m is one of the three known modes.
func (m ViewMode) Valid() bool {
	return m >= ModeTotal && m < modeCount
}

// Next returns the mode after m in the ring Total -> Crypto -> Fiat -> Total.
func (m ViewMode) Next() ViewMode {
	if !m.Valid() {
		return ModeTotal
	}
	return (m + 1) % modeCount
}

// ParseViewMode accepts the names used in config files and on the command line.
func ParseViewMode(s string) (ViewMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "total", "all":
		return ModeTotal, nil
	case "crypto", "crypto-only", "cryptoonly":
		return ModeCryptoOnly, nil
	case "fiat", "fiat-only", "fiatonly":
		return ModeFiatOnly, nil
	}
	return ModeTotal, fmt.Errorf("unknown view mode %q", s)
}

// Selector tracks the active view mode. It never triggers a refresh.
type Selector struct {
	mode ViewMode
}

// NewSelector returns a selector starting at initial, or at ModeTotal if
// initial is not a known mode.
func NewSelector(initial ViewMode) Selector {
	if !initial.Valid() {
		initial = ModeTotal
	}
	return Selector{mode: initial}
}

// Mode returns the active mode.
func (s *Selector) Mode() ViewMode {
	return s.mode
}

// SetMode sets the active mode.
func (s *Selector) SetMode(m ViewMode) error {
	if !m.Valid() {
		return fmt.Errorf("invalid view mode %d", int(m))
	}
	s.mode = m
	return nil
}

// CycleMode advances to the next mode and returns it.
func (s *Selector) CycleMode() ViewMode {
	s.mode = s.mode.Next()
	return s.mode
}

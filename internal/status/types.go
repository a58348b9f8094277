package status

import (
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

const (
	// MaxHistory is the number of entries kept in the history; older ones are evicted first.
	MaxHistory = 100
	// MaxPhotos is the number of photos kept; older ones are evicted first.
	MaxPhotos = 20
	// TimeLayout formats entry timestamps as DD.MM HH:MM.
	TimeLayout = "02.01 15:04"
)

// Flag names, in display order
const (
	FlagWalk  = "walk"
	FlagEat   = "eat"
	FlagDrink = "drink"
	FlagPlay  = "play"
	FlagCold  = "cold"
)

// FlagNames lists the full flag vocabulary in display order
var FlagNames = []string{FlagWalk, FlagEat, FlagDrink, FlagPlay, FlagCold}

// Flags holds the need-flags of a status entry
type Flags struct {
	Walk  bool `json:"walk" yaml:"walk"`   // Wants a walk
	Eat   bool `json:"eat" yaml:"eat"`     // Wants to eat
	Drink bool `json:"drink" yaml:"drink"` // Wants to drink
	Play  bool `json:"play" yaml:"play"`   // Wants to play
	Cold  bool `json:"cold" yaml:"cold"`   // Needs a coat
}

// Entry is one recorded status. Flags are stored as flat fields next to the text.
type Entry struct {
	Text  string   `json:"text" yaml:"text"`
	Flags `yaml:",inline"`
	Mood  *float64 `json:"mood" yaml:"mood"` // nil when no mood was recorded
	Time  string   `json:"time" yaml:"time"` // Local time in TimeLayout
}

// State is the full persisted record
type State struct {
	CurrentStatus *Entry   `json:"currentStatus" yaml:"currentStatus"`
	History       []Entry  `json:"history" yaml:"history"` // Oldest first
	WalkCount     int      `json:"walkCount" yaml:"walkCount"`
	Photos        []string `json:"photos" yaml:"photos"` // Inline data URLs
}

// DefaultState returns the state used when nothing has been persisted yet
func DefaultState() State {
	return State{
		History: []Entry{},
		Photos:  []string{},
	}
}

// Clone returns a deep copy of the state
func (s State) Clone() State {
	out := State{
		WalkCount: s.WalkCount,
		History:   make([]Entry, len(s.History)),
		Photos:    make([]string, len(s.Photos)),
	}
	if s.CurrentStatus != nil {
		cur := s.CurrentStatus.Clone()
		out.CurrentStatus = &cur
	}
	for i, e := range s.History {
		out.History[i] = e.Clone()
	}
	copy(out.Photos, s.Photos)
	return out
}

// Clone returns a copy of the entry that shares no memory with the original
func (e Entry) Clone() Entry {
	if e.Mood != nil {
		m := *e.Mood
		e.Mood = &m
	}
	return e
}

// ParseFlags builds Flags from a list of flag names.
// Names are matched case-insensitively; empty names are skipped.
func ParseFlags(names []string) (Flags, error) {
	var f Flags
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if err := f.Set(name, true); err != nil {
			return Flags{}, err
		}
	}
	return f, nil
}

// Set sets a single flag by name
func (f *Flags) Set(name string, value bool) error {
	switch name {
	case FlagWalk:
		f.Walk = value
	case FlagEat:
		f.Eat = value
	case FlagDrink:
		f.Drink = value
	case FlagPlay:
		f.Play = value
	case FlagCold:
		f.Cold = value
	default:
		return fmt.Errorf("unknown flag: %s (valid: %s)", name, strings.Join(FlagNames, ", "))
	}
	return nil
}

// Names returns the names of the flags that are set, in display order
func (f Flags) Names() []string {
	names := []string{}
	if f.Walk {
		names = append(names, FlagWalk)
	}
	if f.Eat {
		names = append(names, FlagEat)
	}
	if f.Drink {
		names = append(names, FlagDrink)
	}
	if f.Play {
		names = append(names, FlagPlay)
	}
	if f.Cold {
		names = append(names, FlagCold)
	}
	return names
}

// NormalizeMood converts raw mood input into a score the way a browser coerces a form
// value to a number: surrounding whitespace is ignored, decimal and exponent forms are
// accepted, as are unsigned 0x, 0o and 0b integers. Empty input, anything else that is
// not a number (digit separators included) and non-finite values yield nil; 0 is a valid score.
func NormalizeMood(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	v, ok := parseNumber(raw)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

var decimalNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

var integerPrefixes = map[string]int{"0x": 16, "0o": 8, "0b": 2}

func parseNumber(s string) (float64, bool) {
	if len(s) > 2 {
		if base, ok := integerPrefixes[strings.ToLower(s[:2])]; ok {
			digits := s[2:]
			if digits[0] == '+' || digits[0] == '-' {
				return 0, false
			}
			n, ok := new(big.Int).SetString(digits, base)
			if !ok {
				return 0, false
			}
			v, _ := new(big.Float).SetInt(n).Float64()
			return v, true
		}
	}

	if !decimalNumber.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

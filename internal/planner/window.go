// Package planner holds the pure scheduling rules: time windows, status
// classification, day aggregation, category normalisation and rewards.
package planner

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// WindowSeparator joins the start and end of a textual window.
	WindowSeparator = " - "
	// DefaultLength applies when a window has no end time.
	DefaultLength = 60
	// LastMinute is the final minute of a day.
	LastMinute = 24*60 - 1
)

// FormatError reports a time window that cannot be parsed.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid time window %q: %s", e.Input, e.Reason)
}

// Window is a same-day interval in minutes since midnight.
type Window struct {
	Start int
	End   int
}

// ParseWindow parses "HH:MM - HH:MM". A lone start time gets a 60 minute
// window, capped at the end of the day. An end before the start collapses the
// window to zero length; it never wraps past midnight.
func ParseWindow(text string) (Window, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Window{}, &FormatError{Input: text, Reason: "empty"}
	}
	parts := strings.Split(trimmed, WindowSeparator)
	if len(parts) > 2 {
		return Window{}, &FormatError{Input: text, Reason: "too many segments"}
	}

	start, err := parseClock(parts[0])
	if err != nil {
		return Window{}, &FormatError{Input: text, Reason: err.Error()}
	}

	end := start + DefaultLength
	if end > LastMinute {
		end = LastMinute
	}
	if len(parts) == 2 {
		end, err = parseClock(parts[1])
		if err != nil {
			return Window{}, &FormatError{Input: text, Reason: err.Error()}
		}
	}
	if end < start {
		end = start
	}
	return Window{Start: start, End: end}, nil
}

// Canonical validates text and returns it zero-padded as "HH:MM - HH:MM". Unlike
// Window.String it keeps an end that lies before the start.
func Canonical(text string) (string, error) {
	w, err := ParseWindow(text)
	if err != nil {
		return "", err
	}
	parts := strings.Split(strings.TrimSpace(text), WindowSeparator)
	if len(parts) == 2 {
		rawEnd, _ := parseClock(parts[1])
		return FormatClock(w.Start) + WindowSeparator + FormatClock(rawEnd), nil
	}
	return w.String(), nil
}

// NewWindow builds a window from separate start and end clock strings.
func NewWindow(start, end string) (Window, error) {
	if strings.TrimSpace(end) == "" {
		return ParseWindow(start)
	}
	return ParseWindow(strings.TrimSpace(start) + WindowSeparator + strings.TrimSpace(end))
}

// Duration is the window length in minutes, never negative.
func (w Window) Duration() int {
	if w.End < w.Start {
		return 0
	}
	return w.End - w.Start
}

// String formats the window back to "HH:MM - HH:MM".
func (w Window) String() string {
	return FormatClock(w.Start) + WindowSeparator + FormatClock(w.End)
}

// FormatClock renders minutes since midnight as zero-padded "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// MinutesOf returns the local wall-clock time of t as minutes since midnight.
func MinutesOf(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func parseClock(raw string) (int, error) {
	value := strings.TrimSpace(raw)
	hh, mm, ok := strings.Cut(value, ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour*60 + minute, nil
}

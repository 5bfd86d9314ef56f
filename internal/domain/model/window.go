package model

import "time"

// Window is a half-open time interval [Start, End). A zero bound is open.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies in the window; Start is inclusive and End exclusive.
func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && !t.Before(w.End) {
		return false
	}
	return true
}

// IsOpen reports whether both bounds are unset.
func (w Window) IsOpen() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Valid reports whether Start precedes End when both are set.
func (w Window) Valid() bool {
	return w.Start.IsZero() || w.End.IsZero() || w.Start.Before(w.End)
}

var dateLayouts = []string{time.RFC3339, "2006-01-02", "2006-01", "2006"} //nolint:gochecknoglobals // parse table

// ParseDate accepts RFC3339, YYYY-MM-DD, YYYY-MM or YYYY and returns a UTC time.
func ParseDate(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// ParseWindow parses optional bounds. Empty strings leave the bound open.
func ParseWindow(start, end string) (Window, error) {
	var w Window
	var err error
	if start != "" {
		if w.Start, err = ParseDate(start); err != nil {
			return Window{}, err
		}
	}
	if end != "" {
		if w.End, err = ParseDate(end); err != nil {
			return Window{}, err
		}
	}
	if !w.Valid() {
		return Window{}, ErrInvalidWindow
	}
	return w, nil
}

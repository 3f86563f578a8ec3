// Package code holds the three-buffer source bundle edited in a workspace and
// the composition of that bundle into a single previewable document.
package code

import (
	"errors"
	"fmt"
	"strings"
)

// Bundle is the generated or hand-edited source of one page. The zero value is
// the all-empty bundle.
type Bundle struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
	JS   string `json:"js"`
}

// IsEmpty reports whether all three buffers are empty.
func (b Bundle) IsEmpty() bool {
	return b.HTML == "" && b.CSS == "" && b.JS == ""
}

// Get returns the buffer selected by tab.
func (b Bundle) Get(tab Tab) string {
	switch tab {
	case TabCSS:
		return b.CSS
	case TabJS:
		return b.JS
	default:
		return b.HTML
	}
}

// With returns a copy of b with only the buffer selected by tab replaced.
func (b Bundle) With(tab Tab, value string) Bundle {
	switch tab {
	case TabCSS:
		b.CSS = value
	case TabJS:
		b.JS = value
	default:
		b.HTML = value
	}
	return b
}

// Tab identifies one of the three editable buffers.
type Tab uint8

const (
	TabHTML Tab = iota
	TabCSS
	TabJS
)

// Tabs lists every tab in display order.
var Tabs = []Tab{TabHTML, TabCSS, TabJS}

// ErrInvalidTab is returned by ParseTab for names outside the enumeration.
var ErrInvalidTab = errors.New("invalid tab: must be one of HTML, CSS, JS")

// String returns the display name of the tab.
func (t Tab) String() string {
	switch t {
	case TabCSS:
		return "CSS"
	case TabJS:
		return "JS"
	default:
		return "HTML"
	}
}

// ParseTab parses a tab name case-insensitively.
func ParseTab(s string) (Tab, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HTML":
		return TabHTML, nil
	case "CSS":
		return TabCSS, nil
	case "JS":
		return TabJS, nil
	default:
		return 0, fmt.Errorf("%w (got %q)", ErrInvalidTab, s)
	}
}

// MarshalText implements encoding.TextMarshaler so tabs serialize by name.
func (t Tab) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tab) UnmarshalText(b []byte) error {
	parsed, err := ParseTab(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

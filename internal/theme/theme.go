// Package theme holds the document-level class set that mirrors the dark-mode preference and
// the terminal palette derived from it.
package theme

import (
	"sort"
	"sync"

	"github.com/fatih/color"
)

// DarkClass is present on the document while dark mode is on.
const DarkClass = "dark"

// Document is the root render target. Renderers read its classes; only the root controller
// writes them.
type Document struct {
	mu      sync.RWMutex
	classes map[string]struct{}
}

// NewDocument returns a document with no classes.
func NewDocument() *Document {
	return &Document{classes: make(map[string]struct{})}
}

// SetClass adds or removes a class.
func (d *Document) SetClass(name string, on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if on {
		d.classes[name] = struct{}{}
		return
	}
	delete(d.classes, name)
}

// HasClass reports whether the class is set.
func (d *Document) HasClass(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.classes[name]
	return ok
}

// Classes returns the set classes in sorted order.
func (d *Document) Classes() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.classes))
	for c := range d.classes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Dark reports whether the dark class is set.
func (d *Document) Dark() bool {
	return d.HasClass(DarkClass)
}

// Palette is the set of colours views render with.
type Palette struct {
	Heading *color.Color
	Accent  *color.Color
	Muted   *color.Color
	Success *color.Color
	Error   *color.Color
	Tag     *color.Color
}

// Palette returns the palette for the document's current classes. When colorize is false every
// colour is disabled so output stays plain (pipes, JSON consumers, tests).
func (d *Document) Palette(colorize bool) Palette {
	var p Palette
	if d.Dark() {
		p = Palette{
			Heading: color.New(color.FgHiWhite, color.Bold),
			Accent:  color.New(color.FgHiMagenta),
			Muted:   color.New(color.FgHiBlack),
			Success: color.New(color.FgHiGreen),
			Error:   color.New(color.FgHiRed),
			Tag:     color.New(color.FgHiCyan),
		}
	} else {
		p = Palette{
			Heading: color.New(color.FgBlack, color.Bold),
			Accent:  color.New(color.FgBlue),
			Muted:   color.New(color.FgWhite),
			Success: color.New(color.FgGreen),
			Error:   color.New(color.FgRed),
			Tag:     color.New(color.FgCyan),
		}
	}
	for _, c := range []*color.Color{p.Heading, p.Accent, p.Muted, p.Success, p.Error, p.Tag} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

package widget

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/fropcore/bmiwidget/internal/services"
)

// ShortcodeTag is the tag registered by DefaultShortcodes.
const ShortcodeTag = "bmi_widget"

// ErrUnknownShortcode is returned by Render for tags that were never registered.
var ErrUnknownShortcode = errors.New("widget: unknown shortcode")

var (
	validTag = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	// [tag], [tag attr="x"], [tag /] and the escaped form [[tag]].
	shortcodePattern = regexp.MustCompile(`(\[?)\[([A-Za-z0-9_-]+)(\s[^\[\]]*)?\](\]?)`)
)

// Shortcodes maps tags to renderables. Attributes on a tag are accepted and ignored.
type Shortcodes struct {
	mu       sync.RWMutex
	handlers map[string]Renderable
}

// NewShortcodes returns an empty registry.
func NewShortcodes() *Shortcodes {
	return &Shortcodes{handlers: make(map[string]Renderable)}
}

// DefaultShortcodes returns a registry with [bmi_widget] bound to body.
func DefaultShortcodes(body Renderable) *Shortcodes {
	registry := NewShortcodes()
	_ = registry.Register(ShortcodeTag, body)
	return registry
}

// Register binds tag to r, replacing any previous binding.
func (s *Shortcodes) Register(tag string, r Renderable) error {
	if !validTag.MatchString(tag) {
		return fmt.Errorf("widget: invalid shortcode tag %q", tag)
	}
	if r == nil {
		return fmt.Errorf("widget: nil renderable for shortcode %q", tag)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[tag] = r
	return nil
}

// Lookup returns the renderable bound to tag.
func (s *Shortcodes) Lookup(tag string) (Renderable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.handlers[tag]
	return r, ok
}

// Tags lists the registered tags in lexical order.
func (s *Shortcodes) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tags := make([]string, 0, len(s.handlers))
	for tag := range s.handlers {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Render renders a single tag.
func (s *Shortcodes) Render(ctx context.Context, tag string, settings services.MeasurementSettings) (string, error) {
	r, ok := s.Lookup(tag)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownShortcode, tag)
	}
	return r.Render(ctx, settings)
}

// Expand replaces every registered shortcode in content with its output.
// Unknown tags are left untouched and [[tag]] yields the literal [tag].
func (s *Shortcodes) Expand(ctx context.Context, content string, settings services.MeasurementSettings) (string, error) {
	if !strings.Contains(content, "[") {
		return content, nil
	}

	matches := shortcodePattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content, nil
	}

	var (
		b    strings.Builder
		last int
	)
	for _, m := range matches {
		start, end := m[0], m[1]
		tag := content[m[4]:m[5]]
		escaped := m[3] > m[2] && m[9] > m[8]

		b.WriteString(content[last:start])
		last = end

		r, ok := s.Lookup(tag)
		switch {
		case !ok:
			b.WriteString(content[start:end])
		case escaped:
			b.WriteString(content[start+1 : end-1])
		default:
			if m[3] > m[2] {
				b.WriteString("[")
			}
			out, err := r.Render(ctx, settings)
			if err != nil {
				return "", fmt.Errorf("widget: expand [%s]: %w", tag, err)
			}
			b.WriteString(out)
			if m[9] > m[8] {
				b.WriteString("]")
			}
		}
	}
	b.WriteString(content[last:])
	return b.String(), nil
}

package driver

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/specialistvlad/aerolca/internal/model"
)

// KeyPrefix starts every output series key.
const KeyPrefix = "lca_"

// Canonical lower-cases s, replaces runs of non-alphanumeric characters with a
// single underscore and trims leading and trailing underscores.
func Canonical(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}

// SeriesKey builds the output key for a metric. system is omitted when empty
// and label is omitted when empty.
func SeriesKey(system, metric, label string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{system, metric, label} {
		if c := Canonical(p); c != "" {
			parts = append(parts, c)
		}
	}
	return KeyPrefix + strings.Join(parts, "_")
}

// KeyCollisionError is returned when two distinct (system, metric, label)
// sources canonicalize to the same output key.
type KeyCollisionError struct {
	Key    string
	First  string
	Second string
}

func (e *KeyCollisionError) Error() string {
	return fmt.Sprintf("output key '%s' is produced by both %s and %s", e.Key, e.First, e.Second)
}

func describeSource(system, metric, label string) string {
	s := fmt.Sprintf("metric '%s'", metric)
	if system != "" {
		s = fmt.Sprintf("system '%s' %s", system, s)
	}
	if label != "" {
		s += fmt.Sprintf(" label '%s'", label)
	}
	return s
}

// checkKeys verifies every output key of axis is unique. systems holds the
// system names that appear in keys; pass nil for a single system.
func checkKeys(m *model.Model, axis string, systems []string) error {
	if len(systems) == 0 {
		systems = []string{""}
	}
	seen := make(map[string]string)
	for _, s := range systems {
		for _, metric := range m.Metrics(axis) {
			labels := []string{""}
			if l, ok := m.Lambda(axis, metric); ok && l.IsDecomposed() {
				labels = l.Axes()
			}
			for _, label := range labels {
				key := SeriesKey(s, metric, label)
				src := describeSource(s, metric, label)
				if prev, dup := seen[key]; dup {
					return &KeyCollisionError{Key: key, First: prev, Second: src}
				}
				seen[key] = src
			}
		}
	}
	return nil
}

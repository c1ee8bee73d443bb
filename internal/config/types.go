package config

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// TOGGLE
// =============================================================================

// Toggle is an output switch. It accepts true/yes/y/1/on and
// false/no/n/0/off in any case; any other value leaves the default in place.
type Toggle bool

// ParseToggle reports the boolean for a toggle word and whether it was
// recognised.
func ParseToggle(s string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "on":
		return true, true
	case "false", "no", "n", "0", "off":
		return false, true
	}
	return false, false
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Toggle) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return nil
	}
	if v, ok := ParseToggle(node.Value); ok {
		*t = Toggle(v)
	}
	return nil
}

// Decode implements envconfig.Decoder.
func (t *Toggle) Decode(value string) error {
	if v, ok := ParseToggle(value); ok {
		*t = Toggle(v)
	}
	return nil
}

// Enabled reports whether the toggle is on.
func (t Toggle) Enabled() bool { return bool(t) }

// =============================================================================
// NOTES
// =============================================================================

// Notes is a list of free-text lines. In YAML it may be written as a single
// string or as a list.
type Notes []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *Notes) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*n = nil
			return nil
		}
		if s := strings.TrimSpace(node.Value); s != "" {
			*n = Notes{s}
		} else {
			*n = nil
		}
		return nil
	case yaml.SequenceNode:
		var lines []string
		if err := node.Decode(&lines); err != nil {
			return fmt.Errorf("notes: %w", err)
		}
		out := make(Notes, 0, len(lines))
		for _, l := range lines {
			if s := strings.TrimSpace(l); s != "" {
				out = append(out, s)
			}
		}
		*n = out
		return nil
	}
	return fmt.Errorf("notes must be a string or a list of strings (line %d)", node.Line)
}

// =============================================================================
// ALIASES
// =============================================================================

// Aliases maps raw column names to canonical fields.
type Aliases map[string]string

// UnmarshalYAML implements yaml.Unmarshaler. Anything other than a mapping
// of scalars is rejected with ErrInvalidAliases.
func (a *Aliases) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*a = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w (line %d)", ErrInvalidAliases, node.Line)
	}

	out := make(Aliases, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return fmt.Errorf("%w (line %d)", ErrInvalidAliases, k.Line)
		}
		out[k.Value] = v.Value
	}
	*a = out
	return nil
}

// Decode implements envconfig.Decoder for "raw:target,raw:target".
func (a *Aliases) Decode(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	out := make(Aliases)
	for _, pair := range strings.Split(value, ",") {
		raw, target, ok := strings.Cut(pair, ":")
		if !ok {
			return fmt.Errorf("%w: %q is not raw:target", ErrInvalidAliases, pair)
		}
		out[strings.TrimSpace(raw)] = strings.TrimSpace(target)
	}
	*a = out
	return nil
}

// String renders the aliases in key order.
func (a Aliases) String() string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ":" + a[k]
	}
	return strings.Join(parts, ",")
}

// Package i18ncheck compares the shape of two locale catalogs: key sets,
// value types and array lengths at every nesting level. Leaf values are not
// compared.
package i18ncheck

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

type MismatchKind int

const (
	TypeMismatch MismatchKind = iota
	MissingKeys
	ExtraKeys
	LengthMismatch
)

// Mismatch is one structural difference found at Path.
type Mismatch struct {
	Path string
	Kind MismatchKind
	// Keys is set for MissingKeys and ExtraKeys, sorted.
	Keys []string
	// Reference and Target hold the two types for TypeMismatch and the two
	// lengths for LengthMismatch.
	Reference string
	Target    string
}

func (m Mismatch) String() string {
	switch m.Kind {
	case MissingKeys:
		return fmt.Sprintf("%s: keys missing in target: %s", m.Path, strings.Join(m.Keys, ", "))
	case ExtraKeys:
		return fmt.Sprintf("%s: extra keys in target: %s", m.Path, strings.Join(m.Keys, ", "))
	case LengthMismatch:
		return fmt.Sprintf("%s: array length mismatch -> %s !== %s", m.Path, m.Reference, m.Target)
	default:
		return fmt.Sprintf("%s: type mismatch -> %s !== %s", m.Path, m.Reference, m.Target)
	}
}

// Load reads and decodes a locale catalog.
func Load(path string) (any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load JSON from %s: %w", path, err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to load JSON from %s: %w", path, err)
	}
	return v, nil
}

// Compare returns every mismatch between ref and target, in a stable order.
// Both values are expected to come from encoding/json decoding into any.
func Compare(ref, target any) []Mismatch {
	return compare(ref, target, "")
}

func compare(a, b any, p string) []Mismatch {
	label := p
	if label == "" {
		label = "root"
	}

	ta, tb := typeOf(a), typeOf(b)
	if ta != tb {
		return []Mismatch{{Path: label, Kind: TypeMismatch, Reference: ta, Target: tb}}
	}

	var out []Mismatch
	switch av := a.(type) {
	case map[string]any:
		bv := b.(map[string]any)
		var missing, extra, common []string
		for k := range av {
			if _, ok := bv[k]; ok {
				common = append(common, k)
			} else {
				missing = append(missing, k)
			}
		}
		for k := range bv {
			if _, ok := av[k]; !ok {
				extra = append(extra, k)
			}
		}
		sort.Strings(missing)
		sort.Strings(extra)
		sort.Strings(common)
		if len(missing) > 0 {
			out = append(out, Mismatch{Path: label, Kind: MissingKeys, Keys: missing})
		}
		if len(extra) > 0 {
			out = append(out, Mismatch{Path: label, Kind: ExtraKeys, Keys: extra})
		}
		for _, k := range common {
			child := k
			if p != "" {
				child = p + "." + k
			}
			out = append(out, compare(av[k], bv[k], child)...)
		}
	case []any:
		bv := b.([]any)
		if len(av) != len(bv) {
			out = append(out, Mismatch{
				Path:      label,
				Kind:      LengthMismatch,
				Reference: fmt.Sprint(len(av)),
				Target:    fmt.Sprint(len(bv)),
			})
		}
		n := min(len(av), len(bv))
		for i := 0; i < n; i++ {
			out = append(out, compare(av[i], bv[i], fmt.Sprintf("%s[%d]", label, i))...)
		}
	}
	return out
}

func typeOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case string:
		return "string"
	case float64, json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

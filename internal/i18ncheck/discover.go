package i18ncheck

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Catalog is a locale file found in a locales directory.
type Catalog struct {
	Tag  language.Tag
	Path string
}

// Discover lists the <tag>.json files in dir whose base name is a valid BCP 47
// tag, and splits them into the reference catalog and the rest. Other files
// are ignored.
func Discover(dir, reference string) (Catalog, []Catalog, error) {
	refTag, err := language.Parse(reference)
	if err != nil {
		return Catalog{}, nil, fmt.Errorf("reference locale %q: %w", reference, err)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		return Catalog{}, nil, err
	}

	var (
		ref     Catalog
		found   bool
		targets []Catalog
	)
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || strings.ToLower(filepath.Ext(name)) != ".json" {
			continue
		}
		tag, err := language.Parse(strings.TrimSuffix(name, filepath.Ext(name)))
		if err != nil {
			continue
		}
		c := Catalog{Tag: tag, Path: filepath.Join(dir, name)}
		if tag == refTag {
			ref, found = c, true
			continue
		}
		targets = append(targets, c)
	}
	if !found {
		return Catalog{}, nil, fmt.Errorf("reference locale %s not found in %s", refTag, dir)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Path < targets[j].Path })
	return ref, targets, nil
}

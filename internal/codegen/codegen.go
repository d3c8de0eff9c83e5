// Package codegen is the registry of language emitters. Emitters render the
// output tree in memory so generate can write it and verify can diff it
// against what is on disk.
package codegen

import (
	"fmt"
	"sort"

	"github.com/pgbind/pgbind/internal/introspect"
)

type Generator interface {
	// Render produces the full output tree keyed by file name.
	Render(queries []*introspect.TypedQuery, pkg string) (map[string][]byte, error)
	Language() string
}

var generators = make(map[string]Generator)

func Register(g Generator) {
	generators[g.Language()] = g
}

func Get(language string) (Generator, error) {
	g, ok := generators[language]
	if !ok {
		return nil, fmt.Errorf("unknown language: %s", language)
	}
	return g, nil
}

func Languages() []string {
	var langs []string
	for lang := range generators {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

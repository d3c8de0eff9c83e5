// Package golang renders typed queries as Go source: a Querier interface
// over pgx, one file per query, and string-typed enum declarations.
package golang

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pgbind/pgbind/internal/codegen"
	"github.com/pgbind/pgbind/internal/introspect"
	"github.com/pgbind/pgbind/internal/pgtype"
)

func init() {
	codegen.Register(&GoGenerator{})
}

type GoGenerator struct{}

func (g *GoGenerator) Language() string {
	return "go"
}

func (g *GoGenerator) Render(queries []*introspect.TypedQuery, pkg string) (map[string][]byte, error) {
	files := make(map[string][]byte)

	files["querier.go"] = []byte(querierFile(pkg))

	if enums := collectEnums(queries); len(enums) > 0 {
		files["types.go"] = []byte(enumFile(pkg, enums))
	}

	for _, q := range queries {
		name := toSnakeCaseLower(q.Name) + ".go"
		if _, exists := files[name]; exists {
			return nil, fmt.Errorf("duplicate query file %s (query %s)", name, q.Name)
		}
		files[name] = []byte(queryFile(q, pkg))
	}

	return files, nil
}

func querierFile(pkg string) string {
	return fmt.Sprintf(`package %s

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Queries struct {
	db Querier
}

func New(db Querier) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}
`, pkg)
}

// collectEnums gathers every user enum reachable from the typed queries,
// deduplicated by name and sorted for deterministic output.
func collectEnums(queries []*introspect.TypedQuery) []pgtype.Enum {
	byName := make(map[string]pgtype.Enum)

	var visit func(ref pgtype.TypeRef)
	visit = func(ref pgtype.TypeRef) {
		switch t := ref.(type) {
		case pgtype.Enum:
			byName[t.Name] = t
		case pgtype.Array:
			visit(t.Elem)
		}
	}

	for _, q := range queries {
		for _, p := range q.Params {
			visit(p.Type)
		}
		for _, c := range q.Columns {
			visit(c.Type)
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	enums := make([]pgtype.Enum, 0, len(names))
	for _, name := range names {
		enums = append(enums, byName[name])
	}
	return enums
}

func enumFile(pkg string, enums []pgtype.Enum) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("package %s\n", pkg))

	for _, e := range enums {
		typeName := toPascalCase(e.Name)
		sb.WriteString(fmt.Sprintf("\ntype %s string\n\nconst (\n", typeName))
		for _, v := range e.Variants {
			sb.WriteString(fmt.Sprintf("\t%s%s %s = %q\n", typeName, toPascalCase(v), typeName, v))
		}
		sb.WriteString(")\n")
	}

	return sb.String()
}

// goType maps a TypeRef to its Go representation plus any required import.
// Nullable scalars and enums become pointers; byte slices, arrays, and raw
// JSON already have a usable zero state.
func goType(ref pgtype.TypeRef, nullable bool) (string, string) {
	switch t := ref.(type) {
	case pgtype.Scalar:
		return scalarGoType(t.Kind, nullable)

	case pgtype.Array:
		elem, imp := goType(t.Elem, false)
		return "[]" + elem, imp

	case pgtype.Enum:
		base := toPascalCase(t.Name)
		if nullable {
			return "*" + base, ""
		}
		return base, ""

	case pgtype.Unknown:
		return "interface{}", ""
	}
	return "interface{}", ""
}

func scalarGoType(kind pgtype.Kind, nullable bool) (string, string) {
	var base, imp string
	switch kind {
	case pgtype.Bool:
		base = "bool"
	case pgtype.Int2:
		base = "int16"
	case pgtype.Int4:
		base = "int32"
	case pgtype.Int8:
		base = "int64"
	case pgtype.Float4:
		base = "float32"
	case pgtype.Float8:
		base = "float64"
	case pgtype.Text, pgtype.Varchar, pgtype.Bpchar, pgtype.Name, pgtype.UUID, pgtype.Interval, pgtype.Numeric:
		base = "string"
	case pgtype.Bytea:
		return "[]byte", ""
	case pgtype.JSON, pgtype.JSONB:
		return "json.RawMessage", "encoding/json"
	case pgtype.Date, pgtype.Time, pgtype.Timestamp, pgtype.Timestamptz:
		base, imp = "time.Time", "time"
	case pgtype.OID:
		base = "uint32"
	default:
		return "interface{}", ""
	}

	if nullable {
		return "*" + base, imp
	}
	return base, imp
}

func toPascalCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) == 0 {
			continue
		}
		upper := strings.ToUpper(part)
		if isCommonInitialism(upper) {
			result.WriteString(upper)
		} else {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

func isCommonInitialism(s string) bool {
	initialisms := map[string]bool{
		"ID": true, "URL": true, "API": true, "HTTP": true, "HTTPS": true,
		"JSON": true, "XML": true, "UUID": true, "SQL": true, "SSH": true,
		"TCP": true, "UDP": true, "IP": true, "HTML": true, "CSS": true,
		"DNS": true, "RPC": true, "TLS": true, "SSL": true, "EOF": true,
		"ASCII": true, "CPU": true, "RAM": true, "OS": true,
	}
	return initialisms[s]
}

func toSnakeCaseLower(s string) string {
	if s == "" {
		return ""
	}

	var result strings.Builder
	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
				nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'

				if prevLower || nextLower {
					result.WriteRune('_')
				}
			}
			result.WriteRune(r + 32)
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}

package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// insertColumnCap bounds the INSERT column-list match.
const insertColumnCap = 64

// InferParamNames derives count human-readable parameter names from the SQL
// context of each $K placeholder. Rules, in order: INSERT column lists pair
// each VALUES expression with its column; a comparison `col = $K` names the
// slot after its left-hand identifier; `LIMIT $K` / `OFFSET $K` name their
// keyword; anything else falls back to param_K. Every returned name is
// non-empty; callers deduplicate with DedupeNames.
func InferParamNames(sql string, count int) []string {
	names := make([]string, count)
	inferInsertColumns(sql, names)

	for k := 1; k <= count; k++ {
		if names[k-1] != "" {
			continue
		}
		if name := inferFromContext(sql, k); name != "" {
			names[k-1] = name
			continue
		}
		names[k-1] = fmt.Sprintf("param_%d", k)
	}
	return names
}

// DedupeNames renames later duplicates to name_1, name_2, ... so the output
// list has no repeats.
func DedupeNames(names []string) []string {
	used := make(map[string]bool)
	suffix := make(map[string]int)
	out := make([]string, len(names))
	for i, name := range names {
		candidate := name
		for used[candidate] {
			suffix[name]++
			candidate = fmt.Sprintf("%s_%d", name, suffix[name])
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}

// inferInsertColumns matches `INSERT INTO table ( c1, ... ) VALUES ( e1, ... )`,
// tolerant of whitespace and comments, and assigns each column name to the
// first $K of its paired expression.
func inferInsertColumns(sql string, names []string) {
	i := skipNoise(sql, 0)
	word, i := wordAt(sql, i)
	if !strings.EqualFold(word, "INSERT") {
		return
	}
	i = skipNoise(sql, i)
	word, i = wordAt(sql, i)
	if !strings.EqualFold(word, "INTO") {
		return
	}

	i = skipTableName(sql, skipNoise(sql, i))
	if i < 0 {
		return
	}

	i = skipNoise(sql, i)
	if i >= len(sql) || sql[i] != '(' {
		return
	}
	cols, i := scanColumnList(sql, i+1)
	if cols == nil {
		return
	}

	i = skipNoise(sql, i)
	word, i = wordAt(sql, i)
	if !strings.EqualFold(word, "VALUES") {
		return
	}
	i = skipNoise(sql, i)
	if i >= len(sql) || sql[i] != '(' {
		return
	}
	i++

	assign := func(col int, slot int) {
		if col < len(cols) && slot >= 1 && slot <= len(names) && names[slot-1] == "" {
			names[slot-1] = cols[col]
		}
	}

	depth := 0
	col := 0
	slot := -1 // first $K in the current expression
	for i < len(sql) {
		if next := skipInert(sql, i); next != i {
			i = next
			continue
		}
		switch {
		case sql[i] == '(':
			depth++
			i++
		case sql[i] == ')':
			if depth == 0 {
				assign(col, slot)
				return
			}
			depth--
			i++
		case sql[i] == ',' && depth == 0:
			assign(col, slot)
			col++
			slot = -1
			i++
		case sql[i] == '$' && i+1 < len(sql) && isDigit(sql[i+1]):
			j := i + 1
			for j < len(sql) && isDigit(sql[j]) {
				j++
			}
			if slot < 0 {
				slot, _ = strconv.Atoi(sql[i+1 : j])
			}
			i = j
		default:
			i++
		}
	}
}

func scanColumnList(sql string, i int) ([]string, int) {
	var cols []string
	for {
		i = skipNoise(sql, i)
		if i >= len(sql) {
			return nil, i
		}
		var col string
		switch {
		case sql[i] == '"':
			end := skipQuoted(sql, i, '"')
			col = strings.ReplaceAll(sql[i+1:end-1], `""`, `"`)
			i = end
		case isIdentStart(sql[i]):
			col, i = scanIdent(sql, i)
		default:
			return nil, i
		}
		cols = append(cols, col)
		if len(cols) > insertColumnCap {
			return nil, i
		}

		i = skipNoise(sql, i)
		if i >= len(sql) {
			return nil, i
		}
		switch sql[i] {
		case ',':
			i++
		case ')':
			return cols, i + 1
		default:
			return nil, i
		}
	}
}

// skipTableName consumes a possibly quoted, possibly schema-qualified table
// name. It returns -1 when no name starts at i.
func skipTableName(sql string, i int) int {
	for {
		switch {
		case i < len(sql) && sql[i] == '"':
			i = skipQuoted(sql, i, '"')
		case i < len(sql) && isIdentStart(sql[i]):
			_, i = scanIdent(sql, i)
		default:
			return -1
		}
		j := skipNoise(sql, i)
		if j < len(sql) && sql[j] == '.' {
			i = skipNoise(sql, j+1)
			continue
		}
		return i
	}
}

var noiseKeywords = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "IS": true, "IN": true,
	"LIKE": true, "SET": true, "WHERE": true, "HAVING": true, "ON": true,
	"THEN": true, "WHEN": true, "ELSE": true, "NULL": true,
}

// inferFromContext walks backward from $K over an optional comparison
// operator to the preceding identifier, or maps a preceding LIMIT/OFFSET
// keyword. Returns "" when nothing usable precedes the placeholder.
func inferFromContext(sql string, k int) string {
	pos := findPlaceholder(sql, k)
	if pos < 0 {
		return ""
	}

	i := pos - 1
	for i >= 0 && isSpace(sql[i]) {
		i--
	}
	if i < 0 {
		return ""
	}

	opLen := 0
	if i >= 1 {
		switch sql[i-1 : i+1] {
		case "!=", "<>", "<=", ">=":
			opLen = 2
		}
	}
	if opLen == 0 {
		switch sql[i] {
		case '=', '<', '>':
			opLen = 1
		}
	}

	if opLen > 0 {
		i -= opLen
		for i >= 0 && isSpace(sql[i]) {
			i--
		}
		ident := identBefore(sql, i)
		if ident == "" || noiseKeywords[strings.ToUpper(ident)] {
			return ""
		}
		return ident
	}

	switch strings.ToUpper(identBefore(sql, i)) {
	case "LIMIT":
		return "limit"
	case "OFFSET":
		return "offset"
	}
	return ""
}

// identBefore returns the identifier ending at index i, or "".
func identBefore(sql string, i int) string {
	end := i + 1
	for i >= 0 && isIdentPart(sql[i]) {
		i--
	}
	ident := sql[i+1 : end]
	if ident == "" || !isIdentStart(ident[0]) {
		return ""
	}
	return ident
}

// findPlaceholder locates the $K token outside inert regions, matching the
// number exactly.
func findPlaceholder(sql string, k int) int {
	target := "$" + strconv.Itoa(k)
	i := 0
	for i < len(sql) {
		if next := skipInert(sql, i); next != i {
			i = next
			continue
		}
		if sql[i] == '$' && i+1 < len(sql) && isDigit(sql[i+1]) {
			j := i + 1
			for j < len(sql) && isDigit(sql[j]) {
				j++
			}
			if sql[i:j] == target {
				return i
			}
			i = j
			continue
		}
		i++
	}
	return -1
}

// skipNoise advances over whitespace and comments.
func skipNoise(sql string, i int) int {
	for i < len(sql) {
		if isSpace(sql[i]) {
			i++
			continue
		}
		if sql[i] == '-' || sql[i] == '/' {
			if next := skipInert(sql, i); next != i {
				i = next
				continue
			}
		}
		return i
	}
	return i
}

// wordAt returns the identifier starting at i, or "".
func wordAt(sql string, i int) (string, int) {
	if i < len(sql) && isIdentStart(sql[i]) {
		return scanIdent(sql, i)
	}
	return "", i
}

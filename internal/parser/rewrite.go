package parser

import (
	"strconv"
	"strings"
)

// RewriteResult is the outcome of rewriting @name parameters to $N slots.
// Names holds the source name of each newly assigned slot in slot order;
// Positional is the highest $K already present in the input. When the input
// contains no @name, Changed is false and SQL is the input untouched.
type RewriteResult struct {
	SQL        string
	Names      []string
	Positional int
	Changed    bool
}

// RewriteNamedParams substitutes every @name outside strings, comments, and
// quoted identifiers with a $N placeholder. New slots are numbered above the
// highest preexisting $K, so they can never collide; repeated names reuse
// their slot. The rewrite is idempotent: its output contains no @name.
func RewriteNamedParams(sql string) RewriteResult {
	positional, hasNamed := prescan(sql)
	if !hasNamed {
		return RewriteResult{SQL: sql, Positional: positional}
	}

	var out strings.Builder
	out.Grow(len(sql))
	slots := make(map[string]int)
	var names []string

	i := 0
	for i < len(sql) {
		if next := skipInert(sql, i); next != i {
			out.WriteString(sql[i:next])
			i = next
			continue
		}
		if sql[i] == '@' && i+1 < len(sql) && isIdentStart(sql[i+1]) {
			name, next := scanIdent(sql, i+1)
			slot, ok := slots[name]
			if !ok {
				names = append(names, name)
				slot = positional + len(names)
				slots[name] = slot
			}
			out.WriteByte('$')
			out.WriteString(strconv.Itoa(slot))
			i = next
			continue
		}
		out.WriteByte(sql[i])
		i++
	}

	return RewriteResult{
		SQL:        out.String(),
		Names:      names,
		Positional: positional,
		Changed:    true,
	}
}

// prescan walks the input once, computing the highest preexisting $K and
// whether any @name candidate occurs.
func prescan(sql string) (positional int, hasNamed bool) {
	i := 0
	for i < len(sql) {
		if next := skipInert(sql, i); next != i {
			i = next
			continue
		}
		switch {
		case sql[i] == '$' && i+1 < len(sql) && isDigit(sql[i+1]):
			j := i + 1
			for j < len(sql) && isDigit(sql[j]) {
				j++
			}
			if k, err := strconv.Atoi(sql[i+1 : j]); err == nil && k > positional {
				positional = k
			}
			i = j
		case sql[i] == '@' && i+1 < len(sql) && isIdentStart(sql[i+1]):
			hasNamed = true
			_, i = scanIdent(sql, i+1)
		default:
			i++
		}
	}
	return positional, hasNamed
}

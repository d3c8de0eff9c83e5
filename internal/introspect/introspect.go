// Package introspect drives the Parse/Describe/Sync exchange for every
// annotated query and reconciles the server's answer with the local type and
// nullability caches, producing TypedQuery records for code emission.
package introspect

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pgbind/pgbind/internal/parser"
	"github.com/pgbind/pgbind/internal/pgconn"
	"github.com/pgbind/pgbind/internal/pgtype"
	"github.com/pgbind/pgbind/internal/wire"
)

// ErrQueryIntrospectionFailed reports that the server rejected a query's
// Parse/Describe. The server is authoritative: this is a fault in the source
// SQL, surfaced to the user, never retried.
var ErrQueryIntrospectionFailed = errors.New("introspect: query introspection failed")

type attrKey struct {
	table uint32
	attr  uint16
}

// Introspector owns one connection plus the per-run caches. It is
// deliberately sequential: every query shares the connection and mutates the
// same type cache.
type Introspector struct {
	conn    *pgconn.Conn
	catalog *pgtype.Catalog
	notNull map[attrKey]bool

	// Warnf receives non-fatal diagnostics; defaults to stderr.
	Warnf func(format string, args ...any)
}

func New(conn *pgconn.Conn) *Introspector {
	return &Introspector{
		conn:    conn,
		catalog: pgtype.NewCatalog(),
		notNull: make(map[attrKey]bool),
		Warnf: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
		},
	}
}

// DescribeQueries types every query from the parsed files, in order. A
// single failure aborts the run; there is no partial output.
func DescribeQueries(conn *pgconn.Conn, files []*parser.QueryFile) ([]*TypedQuery, error) {
	in := New(conn)
	var typed []*TypedQuery
	for _, q := range parser.AllQueries(files) {
		tq, err := in.DescribeQuery(q)
		if err != nil {
			return nil, err
		}
		typed = append(typed, tq)
	}
	return typed, nil
}

// DescribeQuery types one query: rewrite named parameters, quote alias
// hints, run Parse/Describe/Sync, then resolve every OID and column.
func (in *Introspector) DescribeQuery(q parser.Query) (*TypedQuery, error) {
	rw := parser.RewriteNamedParams(q.SQL)
	wireSQL := parser.QuoteAliasHints(rw.SQL)

	msgs, err := in.conn.DescribeStatement(wireSQL)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Name, err)
	}

	var paramOIDs []uint32
	var fields []wire.RowField
	haveParams := false
	noData := false
	for _, msg := range msgs {
		switch m := msg.(type) {
		case wire.ParameterDescription:
			paramOIDs = m.OIDs
			haveParams = true
		case wire.RowDescription:
			fields = m.Fields
		case wire.NoData:
			noData = true
		case wire.ErrorResponse:
			return nil, fmt.Errorf("query %s: %s: %w", q.Name, m.Fields['M'], ErrQueryIntrospectionFailed)
		}
	}
	if !haveParams {
		return nil, fmt.Errorf("query %s: server sent no parameter description: %w", q.Name, ErrQueryIntrospectionFailed)
	}

	names := paramNames(q.SQL, rw, len(paramOIDs))

	params := make([]Param, len(paramOIDs))
	for i, oid := range paramOIDs {
		ref, err := in.resolveType(oid)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", q.Name, err)
		}
		params[i] = Param{Index: uint16(i), Name: names[i], Type: ref}
	}

	columns := make([]Column, 0, len(fields))
	for _, f := range fields {
		col, err := in.resolveColumn(f)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", q.Name, err)
		}
		columns = append(columns, col)
	}

	kind := q.Kind
	if kind == "" {
		if len(columns) == 0 {
			kind = parser.KindExec
		} else {
			kind = parser.KindMany
		}
	}
	switch {
	case kind == parser.KindExecRows && len(columns) > 0:
		in.Warnf("query %s: kind execrows ignores its %d result columns", q.Name, len(columns))
	case kind == parser.KindExec && len(columns) > 0:
		in.Warnf("query %s: kind exec ignores its %d result columns", q.Name, len(columns))
	case (kind == parser.KindOne || kind == parser.KindMany) && noData:
		return nil, fmt.Errorf("query %s: kind %s but the statement returns no columns: %w", q.Name, kind, ErrQueryIntrospectionFailed)
	}

	return &TypedQuery{
		Name:       q.Name,
		SourceFile: q.SourceFile,
		SQL:        rw.SQL,
		Comment:    q.Comment,
		Kind:       kind,
		Params:     params,
		Columns:    columns,
	}, nil
}

// paramNames merges inferred and recorded names. When a named rewrite
// occurred, the first Positional slots are inferred from the original SQL
// and the remainder come from the recorded @name order; otherwise every name
// is inferred. The server's parameter count is authoritative.
func paramNames(original string, rw parser.RewriteResult, count int) []string {
	var names []string
	if rw.Changed {
		names = append(parser.InferParamNames(original, rw.Positional), rw.Names...)
	} else {
		names = parser.InferParamNames(original, count)
	}
	for len(names) < count {
		names = append(names, fmt.Sprintf("param_%d", len(names)+1))
	}
	return parser.DedupeNames(names[:count])
}

// resolveColumn decides nullability and resolves the column type. A trailing
// ! or ? on the name is a user override; otherwise catalog-backed columns
// consult pg_attribute and computed expressions stay nullable.
func (in *Introspector) resolveColumn(f wire.RowField) (Column, error) {
	name := f.Name
	nullable := true
	switch {
	case strings.HasSuffix(name, "!"):
		name = strings.TrimSuffix(name, "!")
		nullable = false
	case strings.HasSuffix(name, "?"):
		name = strings.TrimSuffix(name, "?")
	case f.TableOID != 0 && f.ColumnAttr > 0:
		notNull, err := in.columnNotNull(f.TableOID, f.ColumnAttr)
		if err != nil {
			return Column{}, err
		}
		nullable = !notNull
	}

	ref, err := in.resolveType(f.TypeOID)
	if err != nil {
		return Column{}, err
	}

	return Column{
		Name:       name,
		Type:       ref,
		Nullable:   nullable,
		TableOID:   f.TableOID,
		ColumnAttr: f.ColumnAttr,
	}, nil
}

// resolveType looks an OID up in the cache, falling back to a pg_enum
// lookup and finally to Unknown. Both outcomes are cached for the run.
func (in *Introspector) resolveType(oid uint32) (pgtype.TypeRef, error) {
	if ref, ok := in.catalog.Lookup(oid); ok {
		return ref, nil
	}

	rows, err := in.catalogRows(fmt.Sprintf(
		"SELECT t.typname, e.enumlabel FROM pg_type t JOIN pg_enum e ON e.enumtypid = t.oid WHERE t.oid = %d ORDER BY e.enumsortorder", oid))
	if err != nil {
		return nil, err
	}

	var ref pgtype.TypeRef
	if len(rows) == 0 {
		ref = pgtype.Unknown{OID: oid}
	} else {
		enum := pgtype.Enum{Name: rows[0][0]}
		for _, row := range rows {
			enum.Variants = append(enum.Variants, row[1])
		}
		ref = enum
	}
	in.catalog.Insert(oid, ref)
	return ref, nil
}

// columnNotNull memoizes pg_attribute.attnotnull per (table, attribute).
func (in *Introspector) columnNotNull(table uint32, attr uint16) (bool, error) {
	key := attrKey{table: table, attr: attr}
	if v, ok := in.notNull[key]; ok {
		return v, nil
	}

	rows, err := in.catalogRows(fmt.Sprintf(
		"SELECT attnotnull FROM pg_attribute WHERE attrelid = %d AND attnum = %d", table, attr))
	if err != nil {
		return false, err
	}

	notNull := len(rows) > 0 && rows[0][0] == "t"
	in.notNull[key] = notNull
	return notNull, nil
}

// catalogRows runs a simple-protocol query against the system catalog and
// returns its rows as text. Issued only between introspection exchanges, so
// it never interleaves with a pending Parse/Describe/Sync.
func (in *Introspector) catalogRows(sql string) ([][]string, error) {
	msgs, err := in.conn.Query(sql)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for _, msg := range msgs {
		switch m := msg.(type) {
		case wire.DataRow:
			row := make([]string, len(m.Values))
			for i, v := range m.Values {
				if v != nil {
					row[i] = string(v)
				}
			}
			rows = append(rows, row)
		case wire.ErrorResponse:
			return nil, fmt.Errorf("catalog query failed: %s", m.Fields['M'])
		}
	}
	return rows, nil
}

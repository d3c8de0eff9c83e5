package introspect

import (
	"github.com/pgbind/pgbind/internal/parser"
	"github.com/pgbind/pgbind/internal/pgtype"
)

// TypedQuery is the canonical artifact handed to code emission: one source
// query with server-verified parameter and column types. SQL is the
// post-rewrite form with alias hints left bare; the copy sent to the server
// and the SQL constant the Go emitter renders both have the hints quoted.
type TypedQuery struct {
	Name       string
	SourceFile string
	SQL        string
	Comment    string
	Kind       parser.Kind
	Params     []Param
	Columns    []Column
}

// Param is one $N slot. Indices are dense 0..N-1 and names are unique
// within a query.
type Param struct {
	Index uint16
	Name  string
	Type  pgtype.TypeRef
}

// Column is one result column with its catalog origin. Name has any
// trailing nullability hint stripped.
type Column struct {
	Name       string
	Type       pgtype.TypeRef
	Nullable   bool
	TableOID   uint32
	ColumnAttr uint16
}

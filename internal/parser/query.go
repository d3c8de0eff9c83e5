package parser

// Kind is the return-shape annotation on a query: exactly one row, zero or
// more rows, no result, or the affected-row count.
type Kind string

const (
	KindOne      Kind = "one"
	KindMany     Kind = "many"
	KindExec     Kind = "exec"
	KindExecRows Kind = "execrows"
)

// Query is one annotated statement as read from a source file, before any
// rewriting or introspection.
type Query struct {
	Name       string
	SQL        string
	Comment    string
	Kind       Kind // empty when the annotation omits it
	SourceFile string
	LineNumber int
}

// QueryFile groups the queries parsed from one .sql file.
type QueryFile struct {
	Path    string
	Queries []Query
}

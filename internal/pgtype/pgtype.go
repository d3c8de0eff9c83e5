// Package pgtype maps PostgreSQL type OIDs to language-neutral type
// descriptors. The catalog is preloaded with the built-in scalar and array
// types; user enums are inserted as they are resolved against pg_enum.
package pgtype

import "fmt"

// Kind enumerates the closed set of built-in scalars this generator knows.
type Kind int

const (
	Bool Kind = iota
	Int2
	Int4
	Int8
	Float4
	Float8
	Text
	Varchar
	Bpchar
	Name
	Bytea
	UUID
	JSON
	JSONB
	Date
	Time
	Timestamp
	Timestamptz
	Interval
	Numeric
	OID
)

var kindNames = map[Kind]string{
	Bool:        "bool",
	Int2:        "int2",
	Int4:        "int4",
	Int8:        "int8",
	Float4:      "float4",
	Float8:      "float8",
	Text:        "text",
	Varchar:     "varchar",
	Bpchar:      "bpchar",
	Name:        "name",
	Bytea:       "bytea",
	UUID:        "uuid",
	JSON:        "json",
	JSONB:       "jsonb",
	Date:        "date",
	Time:        "time",
	Timestamp:   "timestamp",
	Timestamptz: "timestamptz",
	Interval:    "interval",
	Numeric:     "numeric",
	OID:         "oid",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// TypeRef is the tagged descriptor handed to code emission: a built-in
// scalar, an array of another TypeRef, a user enum, or an OID the run could
// not resolve.
type TypeRef interface {
	typeRef()
	String() string
}

type Scalar struct {
	Kind Kind
}

type Array struct {
	Elem TypeRef
}

type Enum struct {
	Name     string
	Variants []string
}

type Unknown struct {
	OID uint32
}

func (Scalar) typeRef()  {}
func (Array) typeRef()   {}
func (Enum) typeRef()    {}
func (Unknown) typeRef() {}

func (s Scalar) String() string  { return s.Kind.String() }
func (a Array) String() string   { return a.Elem.String() + "[]" }
func (e Enum) String() string    { return e.Name }
func (u Unknown) String() string { return fmt.Sprintf("unknown(%d)", u.OID) }

// Catalog maps OIDs to TypeRefs. Lookups never mutate; Insert records enum
// (or unknown) resolutions so later queries in the run reuse them.
type Catalog struct {
	types map[uint32]TypeRef
}

var builtins = map[uint32]Kind{
	BoolOID:        Bool,
	Int2OID:        Int2,
	Int4OID:        Int4,
	Int8OID:        Int8,
	Float4OID:      Float4,
	Float8OID:      Float8,
	TextOID:        Text,
	VarcharOID:     Varchar,
	BpcharOID:      Bpchar,
	NameOID:        Name,
	ByteaOID:       Bytea,
	UUIDOID:        UUID,
	JSONOID:        JSON,
	JSONBOID:       JSONB,
	DateOID:        Date,
	TimeOID:        Time,
	TimestampOID:   Timestamp,
	TimestamptzOID: Timestamptz,
	IntervalOID:    Interval,
	NumericOID:     Numeric,
	OIDOID:         OID,
}

var builtinArrays = map[uint32]uint32{
	BoolArrayOID:        BoolOID,
	ByteaArrayOID:       ByteaOID,
	NameArrayOID:        NameOID,
	Int2ArrayOID:        Int2OID,
	Int4ArrayOID:        Int4OID,
	Int8ArrayOID:        Int8OID,
	TextArrayOID:        TextOID,
	BpcharArrayOID:      BpcharOID,
	VarcharArrayOID:     VarcharOID,
	Float4ArrayOID:      Float4OID,
	Float8ArrayOID:      Float8OID,
	OIDArrayOID:         OIDOID,
	DateArrayOID:        DateOID,
	TimeArrayOID:        TimeOID,
	TimestampArrayOID:   TimestampOID,
	TimestamptzArrayOID: TimestamptzOID,
	IntervalArrayOID:    IntervalOID,
	NumericArrayOID:     NumericOID,
	UUIDArrayOID:        UUIDOID,
	JSONArrayOID:        JSONOID,
	JSONBArrayOID:       JSONBOID,
}

// NewCatalog returns a catalog preloaded with every built-in scalar and its
// array type.
func NewCatalog() *Catalog {
	types := make(map[uint32]TypeRef, len(builtins)+len(builtinArrays))
	for oid, kind := range builtins {
		types[oid] = Scalar{Kind: kind}
	}
	for oid, elem := range builtinArrays {
		types[oid] = Array{Elem: Scalar{Kind: builtins[elem]}}
	}
	return &Catalog{types: types}
}

func (c *Catalog) Lookup(oid uint32) (TypeRef, bool) {
	ref, ok := c.types[oid]
	return ref, ok
}

func (c *Catalog) Insert(oid uint32, ref TypeRef) {
	c.types[oid] = ref
}

package pgtype

import "testing"

func TestCatalog_Builtins(t *testing.T) {
	c := NewCatalog()

	tests := []struct {
		oid  uint32
		want Kind
	}{
		{BoolOID, Bool},
		{Int2OID, Int2},
		{Int4OID, Int4},
		{Int8OID, Int8},
		{Float4OID, Float4},
		{Float8OID, Float8},
		{TextOID, Text},
		{VarcharOID, Varchar},
		{BpcharOID, Bpchar},
		{NameOID, Name},
		{ByteaOID, Bytea},
		{UUIDOID, UUID},
		{JSONOID, JSON},
		{JSONBOID, JSONB},
		{DateOID, Date},
		{TimeOID, Time},
		{TimestampOID, Timestamp},
		{TimestamptzOID, Timestamptz},
		{IntervalOID, Interval},
		{NumericOID, Numeric},
		{OIDOID, OID},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			ref, ok := c.Lookup(tt.oid)
			if !ok {
				t.Fatalf("Lookup(%d) missing", tt.oid)
			}
			scalar, ok := ref.(Scalar)
			if !ok {
				t.Fatalf("Lookup(%d) = %T, want Scalar", tt.oid, ref)
			}
			if scalar.Kind != tt.want {
				t.Errorf("Lookup(%d) kind = %v, want %v", tt.oid, scalar.Kind, tt.want)
			}
		})
	}
}

func TestCatalog_Arrays(t *testing.T) {
	c := NewCatalog()

	ref, ok := c.Lookup(Int4ArrayOID)
	if !ok {
		t.Fatal("Lookup(int4[]) missing")
	}
	arr, ok := ref.(Array)
	if !ok {
		t.Fatalf("Lookup(int4[]) = %T, want Array", ref)
	}
	elem, ok := arr.Elem.(Scalar)
	if !ok || elem.Kind != Int4 {
		t.Errorf("array element = %v, want int4 scalar", arr.Elem)
	}
	if got := arr.String(); got != "int4[]" {
		t.Errorf("String() = %q, want %q", got, "int4[]")
	}
}

func TestCatalog_UnknownOIDMisses(t *testing.T) {
	c := NewCatalog()
	if _, ok := c.Lookup(99999); ok {
		t.Error("Lookup(99999) should miss")
	}
}

func TestCatalog_InsertEnum(t *testing.T) {
	c := NewCatalog()
	enum := Enum{Name: "mood", Variants: []string{"sad", "ok", "happy"}}
	c.Insert(17001, enum)

	ref, ok := c.Lookup(17001)
	if !ok {
		t.Fatal("Lookup after Insert missing")
	}
	got, ok := ref.(Enum)
	if !ok {
		t.Fatalf("Lookup = %T, want Enum", ref)
	}
	if got.Name != "mood" || len(got.Variants) != 3 {
		t.Errorf("enum = %+v", got)
	}
}

func TestTypeRefString(t *testing.T) {
	tests := []struct {
		ref  TypeRef
		want string
	}{
		{Scalar{Kind: Timestamptz}, "timestamptz"},
		{Array{Elem: Scalar{Kind: Text}}, "text[]"},
		{Enum{Name: "post_status"}, "post_status"},
		{Unknown{OID: 424242}, "unknown(424242)"},
	}

	for _, tt := range tests {
		if got := tt.ref.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

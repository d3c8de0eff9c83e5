package pgtype

// Built-in type OIDs from the PostgreSQL system catalog (pg_type.h).
const (
	BoolOID        uint32 = 16
	ByteaOID       uint32 = 17
	NameOID        uint32 = 19
	Int8OID        uint32 = 20
	Int2OID        uint32 = 21
	Int4OID        uint32 = 23
	TextOID        uint32 = 25
	OIDOID         uint32 = 26
	JSONOID        uint32 = 114
	Float4OID      uint32 = 700
	Float8OID      uint32 = 701
	BpcharOID      uint32 = 1042
	VarcharOID     uint32 = 1043
	DateOID        uint32 = 1082
	TimeOID        uint32 = 1083
	TimestampOID   uint32 = 1114
	TimestamptzOID uint32 = 1184
	IntervalOID    uint32 = 1186
	NumericOID     uint32 = 1700
	UUIDOID        uint32 = 2950
	JSONBOID       uint32 = 3802
)

// Array type OIDs for the built-in scalars above.
const (
	BoolArrayOID        uint32 = 1000
	ByteaArrayOID       uint32 = 1001
	NameArrayOID        uint32 = 1003
	Int2ArrayOID        uint32 = 1005
	Int4ArrayOID        uint32 = 1007
	TextArrayOID        uint32 = 1009
	BpcharArrayOID      uint32 = 1014
	VarcharArrayOID     uint32 = 1015
	Int8ArrayOID        uint32 = 1016
	Float4ArrayOID      uint32 = 1021
	Float8ArrayOID      uint32 = 1022
	OIDArrayOID         uint32 = 1028
	DateArrayOID        uint32 = 1182
	TimeArrayOID        uint32 = 1183
	TimestampArrayOID   uint32 = 1115
	TimestamptzArrayOID uint32 = 1185
	IntervalArrayOID    uint32 = 1187
	NumericArrayOID     uint32 = 1231
	UUIDArrayOID        uint32 = 2951
	JSONArrayOID        uint32 = 199
	JSONBArrayOID       uint32 = 3807
)

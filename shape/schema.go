package shape

type FieldType int

const (
	String FieldType = iota
	Integer
	Float
	Timestamp
)

func (t FieldType) String() string {
	switch t {
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Timestamp:
		return "timestamp"
	}
	return "string"
}

type Field struct {
	Name string
	Type FieldType
	// Required fields must not be empty.
	Required bool
}

// Schema lists the fields of each row kind in column order.
var Schema = map[RowKind][]Field{
	NodeRows: {
		{"id", Integer, true},
		{"lat", Float, true},
		{"lon", Float, true},
		{"user", String, false},
		{"uid", Integer, true},
		{"version", String, false},
		{"changeset", Integer, true},
		{"timestamp", Timestamp, false},
	},
	NodeTagRows: tagFields,
	WayRows: {
		{"id", Integer, true},
		{"user", String, false},
		{"uid", Integer, true},
		{"version", String, false},
		{"changeset", Integer, true},
		{"timestamp", Timestamp, false},
	},
	WayNodeRows: {
		{"id", Integer, true},
		{"node_id", Integer, true},
		{"position", Integer, true},
	},
	WayTagRows: tagFields,
}

var tagFields = []Field{
	{"id", Integer, true},
	{"key", String, true},
	{"value", String, false},
	{"type", String, true},
}

package schema

// Dialect selects the SQL backend the DDL is generated for.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	MariaDB  Dialect = "mariadb"
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
	H2       Dialect = "h2"
)

// Valid reports whether d is a known dialect.
func (d Dialect) Valid() bool {
	switch d {
	case MySQL, MariaDB, Postgres, SQLite, H2:
		return true
	}
	return false
}

// ColType is the logical column type in the canonical schema. The
// translator maps it to a concrete SQL type per dialect.
type ColType int

const (
	TypeID ColType = iota // auto-increment primary key
	TypeString
	TypeText
	TypeBool
	TypeInt
	TypeBigInt
	TypeFloat
	TypeTimestamp
	TypeJSON
)

// Column is one canonical column definition. PrimaryKey marks a natural
// (non-generated) primary key; TypeID columns are implicitly primary.
type Column struct {
	Name       string
	Type       ColType
	Size       int // for TypeString
	NotNull    bool
	Default    string // raw SQL literal, empty for none
	PrimaryKey bool
}

// Index is one canonical secondary index or unique key.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// Table is one canonical table definition. Column and index order is
// significant: translation is a pure function of this structure.
type Table struct {
	Name    string
	Columns []Column
	Indexes []Index
}

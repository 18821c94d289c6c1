package models

const (
	KeyRoleNone    = "none"
	KeyRolePrimary = "primary"
)

// ColumnDescriptor is one column of a table, parsed from a DESCRIBE row and
// enriched with outgoing foreign key information.
type ColumnDescriptor struct {
	Name             string  `json:"name"`
	DeclaredType     string  `json:"declaredType"`
	Nullable         bool    `json:"nullable"`
	DefaultValue     *string `json:"defaultValue"`
	IsAutoIncrement  bool    `json:"isAutoIncrement"`
	KeyRole          string  `json:"keyRole"`
	Key              string  `json:"key"`
	Extra            string  `json:"extra"`
	IsForeignKey     bool    `json:"isForeignKey"`
	ReferencedTable  string  `json:"referencedTable,omitempty"`
	ReferencedColumn string  `json:"referencedColumn,omitempty"`
}

// ForeignKey is an outgoing reference from a column of the inspected table.
type ForeignKey struct {
	Column           string `json:"column"`
	ReferencedTable  string `json:"referencedTable"`
	ReferencedColumn string `json:"referencedColumn"`
}

// ReferencingColumn is one column of another table pointing at the inspected table.
type ReferencingColumn struct {
	Column           string `json:"column"`
	ReferencedColumn string `json:"referencedColumn"`
}

// ReferencingConstraint is a foreign key of another table that blocks a
// primary key update or a delete.
type ReferencingConstraint struct {
	ReferencingTable  string `json:"referencingTable"`
	ReferencingColumn string `json:"referencingColumn"`
	ReferencedTable   string `json:"referencedTable"`
	ReferencedColumn  string `json:"referencedColumn"`
}

// TableSchema is the enriched description of a table. Only the first primary
// key column is surfaced; composite keys are not modeled.
type TableSchema struct {
	Name              string                         `json:"-"`
	Columns           []ColumnDescriptor             `json:"columns"`
	PrimaryKey        *string                        `json:"primaryKey"`
	ReferencingTables map[string][]ReferencingColumn `json:"referencingTables"`
}

// HasColumn reports whether name is a column of the table.
func (t *TableSchema) HasColumn(name string) bool {
	for _, col := range t.Columns {
		if col.Name == name {
			return true
		}
	}
	return false
}

// PrimaryKeyColumn returns the primary key column name, or "" when the table has none.
func (t *TableSchema) PrimaryKeyColumn() string {
	if t.PrimaryKey == nil {
		return ""
	}
	return *t.PrimaryKey
}

// ColumnSpec is one column of the table builder form, consumed by the DDL builder.
type ColumnSpec struct {
	Name             string `json:"name"`
	Type             string `json:"type"`
	PrimaryKey       bool   `json:"primaryKey"`
	AutoIncrement    bool   `json:"autoIncrement"`
	NotNull          bool   `json:"notNull"`
	ForeignKey       bool   `json:"foreignKey"`
	ReferencedTable  string `json:"referencedTable"`
	ReferencedColumn string `json:"referencedColumn"`
}

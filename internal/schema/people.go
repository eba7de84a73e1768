// Package schema describes the PostgreSQL table the postgres source reads.
package schema

import (
	"strings"

	"github.com/jackc/pgx/v5"
)

// ColumnType is the PostgreSQL type of a people column.
type ColumnType string

const (
	TypeInt   ColumnType = "INTEGER"
	TypeText  ColumnType = "TEXT"
	TypeFloat ColumnType = "DOUBLE PRECISION"
)

// Column is one column of the people table.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// PeopleColumns lists the table columns in scan order.
var PeopleColumns = []Column{
	{Name: "id", Type: TypeInt},
	{Name: "first_name", Type: TypeText},
	{Name: "last_name", Type: TypeText},
	{Name: "maiden_name", Type: TypeText, Nullable: true},
	{Name: "age", Type: TypeInt},
	{Name: "gender", Type: TypeText},
	{Name: "phone", Type: TypeText},
	{Name: "email", Type: TypeText},
	{Name: "country", Type: TypeText},
	{Name: "city", Type: TypeText},
	{Name: "street", Type: TypeText, Nullable: true},
	{Name: "height", Type: TypeFloat, Nullable: true},
	{Name: "weight", Type: TypeFloat, Nullable: true},
	{Name: "image", Type: TypeText, Nullable: true},
}

// ColumnNames returns the column names in scan order.
func ColumnNames() []string {
	names := make([]string, len(PeopleColumns))
	for i, c := range PeopleColumns {
		names[i] = c.Name
	}
	return names
}

// SelectList returns the comma separated column list.
func SelectList() string {
	return strings.Join(ColumnNames(), ", ")
}

// CreateTableSQL returns idempotent DDL for table.
func CreateTableSQL(table string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(pgx.Identifier{table}.Sanitize())
	b.WriteString(" (\n")
	for i, c := range PeopleColumns {
		b.WriteString("\t")
		b.WriteString(c.Name)
		b.WriteString(" ")
		b.WriteString(string(c.Type))
		switch {
		case c.Name == "id":
			b.WriteString(" PRIMARY KEY")
		case !c.Nullable:
			b.WriteString(" NOT NULL")
		}
		if i < len(PeopleColumns)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")
	return b.String()
}

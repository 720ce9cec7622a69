package database

import (
	"strings"

	"github.com/jackc/pgx/v5"
)

// Result is a fully read statement result.
type Result struct {
	Command      string   // Command tag verb, e.g. "INSERT", "SELECT"
	RowsAffected int64    // Rows affected or returned
	Columns      []string // Column names, empty for statements without a row description
	Rows         [][]any  // Decoded row values in column order
}

// collect drains rows into a Result and closes them.
func collect(rows pgx.Rows) (*Result, error) {
	defer rows.Close()

	res := &Result{}
	for _, fd := range rows.FieldDescriptions() {
		res.Columns = append(res.Columns, fd.Name)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		res.Rows = append(res.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// CommandTag is only complete after the rows are closed.
	rows.Close()
	tag := rows.CommandTag()
	res.Command = commandVerb(tag.String())
	res.RowsAffected = tag.RowsAffected()

	return res, nil
}

func commandVerb(tag string) string {
	verb, _, _ := strings.Cut(tag, " ")
	return verb
}

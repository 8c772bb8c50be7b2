package store

import (
	"database/sql"

	"showrunner/internal/engines"
)

func engineFromNull(value sql.NullString) engines.Engine {
	if !value.Valid {
		return ""
	}
	return engines.Engine(value.String)
}

func modeFromNull(value sql.NullString) engines.Mode {
	if !value.Valid {
		return ""
	}
	return engines.Mode(value.String)
}

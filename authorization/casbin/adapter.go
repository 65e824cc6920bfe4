package casbin

import (
	"database/sql"
	"fmt"

	sqladapter "github.com/Blank-Xu/sql-adapter"
)

const policyTableName = "casbin_rule"

// NewSQLiteAdapter stores policies in the casbin_rule table of db, creating it when missing.
func NewSQLiteAdapter(sqlDB *sql.DB) (*sqladapter.Adapter, error) {
	adapter, err := sqladapter.NewAdapter(sqlDB, "sqlite3", policyTableName)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin sql adapter: %w", err)
	}

	return adapter, nil
}

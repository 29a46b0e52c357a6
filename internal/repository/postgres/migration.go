package postgres

import (
	"database/sql"
	"fmt"
	"os"
)

// RunMigrations executes the schema.sql file to initialize the database.
// A few locations are checked so this works regardless of where the binary
// is launched from.
func RunMigrations(db *sql.DB) error {
	possiblePaths := []string{
		"script/migration/schema.sql",       // from repo root (go run ./cmd/api)
		"../script/migration/schema.sql",    // from cmd
		"../../script/migration/schema.sql", // from cmd/api
	}

	schemaPath := possiblePaths[0]
	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			schemaPath = path
			break
		}
	}

	content, err := os.ReadFile(schemaPath)
	if err != nil {
		wd, _ := os.Getwd()
		return fmt.Errorf("failed to read migration file %s (wd: %s): %v", schemaPath, wd, err)
	}

	if _, err := db.Exec(string(content)); err != nil {
		return fmt.Errorf("failed to execute schema.sql: %v", err)
	}

	return nil
}

package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_case_documents",
		SQL: `CREATE TABLE IF NOT EXISTS case_documents (
  tenant_id       TEXT        NOT NULL,
  case_id         TEXT        NOT NULL,
  document_name   TEXT        NOT NULL,
  checklist_id    TEXT        NOT NULL DEFAULT '',
  storage_key     TEXT        NOT NULL,
  metadata_key    TEXT        NOT NULL DEFAULT '',
  status          TEXT        NOT NULL,
  outcome         TEXT,
  tamper_status   TEXT,
  clean_fields    JSONB,
  verification    JSONB,
  artifact_key    TEXT,
  needs_reconcile BOOLEAN     NOT NULL DEFAULT FALSE,
  verified        BOOLEAN     NOT NULL DEFAULT FALSE,
  report_key      TEXT,
  uploaded_at     TIMESTAMPTZ NOT NULL,
  updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (tenant_id, case_id, document_name)
);`,
	},
	{
		Name: "create_index_case_documents_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_case_documents_status ON case_documents (status);`,
	},
	{
		Name: "create_index_case_documents_case",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_case_documents_case ON case_documents (tenant_id, case_id);`,
	},
	{
		Name: "create_table_borrower_references",
		SQL: `CREATE TABLE IF NOT EXISTS borrower_references (
  tenant_id      TEXT NOT NULL,
  case_id        TEXT NOT NULL,
  first_name     TEXT,
  middle_name    TEXT,
  last_name      TEXT,
  date_of_birth  TEXT,
  place_of_birth TEXT,
  license_number TEXT,
  license_state  TEXT,
  PRIMARY KEY (tenant_id, case_id)
);`,
	},
}

// EnsureMigrated checks if the 'case_documents' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.case_documents') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}

package warehouse

import (
	"context"
	_ "embed"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// dropSQL removes every warehouse object, children first. Used by
// `init --drop` and by tests that want a pristine database.
const dropSQL = `
DROP TABLE IF EXISTS admission_lab_results CASCADE;
DROP TABLE IF EXISTS admission_primary_diagnoses CASCADE;
DROP TABLE IF EXISTS admissions CASCADE;
DROP TABLE IF EXISTS patients CASCADE;
DROP TABLE IF EXISTS lab_tests CASCADE;
DROP TABLE IF EXISTS diagnosis_codes CASCADE;
DROP TABLE IF EXISTS lab_units CASCADE;
DROP TABLE IF EXISTS languages CASCADE;
DROP TABLE IF EXISTS marital_statuses CASCADE;
DROP TABLE IF EXISTS races CASCADE;
DROP TABLE IF EXISTS genders CASCADE;
DROP TABLE IF EXISTS stage_labs CASCADE;
DROP TABLE IF EXISTS stage_diagnoses CASCADE;
DROP TABLE IF EXISTS stage_admissions CASCADE;
DROP TABLE IF EXISTS stage_patients CASCADE;
`

// EnsureSchema creates any missing warehouse tables. It never drops or
// alters existing ones, so re-running a load keeps the warehouse
// append-only.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return classifyError("schema", err)
	}
	return nil
}

// DropSchema removes all warehouse tables, staged and permanent.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, dropSQL); err != nil {
		return classifyError("schema", err)
	}
	return nil
}

package warehouse

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// The inner JOIN to diagnosis_codes silently excludes staged rows whose
// code has no dimension entry; that only happens when the code was empty
// or dimension building was skipped. DISTINCT ON the (patient, admission)
// primary key keeps one arbitrary staged diagnosis per admission, so
// ON CONFLICT never sees the same key twice in the statement.
const insertDiagnosesSQL = `INSERT INTO admission_primary_diagnoses (patient_id, admission_id, diagnosis_code)
	SELECT DISTINCT ON (s.patientid, s.admissionid::INTEGER)
		s.patientid,
		s.admissionid::INTEGER,
		s.primarydiagnosiscode
	FROM stage_diagnoses s
	JOIN diagnosis_codes d ON d.diagnosis_code = s.primarydiagnosiscode`

// Lab results join to lab_tests by name; an empty lab value becomes NULL.
// DISTINCT ON the unique key collapses repeated (patient, admission, test,
// timestamp) combinations to a single row before the insert.
const insertLabResultsSQL = `INSERT INTO admission_lab_results (
		patient_id, admission_id, lab_test_id, lab_value, lab_datetime
	)
	SELECT DISTINCT ON (s.patientid, s.admissionid::INTEGER, lt.lab_test_id, NULLIF(s.labdatetime, '')::TIMESTAMP)
		s.patientid,
		s.admissionid::INTEGER,
		lt.lab_test_id,
		NULLIF(s.labvalue, '')::REAL,
		NULLIF(s.labdatetime, '')::TIMESTAMP
	FROM stage_labs s
	JOIN lab_tests lt ON lt.lab_name = s.labname`

// BuildFacts loads the diagnosis and lab-result fact tables from staged
// data. Entities must already exist; the fact tables' foreign keys are the
// enforcer of last resort for orphaned rows.
func BuildFacts(ctx context.Context, pool *pgxpool.Pool, policies Policies, log zerolog.Logger) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return classifyError("facts", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, insertDiagnosesSQL+policies.Diagnoses.clause("patient_id, admission_id",
		"diagnosis_code = EXCLUDED.diagnosis_code"))
	if err != nil {
		return classifyError("facts diagnoses", err)
	}
	log.Info().Str("table", "admission_primary_diagnoses").Int64("inserted", tag.RowsAffected()).Msg("facts built")

	tag, err = tx.Exec(ctx, insertLabResultsSQL+policies.LabResults.clause(
		"patient_id, admission_id, lab_test_id, lab_datetime",
		"lab_value = EXCLUDED.lab_value"))
	if err != nil {
		return classifyError("facts labs", err)
	}
	log.Info().Str("table", "admission_lab_results").Int64("inserted", tag.RowsAffected()).Msg("facts built")

	if err := tx.Commit(ctx); err != nil {
		return classifyError("facts", err)
	}
	return nil
}

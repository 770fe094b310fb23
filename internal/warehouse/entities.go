package warehouse

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Patients resolve each categorical text field to a dimension key through a
// LEFT JOIN: unmatched or empty text becomes a NULL foreign key, not an
// error. Poverty percentage coerces text to REAL with empty meaning NULL.
// DISTINCT ON keeps one staged row per patient so ON CONFLICT never sees
// the same key twice in the statement.
const insertPatientsSQL = `INSERT INTO patients (
		patient_id, patient_gender, patient_dob, patient_race,
		patient_marital_status, patient_language, patient_population_pct_below_poverty
	)
	SELECT DISTINCT ON (s.patientid)
		s.patientid,
		g.gender_id,
		NULLIF(s.patientdateofbirth, '')::TIMESTAMP,
		r.race_id,
		m.marital_status_id,
		l.language_id,
		NULLIF(s.patientpopulationpercentagebelowpoverty, '')::REAL
	FROM stage_patients s
	LEFT JOIN genders g ON g.gender_desc = s.patientgender
	LEFT JOIN races r ON r.race_desc = s.patientrace
	LEFT JOIN marital_statuses m ON m.marital_status_desc = s.patientmaritalstatus
	LEFT JOIN languages l ON l.language_desc = s.patientlanguage`

// Admissions cast the staged admission identifier to INTEGER; a non-numeric
// identifier fails the whole statement as a coercion error rather than
// dropping the row. The patients foreign key is enforced by the table
// itself: an admission for an unknown patient fails the insert.
const insertAdmissionsSQL = `INSERT INTO admissions (patient_id, admission_id, admission_start, admission_end)
	SELECT DISTINCT ON (s.patientid, s.admissionid::INTEGER)
		s.patientid,
		s.admissionid::INTEGER,
		NULLIF(s.admissionstartdate, '')::TIMESTAMP,
		NULLIF(s.admissionenddate, '')::TIMESTAMP
	FROM stage_admissions s`

// BuildEntities projects staged patient and admission rows into the
// normalized entity tables. Both inserts run in one transaction; dimension
// building must already have completed.
func BuildEntities(ctx context.Context, pool *pgxpool.Pool, policies Policies, log zerolog.Logger) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return classifyError("entities", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, insertPatientsSQL+policies.Patients.clause("patient_id",
		`patient_gender = EXCLUDED.patient_gender,
		 patient_dob = EXCLUDED.patient_dob,
		 patient_race = EXCLUDED.patient_race,
		 patient_marital_status = EXCLUDED.patient_marital_status,
		 patient_language = EXCLUDED.patient_language,
		 patient_population_pct_below_poverty = EXCLUDED.patient_population_pct_below_poverty`))
	if err != nil {
		return classifyError("entities patients", err)
	}
	log.Info().Str("table", "patients").Int64("inserted", tag.RowsAffected()).Msg("entities built")

	tag, err = tx.Exec(ctx, insertAdmissionsSQL+policies.Admissions.clause("patient_id, admission_id",
		`admission_start = EXCLUDED.admission_start,
		 admission_end = EXCLUDED.admission_end`))
	if err != nil {
		return classifyError("entities admissions", err)
	}
	log.Info().Str("table", "admissions").Int64("inserted", tag.RowsAffected()).Msg("entities built")

	if err := tx.Commit(ctx); err != nil {
		return classifyError("entities", err)
	}
	return nil
}

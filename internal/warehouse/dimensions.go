package warehouse

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// dimension is one deduplicated lookup set derived from staged data.
// updateSet is the assignment list applied under ConflictUpdate; empty for
// dimensions whose only column is the conflict key itself.
type dimension struct {
	name      string
	insertSQL string
	target    string
	updateSet string
}

// dimensions lists the builds in execution order. lab_units must precede
// lab_tests: a lab test row joins to its unit, so a lab whose unit string
// has no lab_units row yet contributes no lab_tests entry in that pass.
// Multi-column builds project DISTINCT ON their conflict key, keeping one
// arbitrary row per recurring key; ON CONFLICT DO UPDATE cannot touch the
// same row twice within a statement, so the projection must already be
// key-unique under every policy.
var dimensions = []dimension{
	{
		name: "genders",
		insertSQL: `INSERT INTO genders(gender_desc)
			SELECT DISTINCT patientgender FROM stage_patients
			WHERE patientgender IS NOT NULL AND patientgender <> ''`,
		target: "gender_desc",
	},
	{
		name: "races",
		insertSQL: `INSERT INTO races(race_desc)
			SELECT DISTINCT patientrace FROM stage_patients
			WHERE patientrace IS NOT NULL AND patientrace <> ''`,
		target: "race_desc",
	},
	{
		name: "marital_statuses",
		insertSQL: `INSERT INTO marital_statuses(marital_status_desc)
			SELECT DISTINCT patientmaritalstatus FROM stage_patients
			WHERE patientmaritalstatus IS NOT NULL AND patientmaritalstatus <> ''`,
		target: "marital_status_desc",
	},
	{
		name: "languages",
		insertSQL: `INSERT INTO languages(language_desc)
			SELECT DISTINCT patientlanguage FROM stage_patients
			WHERE patientlanguage IS NOT NULL AND patientlanguage <> ''`,
		target: "language_desc",
	},
	{
		name: "lab_units",
		insertSQL: `INSERT INTO lab_units(unit_string)
			SELECT DISTINCT labunits FROM stage_labs
			WHERE labunits IS NOT NULL AND labunits <> ''`,
		target: "unit_string",
	},
	{
		name: "lab_tests",
		insertSQL: `INSERT INTO lab_tests(lab_name, unit_id)
			SELECT DISTINCT ON (s.labname) s.labname, u.unit_id
			FROM stage_labs s
			JOIN lab_units u ON u.unit_string = s.labunits
			WHERE s.labname IS NOT NULL AND s.labname <> ''`,
		target:    "lab_name",
		updateSet: "unit_id = EXCLUDED.unit_id",
	},
	{
		name: "diagnosis_codes",
		insertSQL: `INSERT INTO diagnosis_codes(diagnosis_code, diagnosis_description)
			SELECT DISTINCT ON (primarydiagnosiscode) primarydiagnosiscode, primarydiagnosisdescription
			FROM stage_diagnoses
			WHERE primarydiagnosiscode IS NOT NULL AND primarydiagnosiscode <> ''`,
		target:    "diagnosis_code",
		updateSet: "diagnosis_description = EXCLUDED.diagnosis_description",
	},
}

// BuildDimensions populates every lookup table from staged data in one
// transaction. Existing rows are never touched under the default skip
// policy: surrogate keys, once assigned, stay put.
func BuildDimensions(ctx context.Context, pool *pgxpool.Pool, policy ConflictPolicy, log zerolog.Logger) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return classifyError("dimensions", err)
	}
	defer tx.Rollback(ctx)

	for _, d := range dimensions {
		tag, err := tx.Exec(ctx, d.insertSQL+policy.clause(d.target, d.updateSet))
		if err != nil {
			return classifyError("dimensions "+d.name, err)
		}
		log.Info().Str("table", d.name).Int64("inserted", tag.RowsAffected()).Msg("dimension built")
	}

	if err := tx.Commit(ctx); err != nil {
		return classifyError("dimensions", err)
	}
	return nil
}

package archive

// Archived rows carry the extract fields verbatim as text: the archive is
// a retention copy of the raw extract, not a typed projection. Optional
// (*string) fields use the Parquet null bitmap, so absent trailing fields
// survive the round trip as nulls. Values repeat heavily (genders, races,
// lab names, units), which dictionary encoding compresses to near zero.

type PatientRow struct {
	PatientID       string  `parquet:"patient_id"`
	Gender          *string `parquet:"gender,optional"`
	DateOfBirth     *string `parquet:"date_of_birth,optional"`
	Race            *string `parquet:"race,optional"`
	MaritalStatus   *string `parquet:"marital_status,optional"`
	Language        *string `parquet:"language,optional"`
	PctBelowPoverty *string `parquet:"pct_below_poverty,optional"`
}

type AdmissionRow struct {
	PatientID   string  `parquet:"patient_id"`
	AdmissionID string  `parquet:"admission_id"`
	StartDate   *string `parquet:"start_date,optional"`
	EndDate     *string `parquet:"end_date,optional"`
}

type DiagnosisRow struct {
	PatientID   string  `parquet:"patient_id"`
	AdmissionID string  `parquet:"admission_id"`
	Code        *string `parquet:"code,optional"`
	Description *string `parquet:"description,optional"`
}

type LabRow struct {
	PatientID   string  `parquet:"patient_id"`
	AdmissionID string  `parquet:"admission_id"`
	LabName     *string `parquet:"lab_name,optional"`
	LabValue    *string `parquet:"lab_value,optional"`
	LabUnits    *string `parquet:"lab_units,optional"`
	LabDateTime *string `parquet:"lab_datetime,optional"`
}

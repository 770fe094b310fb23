package warehouse

// Column maps an extract header name to its staging table column. Staging
// columns are the lower-cased header names; Postgres folds unquoted
// identifiers anyway, and CopyFrom needs the exact stored spelling.
type Column struct {
	Header string
	DB     string
}

// Source describes one tab-separated extract and its staging table.
type Source struct {
	Name      string
	File      string
	Stage     string
	Columns   []Column
	BatchSize int
}

// Headers returns the required header names in declared order.
func (s Source) Headers() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Header
	}
	return out
}

// DBColumns returns the staging column names in declared order.
func (s Source) DBColumns() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.DB
	}
	return out
}

// Sources lists the four extracts in load order. The labs file is an order
// of magnitude larger than the rest, so it gets a bigger batch size.
var Sources = []Source{
	{
		Name:  "patients",
		File:  "PatientCorePopulatedTable.txt",
		Stage: "stage_patients",
		Columns: []Column{
			{"PatientID", "patientid"},
			{"PatientGender", "patientgender"},
			{"PatientDateOfBirth", "patientdateofbirth"},
			{"PatientRace", "patientrace"},
			{"PatientMaritalStatus", "patientmaritalstatus"},
			{"PatientLanguage", "patientlanguage"},
			{"PatientPopulationPercentageBelowPoverty", "patientpopulationpercentagebelowpoverty"},
		},
		BatchSize: 5000,
	},
	{
		Name:  "admissions",
		File:  "AdmissionsCorePopulatedTable.txt",
		Stage: "stage_admissions",
		Columns: []Column{
			{"PatientID", "patientid"},
			{"AdmissionID", "admissionid"},
			{"AdmissionStartDate", "admissionstartdate"},
			{"AdmissionEndDate", "admissionenddate"},
		},
		BatchSize: 5000,
	},
	{
		Name:  "diagnoses",
		File:  "AdmissionsDiagnosesCorePopulatedTable.txt",
		Stage: "stage_diagnoses",
		Columns: []Column{
			{"PatientID", "patientid"},
			{"AdmissionID", "admissionid"},
			{"PrimaryDiagnosisCode", "primarydiagnosiscode"},
			{"PrimaryDiagnosisDescription", "primarydiagnosisdescription"},
		},
		BatchSize: 5000,
	},
	{
		Name:  "labs",
		File:  "LabsCorePopulatedTable.txt",
		Stage: "stage_labs",
		Columns: []Column{
			{"PatientID", "patientid"},
			{"AdmissionID", "admissionid"},
			{"LabName", "labname"},
			{"LabValue", "labvalue"},
			{"LabUnits", "labunits"},
			{"LabDateTime", "labdatetime"},
		},
		BatchSize: 100000,
	},
}

// SourceByName returns the source definition for name, or false.
func SourceByName(name string) (Source, bool) {
	for _, s := range Sources {
		if s.Name == name {
			return s, true
		}
	}
	return Source{}, false
}

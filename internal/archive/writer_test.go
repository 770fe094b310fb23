package archive

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"

	"clinicdw/internal/warehouse"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestArchivePatientsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "patients.txt",
		"PatientID\tPatientGender\tPatientDateOfBirth\tPatientRace\tPatientMaritalStatus\tPatientLanguage\tPatientPopulationPercentageBelowPoverty\n"+
			"P1\tMale\t1980-01-01 00:00:00.000000\tWhite\tMarried\tEnglish\t12.5\n"+
			"P2\tFemale\t1975-06-15 00:00:00.000000\tAsian\tSingle\n") // short row
	out := filepath.Join(dir, "patients.parquet")

	n, err := Archive("patients", in, out)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if n != 2 {
		t.Fatalf("archived %d rows, want 2", n)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open parquet: %v", err)
	}
	defer f.Close()

	reader := parquet.NewGenericReader[PatientRow](f)
	defer reader.Close()

	rows := make([]PatientRow, 2)
	if _, err := reader.Read(rows); err != nil && !errors.Is(err, io.EOF) {
		t.Fatalf("read parquet: %v", err)
	}

	if rows[0].PatientID != "P1" {
		t.Errorf("rows[0].PatientID = %q, want P1", rows[0].PatientID)
	}
	if rows[0].PctBelowPoverty == nil || *rows[0].PctBelowPoverty != "12.5" {
		t.Errorf("rows[0].PctBelowPoverty = %v, want 12.5", rows[0].PctBelowPoverty)
	}
	if rows[1].PatientID != "P2" {
		t.Errorf("rows[1].PatientID = %q, want P2", rows[1].PatientID)
	}
	// Short row: trailing fields absent.
	if rows[1].Language != nil {
		t.Errorf("rows[1].Language = %v, want nil", *rows[1].Language)
	}
	if rows[1].PctBelowPoverty != nil {
		t.Errorf("rows[1].PctBelowPoverty = %v, want nil", *rows[1].PctBelowPoverty)
	}
}

func TestArchiveLabs(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "labs.txt",
		"PatientID\tAdmissionID\tLabName\tLabValue\tLabUnits\tLabDateTime\n"+
			"P1\t1\tCBC: HEMOGLOBIN\t14.2\tgm/dl\t2020-01-02 06:00:00.000000\n")
	out := filepath.Join(dir, "labs.parquet")

	n, err := Archive("labs", in, out)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if n != 1 {
		t.Fatalf("archived %d rows, want 1", n)
	}
}

func TestArchiveUnknownSource(t *testing.T) {
	if _, err := Archive("visits", "in.txt", "out.parquet"); err == nil {
		t.Fatal("expected error for unknown source")
	}
}

func TestArchiveMissingFile(t *testing.T) {
	_, err := Archive("patients", filepath.Join(t.TempDir(), "nope.txt"), "out.parquet")
	var mfe *warehouse.MissingFileError
	if !errors.As(err, &mfe) {
		t.Fatalf("expected MissingFileError, got %v", err)
	}
}

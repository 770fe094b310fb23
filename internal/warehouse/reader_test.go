package warehouse

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestOpenExtractMissingFile(t *testing.T) {
	_, err := OpenExtract(filepath.Join(t.TempDir(), "nope.txt"), []string{"A"})
	var mfe *MissingFileError
	if !errors.As(err, &mfe) {
		t.Fatalf("expected MissingFileError, got %v", err)
	}
	if !strings.Contains(mfe.Error(), "nope.txt") {
		t.Errorf("error should name the file: %v", mfe)
	}
}

func TestOpenExtractMissingColumns(t *testing.T) {
	path := writeFile(t, t.TempDir(), "p.txt", "PatientID\tPatientGender\nP1\tMale\n")

	_, err := OpenExtract(path, []string{"PatientID", "PatientRace", "PatientGender", "PatientLanguage"})
	var sme *SchemaMismatchError
	if !errors.As(err, &sme) {
		t.Fatalf("expected SchemaMismatchError, got %v", err)
	}
	want := []string{"PatientLanguage", "PatientRace"}
	if len(sme.Missing) != len(want) {
		t.Fatalf("missing = %v, want %v", sme.Missing, want)
	}
	for i := range want {
		if sme.Missing[i] != want[i] {
			t.Errorf("missing[%d] = %q, want %q (sorted)", i, sme.Missing[i], want[i])
		}
	}
}

func TestExtractReaderReadsRows(t *testing.T) {
	// BOM prefix, extra column, required columns out of declared order.
	content := "\ufeffExtra\tPatientGender\tPatientID\nx\tMale\tP1\ny\tFemale\tP2\n"
	path := writeFile(t, t.TempDir(), "p.txt", content)

	r, err := OpenExtract(path, []string{"PatientID", "PatientGender"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	rec, err := r.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got := *rec[0]; got != "P1" {
		t.Errorf("PatientID = %q, want P1", got)
	}
	if got := *rec[1]; got != "Male" {
		t.Errorf("PatientGender = %q, want Male", got)
	}

	rec, err = r.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got := *rec[0]; got != "P2" {
		t.Errorf("PatientID = %q, want P2", got)
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestExtractReaderShortRow(t *testing.T) {
	content := "PatientID\tPatientGender\tPatientRace\nP1\tMale\n"
	path := writeFile(t, t.TempDir(), "p.txt", content)

	r, err := OpenExtract(path, []string{"PatientID", "PatientGender", "PatientRace"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	rec, err := r.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if rec[0] == nil || *rec[0] != "P1" {
		t.Errorf("PatientID = %v, want P1", rec[0])
	}
	if rec[1] == nil || *rec[1] != "Male" {
		t.Errorf("PatientGender = %v, want Male", rec[1])
	}
	if rec[2] != nil {
		t.Errorf("missing trailing field should be nil, got %q", *rec[2])
	}
}

func TestExtractReaderEmptyFieldIsNotNil(t *testing.T) {
	content := "PatientID\tPatientGender\nP1\t\n"
	path := writeFile(t, t.TempDir(), "p.txt", content)

	r, err := OpenExtract(path, []string{"PatientID", "PatientGender"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	rec, err := r.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if rec[1] == nil {
		t.Fatal("present-but-empty field should not be nil")
	}
	if *rec[1] != "" {
		t.Errorf("empty field = %q, want empty string", *rec[1])
	}
}

func TestExtractReaderRestartable(t *testing.T) {
	content := "PatientID\nP1\nP2\n"
	path := writeFile(t, t.TempDir(), "p.txt", content)

	for pass := 0; pass < 2; pass++ {
		r, err := OpenExtract(path, []string{"PatientID"})
		if err != nil {
			t.Fatalf("pass %d open: %v", pass, err)
		}
		var ids []string
		for {
			rec, err := r.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("pass %d next: %v", pass, err)
			}
			ids = append(ids, *rec[0])
		}
		r.Close()
		if len(ids) != 2 || ids[0] != "P1" || ids[1] != "P2" {
			t.Errorf("pass %d ids = %v", pass, ids)
		}
	}
}

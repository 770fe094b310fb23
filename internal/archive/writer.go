// Package archive converts raw tab-separated extracts into Parquet files
// for retention and ad-hoc analytics. It never touches the warehouse.
package archive

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"clinicdw/internal/warehouse"
)

const writeBatch = 10000

// Archive streams the extract for the named source through the extract
// reader and writes it to outPath as zstd-compressed Parquet, returning
// the number of rows written.
func Archive(srcName, inPath, outPath string) (int, error) {
	src, ok := warehouse.SourceByName(srcName)
	if !ok {
		return 0, fmt.Errorf("unknown source %q", srcName)
	}

	switch src.Name {
	case "patients":
		return writeAll(src, inPath, outPath, func(rec warehouse.Record) PatientRow {
			return PatientRow{
				PatientID:       deref(rec[0]),
				Gender:          rec[1],
				DateOfBirth:     rec[2],
				Race:            rec[3],
				MaritalStatus:   rec[4],
				Language:        rec[5],
				PctBelowPoverty: rec[6],
			}
		})
	case "admissions":
		return writeAll(src, inPath, outPath, func(rec warehouse.Record) AdmissionRow {
			return AdmissionRow{
				PatientID:   deref(rec[0]),
				AdmissionID: deref(rec[1]),
				StartDate:   rec[2],
				EndDate:     rec[3],
			}
		})
	case "diagnoses":
		return writeAll(src, inPath, outPath, func(rec warehouse.Record) DiagnosisRow {
			return DiagnosisRow{
				PatientID:   deref(rec[0]),
				AdmissionID: deref(rec[1]),
				Code:        rec[2],
				Description: rec[3],
			}
		})
	case "labs":
		return writeAll(src, inPath, outPath, func(rec warehouse.Record) LabRow {
			return LabRow{
				PatientID:   deref(rec[0]),
				AdmissionID: deref(rec[1]),
				LabName:     rec[2],
				LabValue:    rec[3],
				LabUnits:    rec[4],
				LabDateTime: rec[5],
			}
		})
	}
	return 0, fmt.Errorf("unknown source %q", srcName)
}

func writeAll[T any](src warehouse.Source, inPath, outPath string, conv func(warehouse.Record) T) (int, error) {
	reader, err := warehouse.OpenExtract(inPath, src.Headers())
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	file, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("create parquet file: %w", err)
	}

	writer := parquet.NewGenericWriter[T](file,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedDefault}),
		parquet.CreatedBy("clinicdw", "1.0", ""),
	)

	var total int
	batch := make([]T, 0, writeBatch)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := writer.Write(batch)
		total += n
		if err != nil {
			return fmt.Errorf("write parquet rows: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			file.Close()
			return total, fmt.Errorf("read %s: %w", inPath, err)
		}
		batch = append(batch, conv(rec))
		if len(batch) == writeBatch {
			if err := flush(); err != nil {
				file.Close()
				return total, err
			}
		}
	}
	if err := flush(); err != nil {
		file.Close()
		return total, err
	}

	if err := writer.Close(); err != nil {
		file.Close()
		return total, fmt.Errorf("close parquet writer: %w", err)
	}
	return total, file.Close()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

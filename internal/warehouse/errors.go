package warehouse

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// MissingFileError reports a source extract that does not exist on disk.
// It aborts the run before any database mutation for that source.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("missing file: %s", e.Path)
}

// SchemaMismatchError reports required columns absent from an extract header.
type SchemaMismatchError struct {
	Path    string
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s missing expected columns: %s", e.Path, strings.Join(e.Missing, ", "))
}

// TypeCoercionError reports a value that could not be cast to its target
// type (non-numeric admission identifier, unparseable timestamp).
type TypeCoercionError struct {
	Stage string
	Cause error
}

func (e *TypeCoercionError) Error() string {
	return fmt.Sprintf("%s: type coercion failed: %v", e.Stage, e.Cause)
}

func (e *TypeCoercionError) Unwrap() error { return e.Cause }

// ReferentialIntegrityError reports a row referencing a nonexistent parent,
// caught by the storage layer's constraints.
type ReferentialIntegrityError struct {
	Stage string
	Cause error
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("%s: referential integrity violation: %v", e.Stage, e.Cause)
}

func (e *ReferentialIntegrityError) Unwrap() error { return e.Cause }

// ResourceError reports a failed connection or statement not attributable
// to the data itself. The operator re-runs the stage; no automatic retry.
type ResourceError struct {
	Stage string
	Cause error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Cause)
}

func (e *ResourceError) Unwrap() error { return e.Cause }

// classifyError maps database errors onto the pipeline's error kinds so the
// operator can tell bad data from a bad connection. SQLSTATE class 22 covers
// failed casts (22P02 invalid text representation, 22007/22008 bad
// datetime); 23502/23503 are not-null and foreign-key violations.
func classifyError(stage string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "22"):
			return &TypeCoercionError{Stage: stage, Cause: err}
		case pgErr.Code == "23502" || pgErr.Code == "23503":
			return &ReferentialIntegrityError{Stage: stage, Cause: err}
		}
	}
	return &ResourceError{Stage: stage, Cause: err}
}

// sortedMissing returns the missing column names in deterministic order for
// error messages.
func sortedMissing(missing map[string]bool) []string {
	out := make([]string, 0, len(missing))
	for c := range missing {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

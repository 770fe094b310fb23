package warehouse

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestConflictClause(t *testing.T) {
	tests := []struct {
		name      string
		policy    ConflictPolicy
		target    string
		updateSet string
		want      string
	}{
		{
			name:   "skip",
			policy: ConflictSkip,
			target: "gender_desc",
			want:   " ON CONFLICT (gender_desc) DO NOTHING",
		},
		{
			name:   "fail",
			policy: ConflictFail,
			target: "gender_desc",
			want:   "",
		},
		{
			name:      "update",
			policy:    ConflictUpdate,
			target:    "diagnosis_code",
			updateSet: "diagnosis_description = EXCLUDED.diagnosis_description",
			want:      " ON CONFLICT (diagnosis_code) DO UPDATE SET diagnosis_description = EXCLUDED.diagnosis_description",
		},
		{
			name:   "update without assignments degrades to skip",
			policy: ConflictUpdate,
			target: "gender_desc",
			want:   " ON CONFLICT (gender_desc) DO NOTHING",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.clause(tt.target, tt.updateSet); got != tt.want {
				t.Errorf("clause() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		code string
		want any
	}{
		{"invalid text representation", "22P02", &TypeCoercionError{}},
		{"invalid datetime format", "22007", &TypeCoercionError{}},
		{"not null violation", "23502", &ReferentialIntegrityError{}},
		{"foreign key violation", "23503", &ReferentialIntegrityError{}},
		{"connection failure", "08006", &ResourceError{}},
		{"undefined table", "42P01", &ResourceError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyError("test", &pgconn.PgError{Code: tt.code, Message: tt.name})
			switch tt.want.(type) {
			case *TypeCoercionError:
				var e *TypeCoercionError
				if !errors.As(err, &e) {
					t.Errorf("code %s classified as %T, want TypeCoercionError", tt.code, err)
				}
			case *ReferentialIntegrityError:
				var e *ReferentialIntegrityError
				if !errors.As(err, &e) {
					t.Errorf("code %s classified as %T, want ReferentialIntegrityError", tt.code, err)
				}
			case *ResourceError:
				var e *ResourceError
				if !errors.As(err, &e) {
					t.Errorf("code %s classified as %T, want ResourceError", tt.code, err)
				}
			}
		})
	}

	if classifyError("test", nil) != nil {
		t.Error("nil error should classify to nil")
	}

	// A non-pg error is a resource problem.
	var re *ResourceError
	if !errors.As(classifyError("test", errors.New("dial tcp: refused")), &re) {
		t.Error("plain errors should classify as ResourceError")
	}
}

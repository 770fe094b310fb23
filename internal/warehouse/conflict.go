package warehouse

import "fmt"

// ConflictPolicy decides what an insert does when its conflict key already
// exists. The pipeline defaults to ConflictSkip everywhere: first write
// wins, and re-runs are idempotent. ConflictUpdate trades that idempotency
// guarantee for freshness; ConflictFail surfaces duplicates as errors.
type ConflictPolicy int

const (
	ConflictSkip ConflictPolicy = iota
	ConflictFail
	ConflictUpdate
)

func (p ConflictPolicy) String() string {
	switch p {
	case ConflictSkip:
		return "skip"
	case ConflictFail:
		return "fail"
	case ConflictUpdate:
		return "update"
	}
	return fmt.Sprintf("ConflictPolicy(%d)", int(p))
}

// clause renders the ON CONFLICT suffix for an INSERT against the given
// conflict target. updateSet is the assignment list used by
// ConflictUpdate; when the conflict key covers every column there is
// nothing to update and ConflictUpdate degrades to skip.
func (p ConflictPolicy) clause(target, updateSet string) string {
	switch p {
	case ConflictFail:
		return ""
	case ConflictUpdate:
		if updateSet != "" {
			return fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s", target, updateSet)
		}
		fallthrough
	default:
		return fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", target)
	}
}

// Policies carries the per-table conflict policy for every insert the
// builder stages perform.
type Policies struct {
	Dimensions ConflictPolicy
	Patients   ConflictPolicy
	Admissions ConflictPolicy
	Diagnoses  ConflictPolicy
	LabResults ConflictPolicy
}

// DefaultPolicies returns skip-if-exists for every table.
func DefaultPolicies() Policies {
	return Policies{}
}

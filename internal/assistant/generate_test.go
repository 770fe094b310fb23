package assistant

import "testing"

func TestExtractSQL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare query",
			in:   "SELECT COUNT(*) FROM patients",
			want: "SELECT COUNT(*) FROM patients",
		},
		{
			name: "sql fence",
			in:   "```sql\nSELECT COUNT(*) FROM patients\n```",
			want: "SELECT COUNT(*) FROM patients",
		},
		{
			name: "fence with surrounding whitespace",
			in:   "```sql\n  SELECT g.gender_desc, COUNT(*) AS n\n  FROM patients p\n  JOIN genders g ON g.gender_id = p.patient_gender\n  GROUP BY 1\n```\n",
			want: "SELECT g.gender_desc, COUNT(*) AS n\n  FROM patients p\n  JOIN genders g ON g.gender_id = p.patient_gender\n  GROUP BY 1",
		},
		{
			name: "uppercase fence",
			in:   "```SQL\nSELECT 1\n```",
			want: "SELECT 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractSQL(tt.in); got != tt.want {
				t.Errorf("extractSQL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

package vcf

import "testing"

func TestFormatIndex(t *testing.T) {
	tests := []struct {
		format string
		tag    string
		want   int
	}{
		{"GT", "GT", 0},
		{"GT:GL", "GL", 1},
		{"GT:DP:GL", "GL", 2},
		{"GT:DP:GL", "DP", 1},
		{"GT:DP:GL", "PL", -1},
		{"GT:DP:GL", "G", -1}, // exact match only
		{"", "GT", -1},
		{"GL:GT", "GT", 1},
	}

	for _, tt := range tests {
		if got := formatIndex(tt.format, tt.tag); got != tt.want {
			t.Errorf("formatIndex(%q, %q) = %d, want %d", tt.format, tt.tag, got, tt.want)
		}
	}
}

func TestSubfieldAt(t *testing.T) {
	tests := []struct {
		token string
		idx   int
		want  string
		ok    bool
	}{
		{"0|1:12:-1.0,-0.1,-2.0", 0, "0|1", true},
		{"0|1:12:-1.0,-0.1,-2.0", 1, "12", true},
		{"0|1:12:-1.0,-0.1,-2.0", 2, "-1.0,-0.1,-2.0", true},
		{"0|1:12", 2, "", false},
		{"0|1", 0, "0|1", true},
		{"", 0, "", true}, // an empty token has one empty subfield
		{"", 1, "", false},
	}

	for _, tt := range tests {
		got, ok := subfieldAt(tt.token, tt.idx)
		if got != tt.want || ok != tt.ok {
			t.Errorf("subfieldAt(%q, %d) = %q, %v; want %q, %v",
				tt.token, tt.idx, got, ok, tt.want, tt.ok)
		}
	}
}

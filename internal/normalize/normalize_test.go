package normalize

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ABC Pty Ltd", "abc pty ltd"},
		{"ABC P/L", "abc pty ltd"},
		{"ABC Pty. Limited", "abc pty ltd"},
		{"ABC Proprietary Limited", "abc pty ltd"},
		{"  Disaster   Recovery  Pty Ltd. ", "disaster recovery pty ltd"},
		{"CARSI", "carsi"},
		{"Widgets Limited", "widgets ltd"},
		{"Acme Incorporated", "acme inc"},
		{"Smith and Sons", "smith & sons"},
		{"Trailing Punct,", "trailing punct"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStripSuffix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"abc pty ltd", "abc"},
		{"abc ltd", "abc"},
		{"abc inc", "abc"},
		{"carsi", "carsi"},
		{"pty ltd", ""},
	}

	for _, tt := range tests {
		if got := StripSuffix(tt.input); got != tt.want {
			t.Errorf("StripSuffix(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"ABC Pty Ltd", "ABC P/L", 1.0}, // same after normalization
		{"", "", 1.0},
		{"ABC", "", 0.0},
		{"", "XYZ", 0.0},
	}

	for _, tt := range tests {
		if got := Similarity(tt.a, tt.b); got != tt.want {
			t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}

	// One character off in a ten character name sits above the threshold.
	if got := Similarity("acme works", "acme worxs"); got < SimilarityThreshold {
		t.Errorf("Expected near-identical names above threshold, got %v", got)
	}

	if got := Similarity("ABC", "XYZ"); got != 0.0 {
		t.Errorf("Expected disjoint names at 0, got %v", got)
	}
}

func TestNamesMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Disaster Recovery", "Disaster Recovery Pty Ltd", true},
		{"ABC Pty Ltd", "ABC P/L", true},
		{"CARSI", "CARSI", true},
		{"CARSI", "carsi", true},
		{"ABC", "XYZ", false},
		{"", "", true}, // both empty normalize to the same form
		{"   ", "", true},
		{"ABC", "", false},
		{"", "XYZ", false},
		{"Johnson Plumbing", "Jonson Plumbing", true}, // one edit in 16 runes
	}

	for _, tt := range tests {
		if got := NamesMatch(tt.a, tt.b); got != tt.want {
			t.Errorf("NamesMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}

	// Reflexivity holds for every input, including the empty name.
	for _, name := range []string{"", "Acme Pty Ltd", "CARSI", "Smith and Sons"} {
		if !NamesMatch(name, name) {
			t.Errorf("NamesMatch(%q, %q) = false, want true", name, name)
		}
	}
}

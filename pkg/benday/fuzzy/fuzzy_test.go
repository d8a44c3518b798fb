package fuzzy

import (
	"reflect"
	"testing"
)

var kinds = []string{"sequence", "if", "while", "assign", "print", "return"}

func TestFind(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"", kinds},
		{"i", []string{"if", "print", "while", "assign"}},
		{"pr", []string{"print"}},
		{"PRT", []string{"print"}},
		{"re", []string{"return"}},
		{"wh", []string{"while"}},
		{"zz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Find(kinds, tt.query)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Find(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		candidate, query string
		score            int
		ok               bool
	}{
		{"print", "p", 0, true},
		{"print", "pt", 3, true},
		{"assign", "an", 4, true},
		{"return", "nr", 0, false},
		{"Straße", "STRASSE", 0, true},
	}
	for _, tt := range tests {
		score, ok := Score(tt.candidate, tt.query)
		if ok != tt.ok || (ok && score != tt.score) {
			t.Errorf("Score(%q, %q) = %d, %v; want %d, %v", tt.candidate, tt.query, score, ok, tt.score, tt.ok)
		}
	}
}

func TestBest(t *testing.T) {
	if got, ok := Best(kinds, " ret "); !ok || got != "return" {
		t.Errorf("Best() = %q, %v", got, ok)
	}
	if _, ok := Best(kinds, "xyz"); ok {
		t.Error("Best() should fail without a match")
	}
}

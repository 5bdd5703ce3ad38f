package textfilter

import (
	"testing"
)

func TestKeep(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		whitelist string
		expected  string
	}{
		{
			name:      "alphabet strips punctuation and spaces",
			input:     "Choose One!",
			whitelist: AlphabetWhitelist,
			expected:  "ChooseOne",
		},
		{
			name:      "digits only",
			input:     "Gold: 52",
			whitelist: "0123456789",
			expected:  "52",
		},
		{
			name:      "empty whitelist keeps everything",
			input:     "Built Different II",
			whitelist: "",
			expected:  "Built Different II",
		},
		{
			name:      "empty string",
			input:     "",
			whitelist: AlphabetWhitelist,
			expected:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Keep(tt.input, tt.whitelist)
			if result != tt.expected {
				t.Errorf("Keep(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestChampionName(t *testing.T) {
	known := []string{"Ahri", "MissFortune", "TahmKench"}
	tests := []struct {
		input    string
		expected string
	}{
		{input: "Miss Fortune\n", expected: "MissFortune"},
		{input: "missfortune", expected: "MissFortune"},
		{input: "TAHMKENCH", expected: "TahmKench"},
		{input: "ahri", expected: "Ahri"},
		{input: "poppy", expected: "Poppy"},
		{input: "Kai'Sa", expected: "KaiSa"},
		{input: "  ", expected: ""},
		{input: "123", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ChampionName(tt.input, known); got != tt.expected {
				t.Errorf("ChampionName(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "MissFortune", expected: "Miss Fortune"},
		{input: "Ahri", expected: "Ahri"},
		{input: "?", expected: "?"},
		{input: "tahmKench", expected: "Tahm Kench"},
		{input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := DisplayName(tt.input); got != tt.expected {
				t.Errorf("DisplayName(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNonEmpty(t *testing.T) {
	if !NonEmpty([]string{"a", "b", "c"}) {
		t.Error("expected all non-empty")
	}
	if NonEmpty([]string{"a", " ", "c"}) {
		t.Error("blank entry should fail")
	}
}

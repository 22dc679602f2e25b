package service

import (
	"strings"
	"testing"

	"github.com/jmylchreest/resumeai/internal/models"
)

// ========================================
// ParseSuggestions Tests
// ========================================

func TestParseSuggestions(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want []string
	}{
		{
			name: "newline separated",
			text: "Alpha\nBeta\nGamma",
			max:  3,
			want: []string{"Alpha", "Beta", "Gamma"},
		},
		{
			name: "numbered with dots and parens",
			text: "1. Alpha\n2) Beta\n3: Gamma",
			max:  3,
			want: []string{"Alpha", "Beta", "Gamma"},
		},
		{
			name: "bullets and quotes",
			text: "- \"Alpha\"\n* 'Beta'\n• “Gamma”",
			max:  3,
			want: []string{"Alpha", "Beta", "Gamma"},
		},
		{
			name: "drops empties and bare markers",
			text: "\n\n-\nAlpha\n   \n*\nBeta\r\n",
			max:  3,
			want: []string{"Alpha", "Beta"},
		},
		{
			name: "dedupes case-insensitively keeping order",
			text: "Alpha\nalpha\nBeta\nALPHA",
			max:  3,
			want: []string{"Alpha", "Beta"},
		},
		{
			name: "caps at max",
			text: "A\nB\nC\nD\nE",
			max:  3,
			want: []string{"A", "B", "C"},
		},
		{
			name: "markdown emphasis",
			text: "1. **Alpha**",
			max:  3,
			want: []string{"Alpha"},
		},
		{
			name: "numbers that are content stay",
			text: "2024 revenue grew 40%",
			max:  3,
			want: []string{"2024 revenue grew 40%"},
		},
		{
			name: "leading decimal is not a marker",
			text: "3.5x revenue growth across EMEA\n2) Cut costs by 20%",
			max:  3,
			want: []string{"3.5x revenue growth across EMEA", "Cut costs by 20%"},
		},
		{
			name: "underscores in content stay",
			text: "__init__ refactor led\n__Bold line__",
			max:  3,
			want: []string{"__init__ refactor led", "Bold line"},
		},
		{
			name: "inner quotes keep the outer ones",
			text: "\"Quoted\" headline and \"more\"",
			max:  3,
			want: []string{"\"Quoted\" headline and \"more\""},
		},
		{
			name: "zero max uses default",
			text: "A\nB\nC\nD",
			max:  0,
			want: []string{"A", "B", "C"},
		},
		{
			name: "empty",
			text: "",
			max:  3,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSuggestions(tt.text, tt.max)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("ParseSuggestions() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ========================================
// Prompt Builder Tests
// ========================================

func TestBuildContentPrompt(t *testing.T) {
	tests := []struct {
		action models.Action
		want   string
	}{
		{models.ActionSuggest, "alternative phrasings"},
		{models.ActionOptimize, "applicant tracking systems"},
		{models.ActionGrammar, "Correct the grammar"},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			p := BuildContentPrompt(models.GenerationRequest{
				Prompt:  "Managed things",
				Field:   "job description",
				Context: "Senior engineer at Acme",
				Action:  tt.action,
			}, 3)
			if !containsAll(p, tt.want, "job description", "Managed things", "Senior engineer at Acme", "one suggestion per line") {
				t.Errorf("prompt missing expected parts:\n%s", p)
			}
		})
	}
}

func TestBuildContentPrompt_EmptyText(t *testing.T) {
	p := BuildContentPrompt(models.GenerationRequest{Action: models.ActionSuggest}, 2)
	if !containsAll(p, "currently empty", "resume field", "exactly 2 lines") {
		t.Errorf("prompt:\n%s", p)
	}
}

func TestBuildTemplatePrompt(t *testing.T) {
	p := BuildTemplatePrompt(models.TemplatePreferences{
		Style:                  "creative",
		ColorScheme:            "teal",
		Sections:               []string{"skills", "experience"},
		AdditionalInstructions: "Put skills in a sidebar",
	})
	if !containsAll(p, "creative", "teal", "skills, experience", "Put skills in a sidebar",
		"React.createElement(", "personalInfo", "section", "single column") {
		t.Errorf("prompt missing expected parts:\n%s", p)
	}
	if strings.Contains(p, "iframe") {
		t.Error("prompt should not list iframe as an allowed tag")
	}
}

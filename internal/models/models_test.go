package models

import (
	"encoding/json"
	"strings"
	"testing"
)

// ========================================
// FlexString Tests
// ========================================

func TestFlexString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		json string
		want FlexString
	}{
		{"string", `"3.8"`, "3.8"},
		{"number", `3.8`, "3.8"},
		{"integer", `4`, "4"},
		{"bool", `true`, "true"},
		{"null", `null`, ""},
		{"object", `{"a":1}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexString
			if err := json.Unmarshal([]byte(tt.json), &f); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f != tt.want {
				t.Errorf("FlexString = %q, want %q", f, tt.want)
			}
		})
	}
}

func TestResume_ImportWithNumericGPA(t *testing.T) {
	raw := `{"personalInfo":{"fullName":"Ada"},"education":[{"institution":"Cambridge","gpa":3.9}]}`

	var r Resume
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Education[0].GPA.String() != "3.9" {
		t.Errorf("GPA = %q, want %q", r.Education[0].GPA, "3.9")
	}
}

// ========================================
// Resume Tests
// ========================================

func TestResume_TemplateData(t *testing.T) {
	r := Resume{
		PersonalInfo: PersonalInfo{FullName: "Ada Lovelace", Email: "ada@example.com"},
		Experience:   []Experience{{Company: "Engines", Position: "Lead", Current: true}},
	}

	data, err := r.TemplateData()
	if err != nil {
		t.Fatalf("TemplateData() error = %v", err)
	}

	info, ok := data["personalInfo"].(map[string]any)
	if !ok || info["fullName"] != "Ada Lovelace" {
		t.Errorf("personalInfo = %v", data["personalInfo"])
	}
	exp, ok := data["experience"].([]any)
	if !ok || len(exp) != 1 {
		t.Fatalf("experience = %v", data["experience"])
	}
	if exp[0].(map[string]any)["current"] != true {
		t.Error("current flag should survive conversion")
	}
}

func TestResume_Validate(t *testing.T) {
	tests := []struct {
		name    string
		resume  Resume
		wantErr bool
	}{
		{"empty", Resume{}, false},
		{"typical", Resume{Skills: []Skill{{Name: "Go"}}}, false},
		{"too many skills", Resume{Skills: make([]Skill, MaxResumeEntries+1)}, true},
		{"long summary", Resume{PersonalInfo: PersonalInfo{Summary: strings.Repeat("a", MaxFieldLength+1)}}, true},
		{"long description", Resume{Experience: []Experience{{Description: strings.Repeat("a", MaxFieldLength+1)}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.resume.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResume_ExportFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Ada Lovelace", "ada-lovelace-resume.json"},
		{"  José  O'Brien ", "jos-o-brien-resume.json"},
		{"", "resume.json"},
		{"***", "resume.json"},
	}

	for _, tt := range tests {
		r := Resume{PersonalInfo: PersonalInfo{FullName: tt.name}}
		if got := r.ExportFilename(); got != tt.want {
			t.Errorf("ExportFilename(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

// ========================================
// Credential / Action Tests
// ========================================

func TestCredential_IsConfigured(t *testing.T) {
	tests := []struct {
		cred Credential
		want bool
	}{
		{Credential{}, false},
		{Credential{Provider: "openai"}, false},
		{Credential{APIKey: "sk"}, false},
		{Credential{Provider: "openai", APIKey: "sk"}, true},
	}

	for _, tt := range tests {
		if got := tt.cred.IsConfigured(); got != tt.want {
			t.Errorf("IsConfigured(%+v) = %v, want %v", tt.cred, got, tt.want)
		}
	}
}

func TestCredential_KeyNotSerialized(t *testing.T) {
	raw, _ := json.Marshal(Credential{Provider: "openai", APIKey: "sk-secret"})
	if strings.Contains(string(raw), "sk-secret") {
		t.Errorf("credential JSON leaks the key: %s", raw)
	}
}

func TestAction_Valid(t *testing.T) {
	for _, a := range []Action{ActionSuggest, ActionOptimize, ActionGrammar} {
		if !a.Valid() {
			t.Errorf("%q should be valid", a)
		}
	}
	if Action("rewrite").Valid() {
		t.Error("unknown action should be invalid")
	}
}

package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Resume is the structured data templates render against. Field names match
// the paths templates use (resumeData.personalInfo.fullName, ...).
type Resume struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Experience   []Experience `json:"experience"`
	Education    []Education  `json:"education"`
	Skills       []Skill      `json:"skills"`
	Projects     []Project    `json:"projects"`
}

type PersonalInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Website  string `json:"website,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

type Experience struct {
	ID          string   `json:"id,omitempty"`
	Company     string   `json:"company"`
	Position    string   `json:"position"`
	StartDate   string   `json:"startDate,omitempty"`
	EndDate     string   `json:"endDate,omitempty"`
	Current     bool     `json:"current,omitempty"`
	Description string   `json:"description,omitempty"`
	Highlights  []string `json:"highlights,omitempty"`
}

type Education struct {
	ID          string     `json:"id,omitempty"`
	Institution string     `json:"institution"`
	Degree      string     `json:"degree,omitempty"`
	Field       string     `json:"field,omitempty"`
	StartDate   string     `json:"startDate,omitempty"`
	EndDate     string     `json:"endDate,omitempty"`
	GPA         FlexString `json:"gpa,omitempty"`
}

type Skill struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

type Project struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Link         string   `json:"link,omitempty"`
}

// Resume size limits applied on save and import.
const (
	MaxResumeEntries = 100
	MaxFieldLength   = 10000
)

// Validate checks entry counts and field lengths.
func (r *Resume) Validate() error {
	counts := map[string]int{
		"experience": len(r.Experience),
		"education":  len(r.Education),
		"skills":     len(r.Skills),
		"projects":   len(r.Projects),
	}
	for section, n := range counts {
		if n > MaxResumeEntries {
			return fmt.Errorf("%s has %d entries (max %d)", section, n, MaxResumeEntries)
		}
	}
	if len(r.PersonalInfo.Summary) > MaxFieldLength {
		return fmt.Errorf("summary exceeds %d characters", MaxFieldLength)
	}
	for i, e := range r.Experience {
		if len(e.Description) > MaxFieldLength {
			return fmt.Errorf("experience[%d].description exceeds %d characters", i, MaxFieldLength)
		}
	}
	for i, p := range r.Projects {
		if len(p.Description) > MaxFieldLength {
			return fmt.Errorf("projects[%d].description exceeds %d characters", i, MaxFieldLength)
		}
	}
	return nil
}

// TemplateData converts the resume into the generic JSON shape the template
// interpreter evaluates against.
func (r *Resume) TemplateData() (map[string]any, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// ExportFilename derives a download filename from the person's name.
func (r *Resume) ExportFilename() string {
	name := strings.ToLower(strings.TrimSpace(r.PersonalInfo.FullName))
	var sb strings.Builder
	lastDash := true
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			sb.WriteRune(c)
			lastDash = false
		case !lastDash:
			sb.WriteByte('-')
			lastDash = true
		}
	}
	base := strings.TrimSuffix(sb.String(), "-")
	if base == "" {
		base = "resume"
	} else {
		base += "-resume"
	}
	return base + ".json"
}

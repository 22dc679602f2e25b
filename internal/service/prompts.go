package service

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/resumeai/internal/models"
	"github.com/jmylchreest/resumeai/internal/templatecode"
)

const contentSystemPrompt = `You are an expert resume writer. You improve individual resume fields.
Answer with plain text only: one suggestion per line, no numbering, no bullet characters, no quotes, no commentary.`

const templateSystemPrompt = `You design resume layouts as a single JavaScript expression built only from React.createElement calls.
Output the expression and nothing else: no imports, no exports, no comments, no markdown fences, no variable declarations.`

// BuildContentPrompt builds the user prompt for a content-improvement request.
func BuildContentPrompt(req models.GenerationRequest, count int) string {
	var sb strings.Builder

	field := strings.TrimSpace(req.Field)
	if field == "" {
		field = "resume field"
	}
	text := strings.TrimSpace(req.Prompt)

	switch req.Action {
	case models.ActionOptimize:
		fmt.Fprintf(&sb, "Rewrite the following %s so it is optimised for applicant tracking systems (ATS).\n", field)
		sb.WriteString("Use strong action verbs, concrete results and relevant keywords. Keep every claim truthful to the original.\n")
		fmt.Fprintf(&sb, "Give %d different rewrites.\n", count)
	case models.ActionGrammar:
		fmt.Fprintf(&sb, "Correct the grammar, spelling and punctuation of the following %s.\n", field)
		sb.WriteString("Keep the meaning and tone; change only what is wrong or awkward.\n")
		fmt.Fprintf(&sb, "Give %d corrected versions, best first.\n", count)
	default:
		fmt.Fprintf(&sb, "Suggest %d alternative phrasings for the following %s.\n", count, field)
		sb.WriteString("Make each one clear, concise and professional.\n")
	}

	if ctx := strings.TrimSpace(req.Context); ctx != "" {
		fmt.Fprintf(&sb, "\nContext: %s\n", ctx)
	}
	if text == "" {
		fmt.Fprintf(&sb, "\nThe %s is currently empty; write it from the context.\n", field)
	} else {
		fmt.Fprintf(&sb, "\n%s:\n%s\n", capitalize(field), text)
	}

	fmt.Fprintf(&sb, "\nReturn exactly %d lines, one suggestion per line, with no numbering or extra text.", count)
	return sb.String()
}

// resumeDataShape documents the fields available to generated templates.
const resumeDataShape = `resumeData = {
  personalInfo: { fullName, email, phone, location, website, linkedin, summary },
  experience: [{ company, position, startDate, endDate, current, description, highlights: [string] }],
  education: [{ institution, degree, field, startDate, endDate, gpa }],
  skills: [{ name, level }],
  projects: [{ name, description, technologies: [string], link }]
}`

// BuildTemplatePrompt builds the user prompt for template generation.
func BuildTemplatePrompt(prefs models.TemplatePreferences) string {
	var sb strings.Builder

	sb.WriteString("Create a resume template with these preferences:\n")
	writePref(&sb, "Style", prefs.Style, "professional")
	writePref(&sb, "Color scheme", prefs.ColorScheme, "neutral")
	writePref(&sb, "Layout", prefs.Layout, "single column")
	writePref(&sb, "Font family", prefs.FontFamily, "a readable sans-serif")
	if len(prefs.Sections) > 0 {
		fmt.Fprintf(&sb, "- Sections, in order: %s\n", strings.Join(prefs.Sections, ", "))
	} else {
		sb.WriteString("- Sections, in order: personalInfo, experience, education, skills, projects\n")
	}
	if extra := strings.TrimSpace(prefs.AdditionalInstructions); extra != "" {
		fmt.Fprintf(&sb, "- Additional instructions: %s\n", extra)
	}

	sb.WriteString("\nThe data is available as:\n")
	sb.WriteString(resumeDataShape)

	sb.WriteString("\n\nRules:\n")
	sb.WriteString("- The answer must start with React.createElement( and end with the matching ).\n")
	fmt.Fprintf(&sb, "- Allowed tags: %s. React.Fragment may be used as a tag.\n", strings.Join(templatecode.AllowedTags(), ", "))
	sb.WriteString("- Allowed props: className, id, title, href, role, lang, colSpan, rowSpan, dateTime, key, aria-*, data-*, and style as an object literal.\n")
	sb.WriteString("- Expressions may use string, number and boolean literals, +, &&, ||, ternaries, comparisons, and resumeData paths.\n")
	sb.WriteString("- Lists may use .map((item, index) => ...), .filter(item => ...), .join(separator) and .slice(start, end).\n")
	sb.WriteString("- Guard optional sections with (resumeData.x || []).length > 0 && ...\n")
	sb.WriteString("- No event handlers, no functions other than arrow callbacks, no template literals, no url() in styles.\n")
	return sb.String()
}

func writePref(sb *strings.Builder, label, value, fallback string) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	fmt.Fprintf(sb, "- %s: %s\n", label, value)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

package templatecode

// Builtin is a template shipped with the service.
type Builtin struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Code        string `json:"code"`
}

// Builtins returns the shipped templates. Every entry passes Validate.
func Builtins() []Builtin {
	return []Builtin{
		{ID: "classic", Name: "Classic", Description: "Serif single column with ruled section headings", Code: classicTemplate},
		{ID: "modern", Name: "Modern", Description: "Two column layout with a tinted sidebar", Code: modernTemplate},
		{ID: "minimal", Name: "Minimal", Description: "Compact sans-serif layout with lots of whitespace", Code: minimalTemplate},
	}
}

// BuiltinByID looks up a shipped template.
func BuiltinByID(id string) (Builtin, bool) {
	for _, b := range Builtins() {
		if b.ID == id {
			return b, true
		}
	}
	return Builtin{}, false
}

const classicTemplate = `React.createElement('div', { className: 'resume resume-classic', style: { fontFamily: 'Georgia, serif', color: '#222222', padding: 32, maxWidth: 800 } },
  React.createElement('header', { style: { textAlign: 'center', borderBottom: '2px solid #222222', paddingBottom: 12 } },
    React.createElement('h1', { style: { margin: 0, fontSize: 28 } }, resumeData.personalInfo.fullName),
    React.createElement('p', { style: { margin: '4px 0' } },
      [resumeData.personalInfo.email, resumeData.personalInfo.phone, resumeData.personalInfo.location].filter(v => v).join(' | ')),
    resumeData.personalInfo.website && React.createElement('a', { href: resumeData.personalInfo.website }, resumeData.personalInfo.website)
  ),
  resumeData.personalInfo.summary && React.createElement('section', { className: 'summary' },
    React.createElement('h2', { style: { fontSize: 18, borderBottom: '1px solid #999999' } }, 'Summary'),
    React.createElement('p', null, resumeData.personalInfo.summary)
  ),
  (resumeData.experience || []).length > 0 && React.createElement('section', { className: 'experience' },
    React.createElement('h2', { style: { fontSize: 18, borderBottom: '1px solid #999999' } }, 'Experience'),
    resumeData.experience.map((job, i) => React.createElement('div', { key: i, className: 'entry', style: { marginBottom: 12 } },
      React.createElement('h3', { style: { margin: 0, fontSize: 16 } }, job.position + ', ' + job.company),
      React.createElement('small', null, job.startDate + ' to ' + (job.current ? 'Present' : job.endDate)),
      job.description && React.createElement('p', null, job.description),
      (job.highlights || []).length > 0 && React.createElement('ul', null,
        job.highlights.map((h, j) => React.createElement('li', { key: j }, h)))
    ))
  ),
  (resumeData.education || []).length > 0 && React.createElement('section', { className: 'education' },
    React.createElement('h2', { style: { fontSize: 18, borderBottom: '1px solid #999999' } }, 'Education'),
    resumeData.education.map((edu, i) => React.createElement('div', { key: i, className: 'entry' },
      React.createElement('h3', { style: { margin: 0, fontSize: 16 } }, edu.degree + (edu.field ? ' in ' + edu.field : '')),
      React.createElement('p', { style: { margin: 0 } }, edu.institution + ', ' + edu.startDate + ' to ' + edu.endDate)
    ))
  ),
  (resumeData.skills || []).length > 0 && React.createElement('section', { className: 'skills' },
    React.createElement('h2', { style: { fontSize: 18, borderBottom: '1px solid #999999' } }, 'Skills'),
    React.createElement('p', null, resumeData.skills.map(s => s.name).join(', '))
  ),
  (resumeData.projects || []).length > 0 && React.createElement('section', { className: 'projects' },
    React.createElement('h2', { style: { fontSize: 18, borderBottom: '1px solid #999999' } }, 'Projects'),
    resumeData.projects.map((project, i) => React.createElement('div', { key: i, className: 'entry' },
      React.createElement('h3', { style: { margin: 0, fontSize: 16 } },
        project.link ? React.createElement('a', { href: project.link }, project.name) : project.name),
      React.createElement('p', null, project.description),
      (project.technologies || []).length > 0 && React.createElement('small', null, project.technologies.join(', '))
    ))
  )
)`

const modernTemplate = `React.createElement('div', { className: 'resume resume-modern', style: { display: 'flex', fontFamily: 'Helvetica, Arial, sans-serif', color: '#1f2937' } },
  React.createElement('aside', { style: { width: '32%', backgroundColor: '#1e3a5f', color: '#ffffff', padding: 24 } },
    React.createElement('h1', { style: { fontSize: 26, marginTop: 0 } }, resumeData.personalInfo.fullName),
    React.createElement('ul', { style: { listStyle: 'none', padding: 0 } },
      resumeData.personalInfo.email && React.createElement('li', null, React.createElement('a', { href: 'mailto:' + resumeData.personalInfo.email, style: { color: '#ffffff' } }, resumeData.personalInfo.email)),
      resumeData.personalInfo.phone && React.createElement('li', null, resumeData.personalInfo.phone),
      resumeData.personalInfo.location && React.createElement('li', null, resumeData.personalInfo.location),
      resumeData.personalInfo.linkedin && React.createElement('li', null, React.createElement('a', { href: resumeData.personalInfo.linkedin, style: { color: '#ffffff' } }, 'LinkedIn'))
    ),
    (resumeData.skills || []).length > 0 && React.createElement('div', null,
      React.createElement('h2', { style: { fontSize: 16, textTransform: 'uppercase', letterSpacing: 1 } }, 'Skills'),
      React.createElement('ul', { style: { paddingLeft: 16 } },
        resumeData.skills.map((s, i) => React.createElement('li', { key: i }, s.name + (s.level ? ' (' + s.level + ')' : ''))))
    )
  ),
  React.createElement('main', { style: { width: '68%', padding: 24 } },
    resumeData.personalInfo.summary && React.createElement('p', { style: { fontSize: 15, lineHeight: 1.5 } }, resumeData.personalInfo.summary),
    (resumeData.experience || []).length > 0 && React.createElement('section', null,
      React.createElement('h2', { style: { color: '#1e3a5f', fontSize: 18 } }, 'Experience'),
      resumeData.experience.map((job, i) => React.createElement('article', { key: i, style: { marginBottom: 16 } },
        React.createElement('h3', { style: { margin: 0 } }, job.position),
        React.createElement('div', { style: { color: '#6b7280' } }, job.company + ' | ' + job.startDate + ' to ' + (job.current ? 'Present' : job.endDate)),
        job.description && React.createElement('p', null, job.description),
        (job.highlights || []).length > 0 && React.createElement('ul', null,
          job.highlights.map((h, j) => React.createElement('li', { key: j }, h)))
      ))
    ),
    (resumeData.education || []).length > 0 && React.createElement('section', null,
      React.createElement('h2', { style: { color: '#1e3a5f', fontSize: 18 } }, 'Education'),
      resumeData.education.map((edu, i) => React.createElement('div', { key: i, style: { marginBottom: 8 } },
        React.createElement('strong', null, edu.institution),
        React.createElement('div', null, edu.degree + (edu.field ? ', ' + edu.field : '') + (edu.gpa ? ' (GPA ' + edu.gpa + ')' : ''))
      ))
    ),
    (resumeData.projects || []).length > 0 && React.createElement('section', null,
      React.createElement('h2', { style: { color: '#1e3a5f', fontSize: 18 } }, 'Projects'),
      resumeData.projects.map((project, i) => React.createElement('div', { key: i, style: { marginBottom: 8 } },
        React.createElement('strong', null, project.name),
        React.createElement('p', { style: { margin: '2px 0' } }, project.description)
      ))
    )
  )
)`

const minimalTemplate = `React.createElement('div', { className: 'resume resume-minimal', style: { fontFamily: 'Inter, sans-serif', fontSize: 13, lineHeight: 1.6, padding: 40 } },
  React.createElement('h1', { style: { fontWeight: 300, fontSize: 30, marginBottom: 0 } }, resumeData.personalInfo.fullName),
  React.createElement('p', { style: { color: '#666666', marginTop: 0 } },
    [resumeData.personalInfo.email, resumeData.personalInfo.phone, resumeData.personalInfo.website].filter(v => v).join('  ·  ')),
  resumeData.personalInfo.summary && React.createElement('p', null, resumeData.personalInfo.summary),
  (resumeData.experience || []).length > 0 && React.createElement('section', null,
    React.createElement('h2', { style: { fontWeight: 400, fontSize: 14, textTransform: 'uppercase', color: '#999999' } }, 'Experience'),
    resumeData.experience.map((job, i) => React.createElement('p', { key: i },
      React.createElement('strong', null, job.position), ' at ' + job.company + ', ' + job.startDate + ' to ' + (job.current ? 'Present' : job.endDate),
      React.createElement('br', null),
      job.description
    ))
  ),
  (resumeData.education || []).length > 0 && React.createElement('section', null,
    React.createElement('h2', { style: { fontWeight: 400, fontSize: 14, textTransform: 'uppercase', color: '#999999' } }, 'Education'),
    resumeData.education.map((edu, i) => React.createElement('p', { key: i }, edu.degree + ', ' + edu.institution))
  ),
  (resumeData.skills || []).length > 0 && React.createElement('p', null,
    React.createElement('strong', null, 'Skills: '), resumeData.skills.map(s => s.name).join(', '))
)`

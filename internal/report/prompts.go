// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import "text/template"

// auditPromptTmpl produces the fixed ten-section deep-metrics report for one
// trial. The JSON keys must match types.DeepReport exactly.
var auditPromptTmpl = template.Must(template.New("audit").Funcs(template.FuncMap{
	"deref": func(p *int) int { return *p },
}).Parse(`You are a clinical trial analyst. Produce a structured audit of the trial below. Write each section as 2-4 sentences of plain prose.

Respond with a JSON object containing exactly these string keys: "overview", "design", "endpoints", "eligibility", "enrollment_metrics", "timeline", "sponsor_track_record", "competitive_context", "risks", "outlook". Do not include any text outside the JSON object.

Trial:
- Registry id: {{.NCTID}}
- Title: {{.Title}}
- Status: {{.Status}}
- Phases: {{range $i, $p := .Phases}}{{if $i}}, {{end}}{{$p}}{{end}}
- Sponsor: {{.Sponsor}}
{{- if not .StartDate.IsZero}}
- Start date: {{.StartDate.Format "2006-01-02"}}
{{- end}}
{{- if .EnrollmentCount}}
- Enrollment: {{deref .EnrollmentCount}}
{{- end}}
`))

// comparePromptTmpl builds the side-by-side matrix for 2-4 trials.
var comparePromptTmpl = template.Must(template.New("compare").Parse(`You are a clinical trial analyst. Compare the trials below side by side.

Respond with a JSON object with:
- "headers": array of strings, one per trial, in the order given (registry id plus a short label)
- "rows": array of objects with "label" (string, the comparison dimension) and "values" (array of strings, one per trial, same order as headers). Cover at least: phase, status, sponsor, enrollment, primary focus.
- "summary": optional string with a brief overall comparison.
Do not include any text outside the JSON object.

Trials:
{{range .}}- {{.NCTID}}: {{.Title}} ({{.Status}}{{if .Sponsor}}, sponsor {{.Sponsor}}{{end}})
{{end}}`))

// pipelinePromptTmpl groups the collection into a phase-organized pipeline view.
var pipelinePromptTmpl = template.Must(template.New("pipeline").Parse(`You are a clinical trial analyst. Organize the trials below into a development pipeline view grouped by phase.

Respond with a JSON object with a "phases" array. Each phase has "name" (string, e.g. "Phase 3") and "groups" (array). Each group has "name" (a mechanism or intervention cluster), "description" (one sentence), and "trial_ids" (array of registry ids copied exactly from the input). Every input trial must appear in exactly one group. Do not include any text outside the JSON object.

Trials:
{{range .}}- {{.NCTID}}: {{.Title}} (phases: {{range $i, $p := .Phases}}{{if $i}}, {{end}}{{$p}}{{end}})
{{end}}`))

// architecturePromptTmpl asks the image oracle for a landscape diagram. The
// oracle's reply is stored opaquely.
var architecturePromptTmpl = template.Must(template.New("architecture").Parse(`Render a landscape diagram of the clinical development programs below, grouped by phase and mechanism.

Respond with a JSON object with "mime_type" (string) and "data_base64" (string, the encoded image). Do not include any text outside the JSON object.

Programs:
{{range .}}- {{.NCTID}}: {{.Title}}
{{end}}`))

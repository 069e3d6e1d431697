package llm

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
)

// SystemPrompt is sent as the system message ahead of every user prompt.
const SystemPrompt = "You are an expert SEO title optimizer. Provide concise, effective Product title suggestions."

//go:embed prompt.tmpl
var promptSource string

// text/template on purpose: fields are interpolated verbatim.
var promptTemplate = template.Must(template.New("prompt").Parse(promptSource))

// RenderPrompt builds the user prompt for req.
func RenderPrompt(req TitleRequest) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, req); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

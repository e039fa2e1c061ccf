package llms

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed court.tmpl
var courtPromptTemplate string

var courtPrompt = template.Must(template.New("court").Funcs(template.FuncMap{
	"upper": func(s fmt.Stringer) string { return strings.ToUpper(s.String()) },
}).Parse(courtPromptTemplate))

// RenderCourtPrompt renders the instructions that ask a model for the next
// turn of the hearing described by req.
func RenderCourtPrompt(req CourtRequest) (string, error) {
	var prompt strings.Builder
	err := courtPrompt.Execute(&prompt, struct {
		CourtRequest
		Opponent fmt.Stringer
	}{CourtRequest: req, Opponent: req.OpponentRole()})
	if err != nil {
		return "", fmt.Errorf("failed to render court prompt: %w", err)
	}
	return prompt.String(), nil
}

package content

import (
	"strings"
	"text/template"
)

// Signature is the sign-off block of the fallback letter.
type Signature struct {
	Name         string
	PortfolioURL string
}

// DefaultSignature returns the sign-off used when no sender profile is configured.
func DefaultSignature() Signature {
	return Signature{
		Name:         "Sandeep Kumar",
		PortfolioURL: "https://sandeepkumar3869.github.io/PORTFOLIO/",
	}
}

var fallbackTemplate = template.Must(template.New("fallback").Parse(`Dear Hiring Manager,

I am writing to apply for the {{.Position}} position at {{.Company}}.

I bring experience in data analysis and reporting, with a focus on transforming data into actionable insights. I am eager to contribute to a data-driven organization like {{.Company}}.
{{if .PortfolioURL}}
Portfolio: {{.PortfolioURL}}
{{end}}
Best regards,
{{.Name}}
`))

// FallbackBody renders the fixed letter used whenever the text service cannot produce a draft.
func FallbackBody(companyName, position string, sig Signature) string {
	if sig.Name == "" {
		sig.Name = DefaultSignature().Name
	}

	var sb strings.Builder
	err := fallbackTemplate.Execute(&sb, struct {
		Company      string
		Position     string
		Name         string
		PortfolioURL string
	}{
		Company:      companyName,
		Position:     strings.TrimSpace(position),
		Name:         sig.Name,
		PortfolioURL: sig.PortfolioURL,
	})
	if err != nil {
		// The template is static; Execute can only fail on a broken writer.
		return "Dear Hiring Manager,\n\nI am writing to apply for the " + position + " position at " + companyName + ".\n\nBest regards,\n" + sig.Name + "\n"
	}
	return sb.String()
}

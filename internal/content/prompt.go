package content

import (
	"fmt"
	"strings"

	"github.com/jonathan/job-mailer/internal/company"
	"github.com/jonathan/job-mailer/internal/prompts"
)

// BuildPrompt returns the fixed-structure instruction sent to the text service.
func BuildPrompt(companyName, position, resumeText string) (string, error) {
	return prompts.Email(prompts.ApplicationEmail, prompts.EmailData{
		Company:  companyName,
		Position: position,
		Resume:   strings.TrimSpace(resumeText),
	})
}

// Subject builds the subject line. It is always derived here, whatever body path was used.
func Subject(position, companyName string) string {
	return fmt.Sprintf("Application for %s – %s", company.Title(strings.TrimSpace(position)), companyName)
}

// Package prompts holds the instructions sent to the text-generation service.
// They live in email.json, embedded at compile time and parsed once.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// ApplicationEmail is the key of the job application prompt.
const ApplicationEmail = "application-email"

//go:embed email.json
var emailJSON []byte

var loadEmailPrompts = sync.OnceValues(func() (map[string]string, error) {
	var prompts map[string]string
	if err := json.Unmarshal(emailJSON, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse email.json: %w", err)
	}
	return prompts, nil
})

// EmailData fills the {{.Company}}, {{.Position}} and {{.Resume}} placeholders.
type EmailData struct {
	Company  string
	Position string
	Resume   string
}

// Email renders the prompt stored under key. Placeholders are replaced in a
// single pass, so resume text that looks like a placeholder is sent as written.
func Email(key string, data EmailData) (string, error) {
	prompts, err := loadEmailPrompts()
	if err != nil {
		return "", err
	}

	template, ok := prompts[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in email.json", key)
	}

	return strings.NewReplacer(
		"{{.Company}}", data.Company,
		"{{.Position}}", data.Position,
		"{{.Resume}}", data.Resume,
	).Replace(template), nil
}

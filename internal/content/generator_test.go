package content

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-mailer/internal/types"
)

type fakeClient struct {
	text    string
	err     error
	prompts []string
	block   bool
}

func (f *fakeClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

func (f *fakeClient) Model() string { return "fake-model" }
func (f *fakeClient) Close() error  { return nil }

func TestGenerate_UsesServiceBodyVerbatim(t *testing.T) {
	client := &fakeClient{text: "\n Dear Hiring Manager,\nI am applying for the role.\n"}
	gen := NewGenerator(client, Options{}, nil)

	email := gen.Generate(context.Background(), "Acme", "data analyst", "Resume text")

	assert.Equal(t, "Dear Hiring Manager,\nI am applying for the role.", email.Body)
	assert.Equal(t, types.BodySourceAI, email.Source)
	assert.Equal(t, "Application for Data Analyst – Acme", email.Subject)

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Company: Acme")
	assert.Contains(t, client.prompts[0], "Position: data analyst")
	assert.Contains(t, client.prompts[0], "Resume text")
}

func TestGenerate_FallsBackOnFailure(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeClient
	}{
		{"service error", &fakeClient{err: errors.New("quota exceeded")}},
		{"empty answer", &fakeClient{text: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewGenerator(tt.client, Options{}, nil)

			email := gen.Generate(context.Background(), "Globex", "bi analyst", "")

			assert.Equal(t, types.BodySourceTemplate, email.Source)
			assert.Equal(t, "Application for Bi Analyst – Globex", email.Subject)
			assert.Contains(t, email.Body, "I am writing to apply for the bi analyst position at Globex.")
			assert.Contains(t, email.Body, "Sandeep Kumar")
		})
	}
}

func TestGenerate_NilClient(t *testing.T) {
	gen := NewGenerator(nil, Options{Signature: Signature{Name: "Jo Doe", PortfolioURL: "https://jo.dev"}}, nil)

	email := gen.Generate(context.Background(), "Initech", "Engineer", "")

	assert.Equal(t, types.BodySourceTemplate, email.Source)
	assert.Contains(t, email.Body, "Portfolio: https://jo.dev")
	assert.True(t, strings.HasSuffix(email.Body, "Best regards,\nJo Doe\n"))
}

func TestGenerate_TimeoutFallsBack(t *testing.T) {
	client := &fakeClient{block: true}
	gen := NewGenerator(client, Options{Timeout: 10 * time.Millisecond}, nil)

	email := gen.Generate(context.Background(), "Acme", "Analyst", "")

	assert.Equal(t, types.BodySourceTemplate, email.Source)
	assert.NotEmpty(t, email.Body)
}

func TestGenerate_AlwaysNonEmpty(t *testing.T) {
	gen := NewGenerator(&fakeClient{err: errors.New("boom")}, Options{}, nil)

	for _, tc := range []struct{ company, position string }{
		{"Company", "Analyst"},
		{"", ""},
		{"Acme", "  "},
	} {
		email := gen.Generate(context.Background(), tc.company, tc.position, "")
		assert.NotEmpty(t, email.Subject)
		assert.NotEmpty(t, email.Body)
	}
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Application for Business Intelligence Analyst – Mercedes Benz",
		Subject("business intelligence analyst", "Mercedes Benz"))
	assert.Equal(t, "Application for Data Analyst – Company", Subject("  DATA analyst ", "Company"))
}

func TestFallbackBody_WithoutPortfolio(t *testing.T) {
	body := FallbackBody("Acme", "Analyst", Signature{Name: "Jo Doe"})

	assert.NotContains(t, body, "Portfolio:")
	assert.True(t, strings.HasPrefix(body, "Dear Hiring Manager,\n\n"))
	assert.Contains(t, body, "like Acme.\n\nBest regards,\nJo Doe\n")
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt("Acme", "Analyst", "  Skills: SQL  ")
	require.NoError(t, err)

	assert.Contains(t, prompt, "5-6 lines max")
	assert.Contains(t, prompt, "No emojis")
	assert.True(t, strings.HasSuffix(prompt, "Resume:\nSkills: SQL\n"))
}

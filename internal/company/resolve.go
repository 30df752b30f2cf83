// Package company infers a display company name from a recruiter's email address.
package company

import (
	"strings"
)

// FallbackName is used when neither the email domain nor the sheet yields a name.
const FallbackName = "Company"

// genericDomains are consumer webmail providers; their domains never name an employer.
var genericDomains = map[string]struct{}{
	"gmail.com":   {},
	"yahoo.com":   {},
	"outlook.com": {},
	"hotmail.com": {},
}

// IsGenericDomain reports whether domain belongs to a consumer webmail provider.
func IsGenericDomain(domain string) bool {
	_, ok := genericDomains[strings.ToLower(strings.TrimSpace(domain))]
	return ok
}

// Resolve returns the company name to address in an application email.
//
// Corporate addresses yield the first domain label, title-cased with hyphens
// turned into spaces ("x@my-startup.io" -> "My Startup"). Generic webmail
// addresses and unparsable input fall back to the trimmed sheet value, then to
// FallbackName.
func Resolve(contactEmail, sheetCompany string) string {
	fallback := strings.TrimSpace(sheetCompany)
	if fallback == "" {
		fallback = FallbackName
	}

	at := strings.LastIndex(contactEmail, "@")
	if at < 0 {
		return fallback
	}

	domain := strings.ToLower(strings.TrimSpace(contactEmail[at+1:]))
	if IsGenericDomain(domain) {
		return fallback
	}

	label := domain
	if dot := strings.Index(domain, "."); dot >= 0 {
		label = domain[:dot]
	}

	name := Title(strings.ReplaceAll(label, "-", " "))
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}

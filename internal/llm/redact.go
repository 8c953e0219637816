package llm

import (
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

var (
	queryCredential = regexp.MustCompile(`(?i)\b(key|api_key|apikey|access_token|token)=[^&\s"']+`)
	bearerToken     = regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/=-]+`)
)

type redactor struct {
	secrets []string
}

func newRedactor(secrets ...string) *redactor {
	r := &redactor{}
	for _, s := range secrets {
		if s = strings.TrimSpace(s); len(s) >= 4 {
			r.secrets = append(r.secrets, s)
		}
	}
	return r
}

func (r *redactor) scrub(msg string) string {
	if r != nil {
		for _, s := range r.secrets {
			msg = strings.ReplaceAll(msg, s, redacted)
		}
	}
	msg = queryCredential.ReplaceAllString(msg, "${1}="+redacted)
	return bearerToken.ReplaceAllString(msg, "Bearer "+redacted)
}

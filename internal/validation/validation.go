package validation

import (
	"net/mail"
	"strings"

	slackinerrors "slackin/internal/errors"
)

// ValidateEmail checks an invite submission address.
func ValidateEmail(email string) error {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return slackinerrors.ErrMissingEmail
	}
	address, err := mail.ParseAddress(trimmed)
	if err != nil || address.Address != trimmed {
		return slackinerrors.ErrInvalidEmail
	}
	// mail.ParseAddress accepts local addresses like "user@host"; Slack
	// requires a dotted domain.
	at := strings.LastIndex(trimmed, "@")
	if at < 0 || !strings.Contains(trimmed[at+1:], ".") {
		return slackinerrors.ErrInvalidEmail
	}
	return nil
}

// ValidateLocale checks a locale tag like "en" or "pt-br".
func ValidateLocale(tag string) error {
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return slackinerrors.ErrInvalidLocale
	}
	parts := strings.Split(trimmed, "-")
	if len(parts) > 2 {
		return slackinerrors.ErrInvalidLocale
	}
	if len(parts[0]) < 2 || len(parts[0]) > 3 || !isLowerAlpha(parts[0]) {
		return slackinerrors.ErrInvalidLocale
	}
	if len(parts) == 2 && (parts[1] == "" || !isLowerAlnum(parts[1])) {
		return slackinerrors.ErrInvalidLocale
	}
	return nil
}

// ValidateSlackToken checks the configured API token shape.
func ValidateSlackToken(token string) error {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return slackinerrors.ErrMissingToken
	}
	if !strings.HasPrefix(trimmed, "xox") {
		return slackinerrors.ErrInvalidToken
	}
	return nil
}

// ValidateChannels checks invite channel names. Slack channel names are
// lowercase, at most 80 characters, with hyphens and underscores allowed.
func ValidateChannels(channels []string) error {
	for _, channel := range channels {
		name := strings.TrimPrefix(strings.TrimSpace(channel), "#")
		if name == "" || len(name) > 80 {
			return slackinerrors.ErrInvalidChannel
		}
		for _, r := range name {
			if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
				continue
			}
			return slackinerrors.ErrInvalidChannel
		}
	}
	return nil
}

func isLowerAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func isLowerAlnum(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

package services

import (
	"net/url"
	"strings"

	apperrors "github.com/studyhub/studyhub/pkg/errors"
)

// DefaultContentHosts lists the providers accepted when none are configured.
var DefaultContentHosts = []string{"drive.google.com"}

// ContentURLPolicy decides which external links may back a File.
type ContentURLPolicy struct {
	hosts []string
}

// NewContentURLPolicy builds a policy from allowed host names. Blank entries
// are ignored; an empty list falls back to DefaultContentHosts.
func NewContentURLPolicy(hosts []string) *ContentURLPolicy {
	normalised := make([]string, 0, len(hosts))
	for _, host := range hosts {
		host = strings.Trim(strings.ToLower(strings.TrimSpace(host)), ".")
		if host != "" {
			normalised = append(normalised, host)
		}
	}
	if len(normalised) == 0 {
		normalised = append(normalised, DefaultContentHosts...)
	}
	return &ContentURLPolicy{hosts: normalised}
}

// Hosts returns the allowed host names.
func (p *ContentURLPolicy) Hosts() []string {
	return append([]string(nil), p.hosts...)
}

// Allowed reports whether raw is an http(s) URL on an allowed host or one of its subdomains.
func (p *ContentURLPolicy) Allowed(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false
	}
	for _, allowed := range p.hosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

// Validate returns ErrInvalidContentURL when raw is not allowed.
func (p *ContentURLPolicy) Validate(raw string) error {
	if p.Allowed(raw) {
		return nil
	}
	return apperrors.ErrInvalidContentURL.WithMessage(
		"content URL must link to one of: %s", strings.Join(p.hosts, ", "),
	)
}

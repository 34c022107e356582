// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package urlcheck

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// DomainParts is the public-suffix-aware decomposition of one URL.
// Domain is the bare registrable label ("amazon" in "amazon.com"),
// FullDomain is Domain plus Suffix. For IPv4/IPv6 literal hosts the
// whole host is carried in Domain and FullDomain with an empty Suffix.
type DomainParts struct {
	Scheme     string
	Host       string // host[:port] as written
	Subdomain  string
	Domain     string
	Suffix     string
	FullDomain string
	IPLiteral  bool
}

// ParseError marks a URL whose structure could not be decomposed. The
// rule engine converts it to a degraded analysis; it never escapes to
// callers of Analyze.
type ParseError struct {
	URL    string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %q: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %q: %s", e.URL, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Decompose splits a URL into scheme, host, subdomain, registrable
// domain, and public suffix. The suffix split honors the public suffix
// list, so "bbc.co.uk" yields domain "bbc" and suffix "co.uk" rather
// than a naive last-label split. Hosts are IDNA-mapped to ASCII and
// lowercased before splitting.
func Decompose(rawURL string) (DomainParts, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return DomainParts{}, &ParseError{URL: rawURL, Reason: "invalid URL syntax", Err: err}
	}

	host := u.Hostname()
	if host == "" {
		return DomainParts{}, &ParseError{URL: rawURL, Reason: "missing host"}
	}

	parts := DomainParts{
		Scheme: u.Scheme,
		Host:   u.Host,
	}

	if ip := net.ParseIP(host); ip != nil {
		parts.Domain = host
		parts.FullDomain = host
		parts.IPLiteral = true
		return parts, nil
	}

	ascii, err := hostToASCII(host)
	if err != nil {
		return DomainParts{}, &ParseError{URL: rawURL, Reason: "host is not a valid domain", Err: err}
	}

	registrable, err := publicsuffix.EffectiveTLDPlusOne(ascii)
	if err != nil {
		return DomainParts{}, &ParseError{URL: rawURL, Reason: "no registrable domain", Err: err}
	}

	suffix, _ := publicsuffix.PublicSuffix(ascii)

	parts.FullDomain = registrable
	parts.Suffix = suffix
	parts.Domain = strings.TrimSuffix(registrable, "."+suffix)
	if rest := strings.TrimSuffix(ascii, registrable); rest != "" {
		parts.Subdomain = strings.TrimSuffix(rest, ".")
	}

	return parts, nil
}

func hostToASCII(host string) (string, error) {
	host = strings.ToLower(strings.TrimRight(strings.TrimSpace(host), "."))
	if host == "" {
		return "", fmt.Errorf("empty host")
	}

	p := idna.New(idna.MapForLookup(), idna.Transitional(false))
	ascii, err := p.ToASCII(host)
	if err != nil {
		return "", err
	}
	if strings.Contains(ascii, "..") || strings.HasPrefix(ascii, ".") {
		return "", fmt.Errorf("empty label in host %q", host)
	}
	return ascii, nil
}

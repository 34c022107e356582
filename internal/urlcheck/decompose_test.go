// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package urlcheck

import (
	"errors"
	"testing"
)

func TestDecompose_Basic(t *testing.T) {
	parts, err := Decompose("https://www.google.com/search")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if parts.Scheme != "https" {
		t.Errorf("scheme = %q, want https", parts.Scheme)
	}
	if parts.Subdomain != "www" {
		t.Errorf("subdomain = %q, want www", parts.Subdomain)
	}
	if parts.Domain != "google" {
		t.Errorf("domain = %q, want google", parts.Domain)
	}
	if parts.Suffix != "com" {
		t.Errorf("suffix = %q, want com", parts.Suffix)
	}
	if parts.FullDomain != "google.com" {
		t.Errorf("fullDomain = %q, want google.com", parts.FullDomain)
	}
}

func TestDecompose_MultiLabelSuffix(t *testing.T) {
	cases := []struct {
		url        string
		domain     string
		suffix     string
		fullDomain string
	}{
		{"https://www.bbc.co.uk/news", "bbc", "co.uk", "bbc.co.uk"},
		{"http://shop.example.com.au", "example", "com.au", "example.com.au"},
		{"https://mail.google.com", "google", "com", "google.com"},
	}

	for _, c := range cases {
		parts, err := Decompose(c.url)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", c.url, err)
			continue
		}
		if parts.Domain != c.domain {
			t.Errorf("%s: domain = %q, want %q", c.url, parts.Domain, c.domain)
		}
		if parts.Suffix != c.suffix {
			t.Errorf("%s: suffix = %q, want %q", c.url, parts.Suffix, c.suffix)
		}
		if parts.FullDomain != c.fullDomain {
			t.Errorf("%s: fullDomain = %q, want %q", c.url, parts.FullDomain, c.fullDomain)
		}
	}
}

func TestDecompose_EmptySubdomain(t *testing.T) {
	parts, err := Decompose("https://github.com/user/repo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parts.Subdomain != "" {
		t.Errorf("subdomain = %q, want empty", parts.Subdomain)
	}
}

func TestDecompose_DeepSubdomain(t *testing.T) {
	parts, err := Decompose("http://a.b.c.d.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parts.Subdomain != "a.b.c.d" {
		t.Errorf("subdomain = %q, want a.b.c.d", parts.Subdomain)
	}
}

func TestDecompose_IPLiteral(t *testing.T) {
	parts, err := Decompose("http://192.168.1.100/bank/login")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !parts.IPLiteral {
		t.Error("expected IPLiteral")
	}
	if parts.FullDomain != "192.168.1.100" {
		t.Errorf("fullDomain = %q, want the IP itself", parts.FullDomain)
	}
	if parts.Suffix != "" {
		t.Errorf("suffix = %q, want empty", parts.Suffix)
	}
}

func TestDecompose_HostWithPort(t *testing.T) {
	parts, err := Decompose("http://evil.tk:8080/login")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parts.Host != "evil.tk:8080" {
		t.Errorf("host = %q, want evil.tk:8080", parts.Host)
	}
	if parts.FullDomain != "evil.tk" {
		t.Errorf("fullDomain = %q, want evil.tk", parts.FullDomain)
	}
}

func TestDecompose_Unicode(t *testing.T) {
	parts, err := Decompose("https://münchen.de")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parts.FullDomain != "xn--mnchen-3ya.de" {
		t.Errorf("fullDomain = %q, want punycode form", parts.FullDomain)
	}
}

func TestDecompose_Failures(t *testing.T) {
	bad := []string{
		"",
		"http://",
		"not a url at all",
		"http://exa mple.com",
		"http://com",
	}

	for _, raw := range bad {
		_, err := Decompose(raw)
		if err == nil {
			t.Errorf("%q: expected decomposition to fail", raw)
			continue
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("%q: error is %T, want *ParseError", raw, err)
		}
	}
}

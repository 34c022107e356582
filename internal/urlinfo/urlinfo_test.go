// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package urlinfo

import (
	"context"
	"testing"
)

func TestHostOf(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"https://www.example.com/path", "www.example.com"},
		{"http://example.com:8080/x", "example.com"},
		{"example.com/path", "example.com"},
		{"example.com:443/path", "example.com"},
		{"http://192.168.1.100/bank", "192.168.1.100"},
	}
	for _, c := range cases {
		got, err := hostOf(c.raw)
		if err != nil {
			t.Errorf("hostOf(%q): unexpected error: %v", c.raw, err)
			continue
		}
		if got != c.want {
			t.Errorf("hostOf(%q) = %q, want %q", c.raw, got, c.want)
		}
	}

	if _, err := hostOf(""); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestLookup_IPLiteralResolvesToItself(t *testing.T) {
	r := New()

	info := r.Lookup(context.Background(), "http://192.168.1.100/bank/login")
	if !info.DNSResolved {
		t.Error("IP literal should count as resolved")
	}
	if info.IPAddress != "192.168.1.100" {
		t.Errorf("ip = %q, want the literal itself", info.IPAddress)
	}
}

func TestLookup_BadInput(t *testing.T) {
	r := New()

	info := r.Lookup(context.Background(), "")
	if info.Err == "" {
		t.Error("expected error for empty URL")
	}
	if info.DNSResolved {
		t.Error("unresolvable input must not be marked resolved")
	}
}

// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package urlinfo gathers auxiliary facts about a URL's host: whether
// it resolves in DNS and who the registrar is. None of it feeds the
// structural risk score — it is context for the person reading the
// report, invoked and timeout-bounded by the caller.
package urlinfo

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/miekg/dns"

	"github.com/swarai-git/digital-literacy-assistant/internal/telemetry"
)

const (
	DefaultResolver = "1.1.1.1:53"

	dnsTimeout   = 2 * time.Second
	whoisTimeout = 5 * time.Second
)

// Info reports DNS reachability for one URL's host.
type Info struct {
	Domain      string `json:"domain"`
	DNSResolved bool   `json:"dns_resolved"`
	IPAddress   string `json:"ip_address,omitempty"`
	Err         string `json:"error,omitempty"`
}

type Resolver struct {
	server     string
	dnsClient  *dns.Client
	registry   *telemetry.Registry
	whoisCache *telemetry.TTLCache[string]
}

type Option func(*Resolver)

func WithServer(server string) Option {
	return func(r *Resolver) { r.server = server }
}

func WithTelemetry(reg *telemetry.Registry) Option {
	return func(r *Resolver) { r.registry = reg }
}

func New(opts ...Option) *Resolver {
	r := &Resolver{
		server:     DefaultResolver,
		dnsClient:  &dns.Client{Timeout: dnsTimeout},
		whoisCache: telemetry.NewTTLCache[string]("whois", 256, time.Hour),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup resolves the URL's host to an address. IP-literal hosts are
// trivially "resolved" to themselves.
func (r *Resolver) Lookup(ctx context.Context, rawURL string) Info {
	host, err := hostOf(rawURL)
	if err != nil {
		return Info{Err: err.Error()}
	}

	info := Info{Domain: host}

	if ip := net.ParseIP(host); ip != nil {
		info.DNSResolved = true
		info.IPAddress = host
		return info
	}

	start := time.Now()
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), dns.TypeA)

	in, _, err := r.dnsClient.ExchangeContext(ctx, m, r.server)
	if err != nil {
		if r.registry != nil {
			r.registry.RecordFailure(telemetry.ProviderDNS, err.Error())
		}
		info.Err = fmt.Sprintf("dns lookup failed: %v", err)
		return info
	}
	if r.registry != nil {
		r.registry.RecordSuccess(telemetry.ProviderDNS, time.Since(start))
	}

	for _, ans := range in.Answer {
		if a, ok := ans.(*dns.A); ok {
			info.DNSResolved = true
			info.IPAddress = a.A.String()
			break
		}
	}

	return info
}

// Registrar returns the registrar name for a registrable domain via
// WHOIS. Results are cached for an hour; registrars don't churn.
func (r *Resolver) Registrar(ctx context.Context, domain string) (string, error) {
	if cached, ok := r.whoisCache.Get(domain); ok {
		return cached, nil
	}

	if r.registry != nil && r.registry.InCooldown(telemetry.ProviderWHOIS) {
		return "", fmt.Errorf("whois provider in cooldown")
	}

	start := time.Now()

	type result struct {
		name string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		raw, err := whois.Whois(domain)
		if err != nil {
			ch <- result{err: fmt.Errorf("whois query: %w", err)}
			return
		}
		parsed, err := whoisparser.Parse(raw)
		if err != nil {
			ch <- result{err: fmt.Errorf("whois parse: %w", err)}
			return
		}
		if parsed.Registrar == nil || parsed.Registrar.Name == "" {
			ch <- result{err: fmt.Errorf("no registrar in whois record")}
			return
		}
		ch <- result{name: parsed.Registrar.Name}
	}()

	select {
	case <-ctx.Done():
		if r.registry != nil {
			r.registry.RecordFailure(telemetry.ProviderWHOIS, ctx.Err().Error())
		}
		return "", ctx.Err()
	case <-time.After(whoisTimeout):
		if r.registry != nil {
			r.registry.RecordFailure(telemetry.ProviderWHOIS, "timeout")
		}
		return "", fmt.Errorf("whois lookup timed out")
	case res := <-ch:
		if res.err != nil {
			if r.registry != nil {
				r.registry.RecordFailure(telemetry.ProviderWHOIS, res.err.Error())
			}
			return "", res.err
		}
		if r.registry != nil {
			r.registry.RecordSuccess(telemetry.ProviderWHOIS, time.Since(start))
		}
		r.whoisCache.Set(domain, res.name)
		return res.name, nil
	}
}

func hostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	host := u.Hostname()
	if host == "" {
		// Tolerate bare hosts handed in without a scheme.
		host = strings.Split(strings.TrimSpace(rawURL), "/")[0]
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
	}
	if host == "" {
		return "", fmt.Errorf("no host in %q", rawURL)
	}
	return host, nil
}

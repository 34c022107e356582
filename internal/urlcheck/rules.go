// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package urlcheck

import (
	"fmt"
	"regexp"
	"strings"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// RedFlag is one explained reason contributing to a URL's risk score.
type RedFlag struct {
	Flag        string   `json:"flag"`
	Severity    Severity `json:"severity"`
	Explanation string   `json:"explanation"`
}

const (
	// SafeScoreThreshold is the score below which a URL is verdicted
	// safe. Tunable, but 40 is the calibrated default.
	SafeScoreThreshold = 40

	maxURLLength       = 75
	maxSubdomainDots   = 2
	maxDomainHyphens   = 2
	malformedRiskScore = 50
	whitelistReduction = 30
)

type ruleHit struct {
	weight int
	flag   RedFlag
}

// A rule inspects one URL and either fires with a weight and a red
// flag or stays silent. Rules are pure and independent: every rule
// runs on every URL regardless of what fired before it.
type rule func(parts DomainParts, rawURL string) *ruleHit

// scoringRules run in order; the order is part of the contract since
// RedFlags are reported in evaluation order.
var scoringRules = []rule{
	ruleIPHost,
	ruleLongURL,
	ruleSuspiciousTLD,
	ruleAtSymbol,
	ruleDeepSubdomain,
	ruleNoHTTPS,
	rulePhishingKeywords,
	ruleTyposquat,
	ruleHyphenHeavy,
}

// Prefix match on host[:port], mirroring how attackers lead with a
// dotted quad; "1.2.3.4.evil.com" still counts.
var ipv4PrefixPattern = regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+`)

func ruleIPHost(parts DomainParts, _ string) *ruleHit {
	if !ipv4PrefixPattern.MatchString(parts.Host) {
		return nil
	}
	return &ruleHit{weight: 30, flag: RedFlag{
		Flag:        "IP Address Used",
		Severity:    SeverityHigh,
		Explanation: "Legitimate sites use domain names, not raw IP addresses",
	}}
}

func ruleLongURL(_ DomainParts, rawURL string) *ruleHit {
	if len(rawURL) <= maxURLLength {
		return nil
	}
	return &ruleHit{weight: 15, flag: RedFlag{
		Flag:        "Unusually Long URL",
		Severity:    SeverityMedium,
		Explanation: fmt.Sprintf("URL is %d characters long. Phishing URLs are often excessively long.", len(rawURL)),
	}}
}

func ruleSuspiciousTLD(parts DomainParts, _ string) *ruleHit {
	if parts.Suffix == "" {
		return nil
	}
	dotted := "." + parts.Suffix
	for _, tld := range suspiciousTLDs {
		if dotted == tld {
			return &ruleHit{weight: 20, flag: RedFlag{
				Flag:        fmt.Sprintf("Suspicious Domain Extension (.%s)", parts.Suffix),
				Severity:    SeverityMedium,
				Explanation: fmt.Sprintf(".%s domains are commonly used in phishing attacks", parts.Suffix),
			}}
		}
	}
	return nil
}

func ruleAtSymbol(_ DomainParts, rawURL string) *ruleHit {
	if !strings.Contains(rawURL, "@") {
		return nil
	}
	return &ruleHit{weight: 35, flag: RedFlag{
		Flag:        "@ Symbol in URL",
		Severity:    SeverityHigh,
		Explanation: "The @ symbol can hide the real destination domain",
	}}
}

func ruleDeepSubdomain(parts DomainParts, _ string) *ruleHit {
	if parts.Subdomain == "" || strings.Count(parts.Subdomain, ".") <= maxSubdomainDots {
		return nil
	}
	return &ruleHit{weight: 20, flag: RedFlag{
		Flag:        "Too Many Subdomains",
		Severity:    SeverityMedium,
		Explanation: fmt.Sprintf("Multiple subdomains (%s) can indicate domain spoofing", parts.Subdomain),
	}}
}

func ruleNoHTTPS(parts DomainParts, _ string) *ruleHit {
	if parts.Scheme == "https" {
		return nil
	}
	return &ruleHit{weight: 10, flag: RedFlag{
		Flag:        "No HTTPS Encryption",
		Severity:    SeverityLow,
		Explanation: "URL doesn't use secure HTTPS protocol",
	}}
}

func rulePhishingKeywords(parts DomainParts, _ string) *ruleHit {
	domainLower := strings.ToLower(parts.FullDomain)
	var found []string
	for _, kw := range phishingKeywords {
		if strings.Contains(domainLower, kw) {
			found = append(found, kw)
		}
	}
	if len(found) == 0 {
		return nil
	}
	return &ruleHit{weight: 15, flag: RedFlag{
		Flag:        "Suspicious Keywords in Domain",
		Severity:    SeverityMedium,
		Explanation: fmt.Sprintf("Domain contains phishing keywords: %s", strings.Join(found, ", ")),
	}}
}

// ruleTyposquat stops at the first matching brand. One impersonation
// flag is enough; stacking +40 per brand would drown every other
// signal.
func ruleTyposquat(parts DomainParts, _ string) *ruleHit {
	candidate := strings.ToLower(parts.Domain)
	for _, brand := range brandNames {
		if candidate == brand {
			continue
		}
		if IsSimilar(candidate, brand) {
			return &ruleHit{weight: 40, flag: RedFlag{
				Flag:        "Possible Typosquatting",
				Severity:    SeverityHigh,
				Explanation: fmt.Sprintf("Domain '%s' looks similar to '%s' - possible impersonation", parts.Domain, brand),
			}}
		}
	}
	return nil
}

func ruleHyphenHeavy(parts DomainParts, _ string) *ruleHit {
	if strings.Count(parts.Domain, "-") <= maxDomainHyphens {
		return nil
	}
	return &ruleHit{weight: 10, flag: RedFlag{
		Flag:        "Many Hyphens in Domain",
		Severity:    SeverityLow,
		Explanation: "Excessive hyphens can indicate a fake domain",
	}}
}

// whitelistAdjustment is not a scoring rule: it runs after the
// additive rules, subtracts from the running total with a floor of
// zero, and files an informational flag rather than a warning.
func whitelistAdjustment(parts DomainParts) *ruleHit {
	full := strings.ToLower(parts.FullDomain)
	if _, ok := legitimateDomainSet[full]; !ok {
		return nil
	}
	return &ruleHit{weight: -whitelistReduction, flag: RedFlag{
		Flag:        "Known Legitimate Domain",
		Severity:    SeverityLow,
		Explanation: fmt.Sprintf("%s is a recognized legitimate domain", full),
	}}
}

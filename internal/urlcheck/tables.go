// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package urlcheck

import "strings"

// phishingKeywords are matched as case-insensitive substrings of the
// registrable domain plus suffix, never the path.
var phishingKeywords = []string{
	"verify", "account", "suspended", "locked", "confirm", "update",
	"secure", "login", "signin", "banking", "paypal", "amazon",
	"ebay", "apple", "microsoft", "netflix", "unusual",
}

// suspiciousTLDs carry a leading dot so multi-label public suffixes
// such as "co.uk" never false-positive on their last label.
var suspiciousTLDs = []string{
	".tk", ".ml", ".ga", ".cf", ".gq", ".xyz", ".top", ".work",
	".click", ".link", ".download", ".loan", ".win", ".bid",
}

// legitimateDomains is the whitelist of registrable domains that earn
// a score reduction. The bare first label of each entry doubles as the
// brand name list for typosquat matching.
var legitimateDomains = []string{
	"google.com", "facebook.com", "amazon.com", "apple.com",
	"microsoft.com", "netflix.com", "paypal.com", "twitter.com",
	"instagram.com", "linkedin.com", "youtube.com", "github.com",
}

var legitimateDomainSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(legitimateDomains))
	for _, d := range legitimateDomains {
		set[d] = struct{}{}
	}
	return set
}()

var brandNames = func() []string {
	brands := make([]string, 0, len(legitimateDomains))
	for _, d := range legitimateDomains {
		label, _, _ := strings.Cut(d, ".")
		brands = append(brands, label)
	}
	return brands
}()

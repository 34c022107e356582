// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package urlcheck

import (
	"regexp"
	"strings"
)

var (
	// schemeURLPattern matches http/https URLs. The $-_ range covers
	// digits, slash, colon, and most URL punctuation in one span.
	schemeURLPattern = regexp.MustCompile(`https?://(?:%[0-9a-fA-F]{2}|[a-zA-Z0-9$-_@.&+!*(),])+`)

	// bareHostPattern matches host-like tokens written without a
	// scheme, e.g. "www.paypa1.com" or "example.com/path". The label
	// group repeats so multi-label hosts are captured whole rather
	// than truncated at the second dot.
	bareHostPattern = regexp.MustCompile(`(?:www\.|[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}(?:/[^\s]*)?`)
)

// Extract scans free text and returns every syntactically plausible
// URL. Bare host matches are prefixed with "http://" so callers always
// receive parseable URLs. Deduplication is by exact string, so a
// scheme-prefixed "https://x.com" and the prepended "http://x.com"
// from the bare-host pass both survive. Purely lexical: no DNS, no
// network. Result order is unspecified; sort before comparing.
func Extract(text string) []string {
	seen := make(map[string]struct{})
	var urls []string

	add := func(u string) {
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	for _, m := range schemeURLPattern.FindAllString(text, -1) {
		add(m)
	}

	for _, m := range bareHostPattern.FindAllString(text, -1) {
		if !strings.HasPrefix(m, "http://") && !strings.HasPrefix(m, "https://") {
			m = "http://" + m
		}
		add(m)
	}

	return urls
}

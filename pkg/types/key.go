// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// LookupKey joins parts into a lookup key. Each part is trimmed, lowercased,
// and has internal whitespace collapsed, so "Coffee  Shops" and "coffee
// shops" share a key.
func LookupKey(parts ...string) string {
	norm := make([]string, len(parts))
	for i, p := range parts {
		norm[i] = strings.Join(strings.Fields(strings.ToLower(p)), " ")
	}
	return strings.Join(norm, "|")
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package serp

import "strings"

// Region is a search locale hint: an engine region code and the language
// results should be in.
type Region struct {
	Code     string
	Language string
}

// GlobalRegion searches without a regional bias.
var GlobalRegion = Region{Code: "wt-wt", Language: "en"}

// Global reports whether r carries no regional bias.
func (r Region) Global() bool {
	return r.Code == GlobalRegion.Code
}

// AcceptLanguage returns an Accept-Language header value for r.
func (r Region) AcceptLanguage() string {
	if r.Global() {
		return "en;q=0.9,*;q=0.5"
	}
	country := strings.ToUpper(strings.SplitN(r.Code, "-", 2)[0])
	return r.Language + "-" + country + "," + r.Language + ";q=0.9"
}

// regionAliases maps lowercase location names to engine region codes.
var regionAliases = map[string]Region{
	"united states":  {"us-en", "en"},
	"usa":            {"us-en", "en"},
	"us":             {"us-en", "en"},
	"america":        {"us-en", "en"},
	"united kingdom": {"uk-en", "en"},
	"uk":             {"uk-en", "en"},
	"england":        {"uk-en", "en"},
	"london":         {"uk-en", "en"},
	"canada":         {"ca-en", "en"},
	"australia":      {"au-en", "en"},
	"ireland":        {"ie-en", "en"},
	"new zealand":    {"nz-en", "en"},
	"india":          {"in-en", "en"},
	"germany":        {"de-de", "de"},
	"deutschland":    {"de-de", "de"},
	"austria":        {"at-de", "de"},
	"switzerland":    {"ch-de", "de"},
	"france":         {"fr-fr", "fr"},
	"paris":          {"fr-fr", "fr"},
	"spain":          {"es-es", "es"},
	"españa":         {"es-es", "es"},
	"mexico":         {"mx-es", "es"},
	"italy":          {"it-it", "it"},
	"netherlands":    {"nl-nl", "nl"},
	"portugal":       {"pt-pt", "pt"},
	"brazil":         {"br-pt", "pt"},
	"sweden":         {"se-sv", "sv"},
	"poland":         {"pl-pl", "pl"},
	"japan":          {"jp-jp", "ja"},
	"global":         GlobalRegion,
	"worldwide":      GlobalRegion,
	"international":  GlobalRegion,
}

// RegionForLocation maps a free-form location ("Austin, United States",
// "Germany") to a region. It checks the whole string, then each
// comma-separated part from the most general (last) to the most specific.
// Unknown locations search globally.
func RegionForLocation(location string) Region {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return GlobalRegion
	}
	if r, ok := regionAliases[loc]; ok {
		return r
	}
	parts := strings.Split(loc, ",")
	for i := len(parts) - 1; i >= 0; i-- {
		if r, ok := regionAliases[strings.TrimSpace(parts[i])]; ok {
			return r
		}
	}
	return GlobalRegion
}

package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AlphabetWhitelist restricts recognition to latin letters. Champion, item and
// prompt names are rendered without spaces or punctuation once whitelisted.
const AlphabetWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var (
	camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)
	spaceRun      = regexp.MustCompile(`\s+`)
)

// Keep drops every rune of text that is not in whitelist. An empty whitelist keeps everything.
func Keep(text, whitelist string) string {
	if whitelist == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(whitelist, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ChampionName cleans a recognized name panel read into the form used by
// composition data ("Miss Fortune\n" -> "MissFortune"). A read matching one of
// known regardless of case comes back as that name; any other all-lowercase
// read is title-cased.
func ChampionName(raw string, known []string) string {
	name := Keep(strings.TrimSpace(raw), AlphabetWhitelist)
	if name == "" {
		return ""
	}
	for _, k := range known {
		if strings.EqualFold(k, name) {
			return k
		}
	}
	if strings.ToLower(name) == name {
		return cases.Title(language.English).String(name)
	}
	return name
}

// DisplayName turns a whitelisted name back into words for labels ("MissFortune" -> "Miss Fortune").
func DisplayName(name string) string {
	if name == "" {
		return name
	}
	spaced := camelBoundary.ReplaceAllString(name, "$1 $2")
	spaced = spaceRun.ReplaceAllString(strings.TrimSpace(spaced), " ")

	runes := []rune(spaced)
	if unicode.IsLower(runes[0]) {
		return cases.Title(language.English, cases.NoLower).String(spaced)
	}
	return spaced
}

// NonEmpty reports whether every string has visible content.
func NonEmpty(texts []string) bool {
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			return false
		}
	}
	return true
}

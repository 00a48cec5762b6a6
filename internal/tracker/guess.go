package tracker

import (
	"regexp"
	"strings"
)

// guessRules strip the model's hedging from an uncertain description. Each
// rule replaces only its first match; order matters.
var guessRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)I see .*?, and what looks like .*?, but I'm not sure about the exact type of .*?\.`),
	regexp.MustCompile(`(?i)I'm not sure about the exact type of`),
	regexp.MustCompile(`(?i)I see .*?, and what looks like a`),
	regexp.MustCompile(`(?i)I see`),
	regexp.MustCompile(`(?i)looks like a`),
	regexp.MustCompile(`(?i)unclear`),
	regexp.MustCompile(`(?i)not sure`),
	regexp.MustCompile(`(?i)It appears to be`),
	regexp.MustCompile(`(?i), but I am not certain.`),
}

// Guess turns an uncertain description into a pre-filled food name. An empty
// result means the user has to type the name.
func Guess(description string) string {
	s := description
	for _, re := range guessRules {
		s = replaceFirst(re, s)
	}
	s = strings.ReplaceAll(s, `"`, "")
	return strings.TrimSpace(s)
}

func replaceFirst(re *regexp.Regexp, s string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + s[loc[1]:]
}

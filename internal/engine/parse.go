package engine

import (
	"regexp"
	"strings"
)

// Intent is the structured result of parsing a message addressed to the
// bot. Parsing is pure; all stateful decisions (roster scans, lookups)
// happen in the engine.
type Intent interface{ isIntent() }

// PeopleInPlace asks who has been seen in a place.
type PeopleInPlace struct {
	Place string
}

// Snack is a botsnack.
type Snack struct{}

// NickQuery is everything else: the text is handed to the lookup
// precedence ladder.
type NickQuery struct {
	Text string
}

func (PeopleInPlace) isIntent() {}
func (Snack) isIntent()         {}
func (NickQuery) isIntent()     {}

var (
	placeInFromRe   = regexp.MustCompile(`(?i)who is (?:in|from) (.*?)\??$`)
	placeKnowRe     = regexp.MustCompile(`(?i)who do you know in (.*?)\??$`)
	snackRe         = regexp.MustCompile(`(?i)botsnack`)
	addrRe          = regexp.MustCompile(`(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})`)
	whereIsRe       = regexp.MustCompile(`(?i)where is (\S+)`)
	interrogativeRe = regexp.MustCompile(`(?i)\b(?:where|who|locate)\b`)
	leadingTheRe    = regexp.MustCompile(`(?i)^the `)
)

// Parse classifies a message addressed to the bot.
func Parse(text string) Intent {
	if m := placeInFromRe.FindStringSubmatch(text); m != nil {
		return PeopleInPlace{Place: cleanPlace(m[1])}
	}
	if m := placeKnowRe.FindStringSubmatch(text); m != nil {
		return PeopleInPlace{Place: cleanPlace(m[1])}
	}
	if snackRe.MatchString(text) {
		return Snack{}
	}
	return NickQuery{Text: text}
}

func cleanPlace(place string) string {
	place = strings.TrimSpace(place)
	return leadingTheRe.ReplaceAllString(place, "")
}

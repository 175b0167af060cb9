package matcher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dinghy6/sabnzbd-scripts/internal/types"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultPromotion is the promotion token used when none is configured
const DefaultPromotion = "UFC"

var (
	reSeparators = regexp.MustCompile(`[.\s_]+`)
	reEdition    = regexp.MustCompile(`(?i)\b(early prelims|prelims|preliminary)`)
	reUHD        = regexp.MustCompile(`(?i)4k|uhd`)
	reResolution = regexp.MustCompile(`(?i)(\d{3,4}[pi])`)
	reNameToken  = regexp.MustCompile(`(?i)^[a-z]+(?:-[a-z]+)*$`)
)

// Tokens that may not start a fighter name on either side of "vs"
var (
	reservedBefore = []string{"ppv", "main", "event", "prelim", "preliminary"}
	reservedAfter  = []string{"ppv", "main", "prelim", "early", "web"}
)

// editionSynonyms corrects keyword spellings that are not edition names
var editionSynonyms = map[string]types.Edition{
	"early prelims": types.EditionEarlyPrelims,
	"prelims":       types.EditionPrelims,
	"preliminary":   types.EditionPrelims,
}

// eventPattern is one event number form, tried in priority order
type eventPattern struct {
	regex  *regexp.Regexp
	format func(m []string) string
}

// compileEventPatterns builds the three event number forms for a promotion
func compileEventPatterns(promotion string) ([]eventPattern, error) {
	p := regexp.QuoteMeta(strings.ToLower(promotion))

	numbered, err := regexp.Compile(`(?i)\b` + p + ` (\d{1,4})\b`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile event pattern for %q: %w", promotion, err)
	}
	fightNight, err := regexp.Compile(`(?i)\b` + p + ` fight night (\d{1,4})\b`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile fight night pattern for %q: %w", promotion, err)
	}
	broadcast, err := regexp.Compile(`(?i)\b` + p + ` on (\w+) (\d{1,4})\b`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile broadcast pattern for %q: %w", promotion, err)
	}

	return []eventPattern{
		{numbered, func(m []string) string {
			return promotion + " " + m[1]
		}},
		{fightNight, func(m []string) string {
			return promotion + " Fight Night " + m[1]
		}},
		{broadcast, func(m []string) string {
			return promotion + " on " + strings.ToUpper(m[1]) + " " + m[2]
		}},
	}, nil
}

// Normalize collapses separator runs into single spaces
func Normalize(name string) string {
	return strings.TrimSpace(reSeparators.ReplaceAllString(name, " "))
}

// FighterNames returns the title-cased "A vs B" bout in a normalized name.
// When several bouts appear the last one wins.
func FighterNames(normalized string) string {
	tokens := strings.Fields(normalized)
	var names string

	for i, tok := range tokens {
		if !strings.EqualFold(tok, "vs") {
			continue
		}

		start := i
		for start > 0 && isNameToken(tokens[start-1], reservedBefore) {
			start--
		}
		end := i + 1
		for end < len(tokens) && isNameToken(tokens[end], reservedAfter) {
			end++
		}
		if start == i || end == i+1 {
			continue
		}

		// single digit rematch number
		if end < len(tokens) && len(tokens[end]) == 1 && tokens[end][0] >= '0' && tokens[end][0] <= '9' {
			end++
		}

		names = strings.Join(tokens[start:end], " ")
	}

	if names == "" {
		return ""
	}
	names = cases.Title(language.English).String(strings.ToLower(names))
	return strings.ReplaceAll(names, " Vs ", " vs ")
}

func isNameToken(tok string, reserved []string) bool {
	if !reNameToken.MatchString(tok) || strings.EqualFold(tok, "vs") {
		return false
	}
	lower := strings.ToLower(tok)
	for _, r := range reserved {
		if strings.HasPrefix(lower, r) {
			return false
		}
	}
	return true
}

// EditionOf returns the first edition keyword in a name, MainEvent if none
func EditionOf(normalized string) types.Edition {
	m := reEdition.FindStringSubmatch(normalized)
	if m == nil {
		return types.EditionMainEvent
	}
	return editionSynonyms[strings.ToLower(m[1])]
}

// Resolution returns the first resolution token, lower-cased, even when it
// is glued to a neighbouring tag (WEBRip1080p). 4K and UHD are read as 2160p.
func Resolution(normalized string) string {
	s := reUHD.ReplaceAllString(normalized, "2160p")
	m := reResolution.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

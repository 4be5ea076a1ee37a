package conversation

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/wolfman30/realestate-concierge/internal/catalog"
)

var interestKeywords = map[catalog.Interest][]string{
	catalog.InterestBuy:        {"buy", "purchase", "own", "खरेदी", "विकत"},
	catalog.InterestRent:       {"rent", "rental", "lease", "tenant", "भाड्याने", "भाडे", "भाड्या"},
	catalog.InterestCommercial: {"commercial", "office", "shop", "showroom", "व्यावसायिक", "ऑफिस", "दुकान"},
	catalog.InterestPlot:       {"plot", "land", "प्लॉट", "जमीन"},
}

// matchInterest looks for category keywords. It only answers when the text
// names exactly one category.
func matchInterest(text string) (catalog.Interest, bool) {
	var found catalog.Interest
	hits := 0
	for _, interest := range catalog.Interests {
		if hasKeyword(text, interestKeywords[interest]) {
			found = interest
			hits++
		}
	}
	return found, hits == 1
}

func hasKeyword(text string, keywords []string) bool {
	for _, tok := range tokens(text) {
		for _, kw := range keywords {
			if tok == kw || (len([]rune(kw)) >= 3 && strings.HasPrefix(tok, kw)) {
				return true
			}
		}
	}
	return false
}

var (
	amountUnitPattern     = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*(lakhs?|lacs?|crores?|cr|thousand|k|l|लाख|कोटी|हजार)(?:[^a-z]|$)`)
	amountCurrencyPattern = regexp.MustCompile(`(?:₹|rs\.?|inr)\s*([0-9][0-9,]*)`)
)

var unitMultipliers = map[string]float64{
	"lakh": 1e5, "lakhs": 1e5, "lac": 1e5, "lacs": 1e5, "l": 1e5, "लाख": 1e5,
	"crore": 1e7, "crores": 1e7, "cr": 1e7, "कोटी": 1e7,
	"thousand": 1e3, "k": 1e3, "हजार": 1e3,
}

// ParseBudget finds the largest rupee amount in normalized text, reading
// Indian units ("80 lakh", "1.2 cr", "25k") and currency prefixed figures.
func ParseBudget(text string) (int64, bool) {
	var best float64
	for _, m := range amountUnitPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		best = math.Max(best, n*unitMultipliers[m[2]])
	}
	for _, m := range amountCurrencyPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		best = math.Max(best, n)
	}
	if best <= 0 {
		return 0, false
	}
	return int64(math.Round(best)), true
}

var ordinalWords = map[string]int{
	"first": 1, "1st": 1, "पहिला": 1, "पहिली": 1, "पहिले": 1,
	"second": 2, "2nd": 2, "दुसरा": 2, "दुसरी": 2, "दुसरे": 2,
	"third": 3, "3rd": 3, "तिसरा": 3, "तिसरी": 3, "तिसरे": 3,
	"fourth": 4, "4th": 4, "चौथा": 4, "चौथी": 4, "चौथे": 4,
	"fifth": 5, "5th": 5, "पाचवा": 5, "पाचवी": 5, "पाचवे": 5,
}

var indexPattern = regexp.MustCompile(`^(?:no\.?|number|option|property|#)\s*([0-9]{1,2})$`)

// parseIndex reads a 1-based list position: a bare number, an ordinal word
// or phrases such as "option 2".
func parseIndex(text string) (int, bool) {
	if n, ok := parseChoice(text); ok {
		return n, true
	}
	t := commandText(text)
	if n, ok := ordinalWords[t]; ok {
		return n, true
	}
	if m := indexPattern.FindStringSubmatch(t); m != nil {
		n, err := strconv.Atoi(m[1])
		return n, err == nil
	}
	for _, tok := range tokens(t) {
		if n, ok := ordinalWords[tok]; ok && len(tokens(t)) <= 3 {
			return n, true
		}
	}
	return 0, false
}

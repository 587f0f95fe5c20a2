package preprocess

import (
	"strings"
	"unicode/utf8"
)

// TokenEstimator approximates the token count of text. Estimators must
// be monotonic over prefixes: a prefix never estimates higher than the
// full string.
type TokenEstimator func(text string) int

// DefaultTokenRatio is the characters-per-token divisor for the default
// estimator. English averages around 4 chars per token.
const DefaultTokenRatio = 4

// RatioEstimator builds an estimator that divides the rune count by
// ratio. Non-empty text always estimates at least one token.
func RatioEstimator(ratio int) TokenEstimator {
	if ratio <= 0 {
		ratio = DefaultTokenRatio
	}
	return func(text string) int {
		n := utf8.RuneCountInString(text)
		if n == 0 {
			return 0
		}
		est := n / ratio
		if est < 1 {
			return 1
		}
		return est
	}
}

// DefaultEstimator estimates with DefaultTokenRatio.
func DefaultEstimator() TokenEstimator {
	return RatioEstimator(DefaultTokenRatio)
}

// Bound truncates content so est(result) <= budget, reporting whether
// truncation happened. The cut prefers a paragraph break, then a
// sentence end, then a word boundary, so the provider never sees text
// chopped mid-word. A budget <= 0 means unbounded.
func Bound(content string, budget int, est TokenEstimator) (string, bool) {
	if est == nil {
		est = DefaultEstimator()
	}
	if budget <= 0 || est(content) <= budget {
		return content, false
	}

	runes := []rune(content)

	// Largest prefix that fits, by binary search over rune positions.
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if est(string(runes[:mid])) <= budget {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	if lo == 0 {
		return "", true
	}

	cut := trimToBoundary(string(runes[:lo]))
	return strings.TrimSpace(cut), true
}

// trimToBoundary backs a truncated string up to the nearest natural
// break, as long as that break is past halfway so we do not throw away
// most of the budget.
func trimToBoundary(s string) string {
	half := len(s) / 2
	for _, sep := range []string{"\n\n", ". ", "\n", " "} {
		if idx := strings.LastIndex(s, sep); idx > half {
			return s[:idx]
		}
	}
	return s
}

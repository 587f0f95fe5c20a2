package preprocess

import (
	"iter"
	"strings"
)

// Segment splits content into pieces that each fit the token budget,
// breaking at paragraph boundaries where possible. A paragraph larger
// than the budget on its own is hard-split. The returned sequence is
// lazy and can be ranged over more than once; a budget <= 0 yields the
// whole content as one segment.
func Segment(content string, budget int, est TokenEstimator) iter.Seq[string] {
	if est == nil {
		est = DefaultEstimator()
	}
	return func(yield func(string) bool) {
		if strings.TrimSpace(content) == "" {
			return
		}
		if budget <= 0 {
			yield(content)
			return
		}

		var acc strings.Builder
		flush := func() bool {
			if acc.Len() == 0 {
				return true
			}
			seg := strings.TrimSpace(acc.String())
			acc.Reset()
			if seg == "" {
				return true
			}
			return yield(seg)
		}

		for _, para := range strings.Split(content, "\n\n") {
			if strings.TrimSpace(para) == "" {
				continue
			}

			// Oversized paragraph: emit what we have, then hard-split it.
			if est(para) > budget {
				if !flush() {
					return
				}
				for _, piece := range hardSplit(para, budget, est) {
					if !yield(piece) {
						return
					}
				}
				continue
			}

			candidate := para
			if acc.Len() > 0 {
				candidate = acc.String() + "\n\n" + para
			}
			if est(candidate) > budget {
				if !flush() {
					return
				}
				acc.WriteString(para)
				continue
			}
			acc.Reset()
			acc.WriteString(candidate)
		}
		flush()
	}
}

// hardSplit chops text into budget-sized pieces using Bound, so each
// piece still breaks at the best available boundary.
func hardSplit(text string, budget int, est TokenEstimator) []string {
	var pieces []string
	rest := strings.TrimSpace(text)
	for rest != "" {
		piece, truncated := Bound(rest, budget, est)
		if !truncated {
			pieces = append(pieces, rest)
			break
		}
		if piece == "" {
			// Budget too small for even one rune of progress; emit the
			// remainder rather than loop forever.
			pieces = append(pieces, rest)
			break
		}
		pieces = append(pieces, piece)
		rest = strings.TrimSpace(rest[len(piece):])
	}
	return pieces
}

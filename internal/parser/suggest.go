package parser

import (
	"github.com/agext/levenshtein"
)

const (
	kwCreate       = "Create"
	kwConnect      = "Connect"
	kwConnectField = "Connect⋯"
	kwSet          = "Set"
	kwSetUser      = "SetUser"
	kwRename       = "Rename"
	kwPairZone     = "PairZone"
	kwBegin        = "BEGIN"
	kwStart        = "START"
	kwEnd          = "END"
	kwDeclare      = "Declare"
	kwExpose       = "Expose"
	kwAdjust       = "Adjust"
)

var keywords = []string{
	kwCreate, kwConnect, kwConnectField, kwSet, kwSetUser,
	kwRename, kwPairZone, kwBegin, kwStart, kwEnd,
	kwDeclare, kwExpose, kwAdjust,
}

// maxSuggestDistance is the largest edit distance still offered as a
// "did you mean" hint.
const maxSuggestDistance = 2

// suggestKeyword returns the closest keyword to word, or "" if none is close.
func suggestKeyword(word string) string {
	best, bestDist := "", maxSuggestDistance+1
	for _, kw := range keywords {
		if d := levenshtein.Distance(word, kw, nil); d < bestDist {
			best, bestDist = kw, d
		}
	}
	return best
}

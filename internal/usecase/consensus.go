package usecase

import (
	"strings"

	"ai-debate-orchestrator/internal/domain/model"
)

// ClaimPair is one matched claim from each side.
type ClaimPair struct {
	A string
	B string
}

// PositionComparison is the result of comparing two participants' claim
// sets: matched claims are agreements, unmatched claims remain unique to
// their side.
type PositionComparison struct {
	Agreements []ClaimPair
	UniqueA    []string
	UniqueB    []string
}

// AgreementAnalyzer classifies agreement between participants. The keyword
// implementation below is intentionally approximate; the interface exists so
// a stronger matcher can be swapped in without touching the controller.
type AgreementAnalyzer interface {
	// Affirms reports whether a message substantively affirms a prior
	// participant's position.
	Affirms(participantID, content string, prior []model.Message) bool

	// ExtractClaims pulls candidate position statements out of free text:
	// sentences carrying judgment or recommendation markers, plus itemized
	// list entries. The result is capped to keep comparison cheap.
	ExtractClaims(text string) []string

	// Compare matches claim sets pairwise. A claim from side A matches a
	// claim from side B when their salient-word overlap is at least 2 terms
	// or exceeds 30% of the shorter claim's salient-word count.
	Compare(aClaims, bClaims []string) PositionComparison
}

type keywordAnalyzer struct {
	maxClaims     int
	affirmMinHits int // shared salient terms with the previous speaker's message
}

func NewKeywordAnalyzer() AgreementAnalyzer {
	return &keywordAnalyzer{maxClaims: 8, affirmMinHits: 3}
}

var _ AgreementAnalyzer = (*keywordAnalyzer)(nil)

// Generic words carry no position content; they never count as salient.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(
		"a an the to for of in on at by with and or is are was were be been it its " +
			"this that these those we i you they he she our your their as from will " +
			"would can could should must may might shall have has had do does did " +
			"not no but if then than so there here what which who whom when where " +
			"how all any some more most other another into about over under between " +
			"each because while during without within also just very really please " +
			"let lets us them only even still yet again both few many much own same " +
			"too s t don now add use implement make create get set put take consider " +
			"ensure try need needs want think believe going say said like well") {
		stopwords[w] = struct{}{}
	}
}

var affirmations = []string{
	"i agree", "agreed", "good point", "you're right", "you are right",
	"that's right", "that is right", "exactly right", "i concur",
	"well said", "fair point", "building on that", "as mentioned",
}

var claimMarkers = []string{
	"should", "must", "recommend", "recommendation", "suggest", "avoid",
	"prefer", "better", "best", "important", "critical", "essential", "key",
	"risk", "propose",
}

func (k *keywordAnalyzer) Affirms(participantID, content string, prior []model.Message) bool {
	// Find the most recent message from a different participant.
	var prev *model.Message
	for i := len(prior) - 1; i >= 0; i-- {
		if prior[i].ParticipantID != participantID {
			prev = &prior[i]
			break
		}
	}
	if prev == nil {
		return false
	}

	lower := strings.ToLower(content)
	for _, phrase := range affirmations {
		if strings.Contains(lower, phrase) {
			return true
		}
	}

	shared := overlap(salientSet(content), salientSet(prev.Content))
	return shared >= k.affirmMinHits
}

func (k *keywordAnalyzer) ExtractClaims(text string) []string {
	var claims []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if item, ok := itemizedEntry(line); ok {
			claims = appendClaim(claims, item, k.maxClaims)
			continue
		}
		for _, sent := range splitSentences(line) {
			if hasClaimMarker(sent) {
				claims = appendClaim(claims, sent, k.maxClaims)
			}
		}
	}
	return claims
}

func (k *keywordAnalyzer) Compare(aClaims, bClaims []string) PositionComparison {
	aSets := make([]map[string]struct{}, len(aClaims))
	for i, c := range aClaims {
		aSets[i] = salientSet(c)
	}
	bSets := make([]map[string]struct{}, len(bClaims))
	for i, c := range bClaims {
		bSets[i] = salientSet(c)
	}

	matchedB := make([]bool, len(bClaims))
	var cmp PositionComparison
	for i, a := range aClaims {
		matched := false
		for j := range bClaims {
			if matchedB[j] {
				continue
			}
			if claimsMatch(aSets[i], bSets[j]) {
				cmp.Agreements = append(cmp.Agreements, ClaimPair{A: a, B: bClaims[j]})
				matchedB[j] = true
				matched = true
				break
			}
		}
		if !matched {
			cmp.UniqueA = append(cmp.UniqueA, a)
		}
	}
	for j, b := range bClaims {
		if !matchedB[j] {
			cmp.UniqueB = append(cmp.UniqueB, b)
		}
	}
	return cmp
}

// claimsMatch applies the contract thresholds: >=2 shared salient terms, or
// shared terms exceeding 30% of the shorter claim's salient-word count.
func claimsMatch(a, b map[string]struct{}) bool {
	shared := overlap(a, b)
	if shared >= 2 {
		return true
	}
	shorter := len(a)
	if len(b) < shorter {
		shorter = len(b)
	}
	return shorter > 0 && float64(shared) > 0.3*float64(shorter)
}

func appendClaim(claims []string, c string, max int) []string {
	if len(claims) >= max {
		return claims
	}
	return append(claims, c)
}

func itemizedEntry(line string) (string, bool) {
	switch {
	case strings.HasPrefix(line, "- "):
		return strings.TrimSpace(line[2:]), true
	case strings.HasPrefix(line, "* "):
		return strings.TrimSpace(line[2:]), true
	}
	// "1. ", "2) " style entries
	for i := 0; i < len(line); i++ {
		if line[i] >= '0' && line[i] <= '9' {
			continue
		}
		if i > 0 && (line[i] == '.' || line[i] == ')') && i+1 < len(line) && line[i+1] == ' ' {
			return strings.TrimSpace(line[i+2:]), true
		}
		break
	}
	return "", false
}

func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if s := strings.TrimSpace(text[start:i]); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

func hasClaimMarker(sentence string) bool {
	for _, w := range tokenize(sentence) {
		for _, m := range claimMarkers {
			if w == m {
				return true
			}
		}
	}
	return false
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

func salientSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range tokenize(text) {
		if _, stop := stopwords[w]; stop || len(w) < 2 {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}

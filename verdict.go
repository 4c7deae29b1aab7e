package ragjudge

import (
	"regexp"
	"strconv"
)

// Verdict scores.
const (
	ScoreUnknown   = -1
	ScoreIncorrect = 0
	ScoreCorrect   = 1
)

// Verdict is the judge's decision for one item. Score is ScoreCorrect,
// ScoreIncorrect, or ScoreUnknown when the reply could not be interpreted
// or the item could not be judged.
type Verdict struct {
	Message string `json:"message"`
	Score   int    `json:"score"`
}

// Scored reports whether the verdict carries a definite score.
func (v Verdict) Scored() bool {
	return v.Score == ScoreCorrect || v.Score == ScoreIncorrect
}

// UnknownVerdict returns a verdict with ScoreUnknown and message.
func UnknownVerdict(message string) Verdict {
	return Verdict{Message: message, Score: ScoreUnknown}
}

var (
	fragmentPattern    = regexp.MustCompile(`\{([^}]*)\}`)
	scorePattern       = regexp.MustCompile(`"score"\s*:\s*(\d+)`)
	explanationPattern = regexp.MustCompile(`"explanation"\s*:\s*"(.+)"`)
)

// ParseVerdict extracts a verdict from a judge reply. Only the last
// brace-delimited fragment is considered. The fragment must carry a
// "score" of 0 or 1; otherwise the whole reply is returned with
// ScoreUnknown. The message is the fragment's "explanation" when present
// and the fragment itself otherwise.
func ParseVerdict(reply string) Verdict {
	fragments := fragmentPattern.FindAllString(reply, -1)
	if len(fragments) == 0 {
		return UnknownVerdict(reply)
	}
	fragment := fragments[len(fragments)-1]

	m := scorePattern.FindStringSubmatch(fragment)
	if m == nil {
		return UnknownVerdict(reply)
	}
	score, err := strconv.Atoi(m[1])
	if err != nil || (score != ScoreIncorrect && score != ScoreCorrect) {
		return UnknownVerdict(reply)
	}

	if e := explanationPattern.FindStringSubmatch(fragment); e != nil {
		return Verdict{Message: e[1], Score: score}
	}
	return Verdict{Message: fragment, Score: score}
}

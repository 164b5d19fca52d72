package models

// Candidate is one catalog entry supplied to the resolver. Immutable per call.
type Candidate struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	PrimaryArtist string `json:"primary_artist"`
	DurationMS    int    `json:"duration_ms,omitempty"`
	ISRC          string `json:"isrc,omitempty"`
}

// MatchRule tags which resolution stage produced a match.
type MatchRule string

const (
	RuleMBID  MatchRule = "mbid"
	RuleISRC  MatchRule = "isrc"
	RuleExact MatchRule = "exact"
	RuleFuzzy MatchRule = "fuzzy"
)

// AxisScores holds the per-axis sub-scores behind a fuzzy candidate ranking.
type AxisScores struct {
	Title    float64 `json:"title"`
	Artist   float64 `json:"artist"`
	Duration float64 `json:"duration"`
}

// ScoredCandidate pairs a candidate with its combined confidence and the
// per-axis sub-scores that produced it.
type ScoredCandidate struct {
	Candidate  Candidate  `json:"candidate"`
	Confidence float64    `json:"confidence"`
	Scores     AxisScores `json:"scores"`
}

// MatchResult is the resolver's answer for one source track: the chosen catalog
// identity, the rule that selected it, a confidence in [0,1], and the ranked
// candidate list (best first) for rules that score candidates.
type MatchResult struct {
	ID         string            `json:"id"`
	Confidence float64           `json:"confidence"`
	Rule       MatchRule         `json:"rule"`
	Candidates []ScoredCandidate `json:"candidates,omitempty"`
}

package match

import (
	"sort"

	"tuneport/internal/models"
)

// Threshold defaults.
const (
	defaultDurationToleranceMS    = 1500
	defaultFuzzyDurationPenaltyMS = 6000
	defaultFuzzyMin               = 0.68
	defaultTitleWeight            = 0.6
	defaultArtistWeight           = 0.3
	defaultDurationWeight         = 0.1

	exactTopConfidence   = 0.94
	exactRankDecay       = 0.02
	exactFloorConfidence = 0.70

	descriptorBonusStep = 0.04
	descriptorBonusMax  = 0.08
)

// descriptorTokens often disambiguate otherwise-identical titles.
var descriptorTokens = []string{"live", "acoustic", "remaster", "remix", "demo", "instrumental"}

// Thresholds tunes the resolver. Zero values fall back to the defaults.
type Thresholds struct {
	DurationToleranceMS    int
	FuzzyDurationPenaltyMS int
	FuzzyMin               float64
	TitleWeight            float64
	ArtistWeight           float64
	DurationWeight         float64
}

// DefaultThresholds returns the standard resolver tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DurationToleranceMS:    defaultDurationToleranceMS,
		FuzzyDurationPenaltyMS: defaultFuzzyDurationPenaltyMS,
		FuzzyMin:               defaultFuzzyMin,
		TitleWeight:            defaultTitleWeight,
		ArtistWeight:           defaultArtistWeight,
		DurationWeight:         defaultDurationWeight,
	}
}

func (t Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()
	if t.DurationToleranceMS <= 0 {
		t.DurationToleranceMS = d.DurationToleranceMS
	}
	if t.FuzzyDurationPenaltyMS <= 0 {
		t.FuzzyDurationPenaltyMS = d.FuzzyDurationPenaltyMS
	}
	if t.FuzzyMin <= 0 {
		t.FuzzyMin = d.FuzzyMin
	}
	if t.TitleWeight <= 0 && t.ArtistWeight <= 0 && t.DurationWeight <= 0 {
		t.TitleWeight = d.TitleWeight
		t.ArtistWeight = d.ArtistWeight
		t.DurationWeight = d.DurationWeight
	}
	return t
}

// Input carries everything one resolution call needs. Catalog and ISRCMap are
// read-only; the resolver never mutates or retains them.
type Input struct {
	Track      models.Track
	Catalog    []models.Candidate
	ISRCMap    map[string]string
	Thresholds Thresholds
}

// Resolve returns the best-matching catalog identity for the source track, or
// nil when no rule produces a confident match. A nil result is a normal
// outcome, not an error.
func Resolve(in Input) *models.MatchResult {
	th := in.Thresholds.withDefaults()

	// Rule 1: direct catalog id on the source track.
	if in.Track.MBRecordingID != "" {
		return &models.MatchResult{
			ID:         in.Track.MBRecordingID,
			Confidence: 1.0,
			Rule:       models.RuleMBID,
		}
	}

	// Rule 2: ISRC, explicit map first, then candidate ISRCs.
	if isrc := models.NormalizeISRC(in.Track.ISRC); isrc != "" {
		if id, ok := in.ISRCMap[isrc]; ok {
			return &models.MatchResult{ID: id, Confidence: 0.99, Rule: models.RuleISRC}
		}
		for _, cand := range in.Catalog {
			if models.NormalizeISRC(cand.ISRC) == isrc {
				return &models.MatchResult{ID: cand.ID, Confidence: 0.98, Rule: models.RuleISRC}
			}
		}
	}

	if result := resolveExact(in.Track, in.Catalog, th); result != nil {
		return result
	}
	return resolveFuzzy(in.Track, in.Catalog, th)
}

// resolveExact implements rule 3: normalized title and primary artist equal,
// duration within tolerance (unknown durations are always within).
func resolveExact(track models.Track, catalog []models.Candidate, th Thresholds) *models.MatchResult {
	srcTitle := NormalizeTitle(track.Title)
	srcArtist := NormalizeArtist(track.PrimaryArtist())

	var matched []models.ScoredCandidate
	for _, cand := range catalog {
		if NormalizeTitle(cand.Title) != srcTitle || NormalizeArtist(cand.PrimaryArtist) != srcArtist {
			continue
		}
		if !durationWithin(track.DurationMS, cand.DurationMS, th.DurationToleranceMS) {
			continue
		}
		matched = append(matched, models.ScoredCandidate{
			Candidate: cand,
			Scores: models.AxisScores{
				Title:    1,
				Artist:   1,
				Duration: round3(durationScore(track.DurationMS, cand.DurationMS, th.FuzzyDurationPenaltyMS)),
			},
		})
	}
	if len(matched) == 0 {
		return nil
	}

	// Closest duration first, catalog id as the deterministic tie-break.
	sort.SliceStable(matched, func(i, j int) bool {
		di := durationDelta(track.DurationMS, matched[i].Candidate.DurationMS)
		dj := durationDelta(track.DurationMS, matched[j].Candidate.DurationMS)
		if di != dj {
			return di < dj
		}
		return matched[i].Candidate.ID < matched[j].Candidate.ID
	})

	for i := range matched {
		confidence := exactTopConfidence - exactRankDecay*float64(i)
		if confidence < exactFloorConfidence {
			confidence = exactFloorConfidence
		}
		matched[i].Confidence = round3(confidence)
	}

	return &models.MatchResult{
		ID:         matched[0].Candidate.ID,
		Confidence: matched[0].Confidence,
		Rule:       models.RuleExact,
		Candidates: matched,
	}
}

// resolveFuzzy implements rule 4: weighted Dice similarity over title and
// artist tokens plus a linear duration score, with a shared-descriptor bonus.
func resolveFuzzy(track models.Track, catalog []models.Candidate, th Thresholds) *models.MatchResult {
	if len(catalog) == 0 {
		return nil
	}

	srcTitle := NormalizeTitle(track.Title)
	srcArtist := NormalizeArtist(track.PrimaryArtist())
	srcTitleTokens := Tokens(srcTitle)
	srcArtistTokens := Tokens(srcArtist)

	weightSum := th.TitleWeight + th.ArtistWeight + th.DurationWeight

	scored := make([]models.ScoredCandidate, 0, len(catalog))
	for _, cand := range catalog {
		candTitle := NormalizeTitle(cand.Title)
		titleScore := Dice(srcTitleTokens, Tokens(candTitle))
		artistScore := Dice(srcArtistTokens, Tokens(NormalizeArtist(cand.PrimaryArtist)))
		durScore := durationScore(track.DurationMS, cand.DurationMS, th.FuzzyDurationPenaltyMS)

		combined := (th.TitleWeight*titleScore + th.ArtistWeight*artistScore + th.DurationWeight*durScore) / weightSum
		combined += descriptorBonus(srcTitle, candTitle)
		if combined > 1 {
			combined = 1
		}

		scored = append(scored, models.ScoredCandidate{
			Candidate:  cand,
			Confidence: round3(combined),
			Scores: models.AxisScores{
				Title:    round3(titleScore),
				Artist:   round3(artistScore),
				Duration: round3(durScore),
			},
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Confidence != scored[j].Confidence {
			return scored[i].Confidence > scored[j].Confidence
		}
		return scored[i].Candidate.ID < scored[j].Candidate.ID
	})

	if scored[0].Confidence < th.FuzzyMin {
		return nil
	}
	return &models.MatchResult{
		ID:         scored[0].Candidate.ID,
		Confidence: scored[0].Confidence,
		Rule:       models.RuleFuzzy,
		Candidates: scored,
	}
}

// descriptorBonus rewards titles that agree on disambiguating descriptors
// (live, acoustic, remaster, ...), capped at descriptorBonusMax.
func descriptorBonus(srcTitle, candTitle string) float64 {
	srcTokens := Tokens(srcTitle)
	candTokens := Tokens(candTitle)

	bonus := 0.0
	for _, desc := range descriptorTokens {
		_, inSrc := srcTokens[desc]
		_, inCand := candTokens[desc]
		if inSrc && inCand {
			bonus += descriptorBonusStep
		}
	}
	if bonus > descriptorBonusMax {
		bonus = descriptorBonusMax
	}
	return bonus
}

func durationWithin(a, b, toleranceMS int) bool {
	if a <= 0 || b <= 0 {
		// Missing duration on either side is treated as within tolerance.
		return true
	}
	return durationDelta(a, b) <= toleranceMS
}

func durationDelta(a, b int) int {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > b {
		return a - b
	}
	return b - a
}

// durationScore is 1.0 at zero delta, decaying linearly to 0 at penaltyMS,
// and 0.5 when either duration is unknown.
func durationScore(a, b, penaltyMS int) float64 {
	if a <= 0 || b <= 0 {
		return 0.5
	}
	delta := float64(durationDelta(a, b))
	score := 1 - delta/float64(penaltyMS)
	if score < 0 {
		score = 0
	}
	return score
}

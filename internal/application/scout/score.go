package scout

import (
	"draft-scout-api/internal/config"
	"draft-scout-api/internal/domain/entity"
	"draft-scout-api/internal/infrastructure/store"
)

// worstRank caps the consensus-rank scale; anything ranked beyond it
// scores as zero on the rank component.
const worstRank = 300.0

// neutralScore is used where a signal is absent, so unranked or
// stat-less prospects are not penalized to the bottom.
const neutralScore = 0.5

// Scorer computes statistical re-ranking scores in [0, 1].
type Scorer struct {
	store *store.Store
	cfg   config.RankingConfig
}

// NewScorer creates a scorer with the configured signal weights.
func NewScorer(st *store.Store, cfg config.RankingConfig) *Scorer {
	return &Scorer{store: st, cfg: cfg}
}

// StatisticalScore combines the consensus-rank, stat-percentile and
// recency signals for one candidate. advisoryPosition marks a position
// filter downgraded to a boost after matching zero records.
func (s *Scorer) StatisticalScore(p *entity.Prospect, intent *Intent, advisoryPosition bool) float64 {
	cw, sw, rw := s.cfg.ConsensusWeight, s.cfg.StatWeight, s.cfg.RecencyWeight
	if cw <= 0 && sw <= 0 && rw <= 0 {
		cw, sw, rw = 1, 1, 1
	}

	score := cw*s.rankScore(p, intent) + sw*s.statPercentile(p) + rw*s.recencyScore(p, intent)
	total := cw + sw + rw

	if len(intent.StatFloors) > 0 {
		score += statFloorScore(p, intent)
		total += 1
	}

	if len(intent.PlayerNames) > 0 {
		score += nameMatchScore(p, intent.PlayerNames)
		total += 1
	}

	if advisoryPosition && intent.Position != "" {
		boost := 0.0
		if p.Position == intent.Position {
			boost = 1.0
		}
		score += boost
		total += 1
	}

	return score / total
}

// rankScore maps consensus rank to [0, 1] on the global worstRank
// scale, lower rank scoring higher. With a rank-band filter, candidates
// outside the band score zero on this component but are never excluded;
// in-band candidates keep the global scale.
func (s *Scorer) rankScore(p *entity.Prospect, intent *Intent) float64 {
	rank, ok := p.ConsensusRank()
	if !ok {
		return neutralScore
	}

	if intent.MinRank > 0 || intent.MaxRank > 0 {
		min, max := float64(intent.MinRank), float64(intent.MaxRank)
		if min <= 0 {
			min = 1
		}
		if max <= 0 {
			max = worstRank
		}
		if rank < min || rank > max {
			return 0
		}
	}

	score := 1 - (rank-1)/worstRank
	return clamp01(score)
}

// nameMatchScore is 1 when the candidate is one of the players the
// query named, 0 otherwise. A named player must outrank semantic
// neighbors that merely resemble the question.
func nameMatchScore(p *entity.Prospect, names []string) float64 {
	for _, name := range names {
		if p.MatchesName(name) {
			return 1
		}
	}
	return 0
}

// statFloorScore is the share of requested stat minimums the candidate
// meets. A floored stat without coverage counts as neutral, not a miss.
func statFloorScore(p *entity.Prospect, intent *Intent) float64 {
	var sum float64
	for stat, floor := range intent.StatFloors {
		v, ok := p.Stats.Get(stat)
		switch {
		case !ok:
			sum += neutralScore
		case v >= floor:
			sum += 1
		}
	}
	return sum / float64(len(intent.StatFloors))
}

// statPercentile averages the candidate's percentile across its covered
// stats within its position group. No coverage anywhere is neutral.
func (s *Scorer) statPercentile(p *entity.Prospect) float64 {
	if !p.Stats.Covered() {
		return neutralScore
	}

	group := s.store.ProspectsByPosition(p.Position)

	var sum float64
	var n int
	for name := range p.Stats {
		value, ok := p.Stats.Get(name)
		if !ok {
			continue
		}
		pct := percentileWithin(group, name, value)
		sum += pct
		n++
	}
	if n == 0 {
		return neutralScore
	}
	return sum / float64(n)
}

// percentileWithin returns the share of the position group the value
// meets or beats on one stat, among records with coverage.
func percentileWithin(group []*entity.Prospect, stat string, value float64) float64 {
	var covered, atOrBelow int
	for _, other := range group {
		v, ok := other.Stats.Get(stat)
		if !ok {
			continue
		}
		covered++
		if v <= value {
			atOrBelow++
		}
	}
	if covered <= 1 {
		return neutralScore
	}
	return float64(atOrBelow) / float64(covered)
}

// recencyScore prefers a player's newest snapshot, unless the query
// pinned a specific cycle point.
func (s *Scorer) recencyScore(p *entity.Prospect, intent *Intent) float64 {
	if intent.Snapshot != "" {
		if p.Snapshot == intent.Snapshot {
			return 1
		}
		return 0
	}
	if s.store.IsLatestSnapshot(p) {
		return 1
	}
	return 0
}

// Combine merges the normalized semantic and statistical scores with
// the configured weights.
func (s *Scorer) Combine(semantic, statistical float64) float64 {
	sw, tw := s.cfg.SemanticWeight, s.cfg.StatisticalWeight
	if sw <= 0 && tw <= 0 {
		sw, tw = 1, 1
	}
	return (sw*semantic + tw*statistical) / (sw + tw)
}

// normalizeSimilarity maps cosine similarity [-1, 1] to [0, 1].
func normalizeSimilarity(sim float64) float64 {
	return clamp01((sim + 1) / 2)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

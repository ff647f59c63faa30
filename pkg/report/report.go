// Package report turns score vectors into ranked listings and renderings.
package report

import (
	"bufio"
	"fmt"
	"io"
	"sort"
)

type Rank struct {
	Node  int     `json:"node"`
	Score float64 `json:"score"`
}

// Ranking is sorted by descending score, ties broken by descending node id
type Ranking []Rank

// RankScores ranks every id of the score vector
func RankScores(scores []float64) Ranking {
	ranking := make(Ranking, len(scores))
	for id, score := range scores {
		ranking[id] = Rank{Node: id, Score: score}
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Score != ranking[j].Score {
			return ranking[i].Score > ranking[j].Score
		}
		return ranking[i].Node > ranking[j].Node
	})
	return ranking
}

// First k entries (all of them if k <= 0 or k exceeds the length)
func (r Ranking) Top(k int) Ranking {
	if k <= 0 || k >= len(r) {
		return r
	}
	return r[:k]
}

// Write one `%.5f <id>` line per entry
func Write(w io.Writer, ranking Ranking) error {
	bw := bufio.NewWriter(w)
	for _, rank := range ranking {
		if _, err := fmt.Fprintf(bw, "%.5f %d\n", rank.Score, rank.Node); err != nil {
			return err
		}
	}
	return bw.Flush()
}

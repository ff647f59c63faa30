package graph

import (
	"math"
	"sync"

	"github.com/charmbracelet/log"
)

var logger = log.Default()

// SetLogger replaces the logger used to report solver progress
func SetLogger(l *log.Logger) {
	if l != nil {
		logger = l
	}
}

// Options of a personalized PageRank computation
type Options struct {
	Alpha         float64 // damping factor, in (0, 1)
	MaxIterations int     // upper bound on the number of rounds
	Tolerance     float64 // stop once the L1 change between rounds is below this value
	Workers       int     // goroutines used to update nodes within a round
}

// DefaultOptions returns alpha 0.85, 100 iterations, tolerance 1e-6 and a
// single worker.
func DefaultOptions() Options {
	return Options{
		Alpha:         0.85,
		MaxIterations: 100,
		Tolerance:     1e-6,
		Workers:       1,
	}
}

func (o Options) validate() error {
	if !(o.Alpha > 0 && o.Alpha < 1) {
		return configError("alpha must be in (0, 1), got %v", o.Alpha)
	}
	if o.MaxIterations < 1 {
		return configError("max iterations must be at least 1, got %d", o.MaxIterations)
	}
	if o.Tolerance < 0 || math.IsNaN(o.Tolerance) {
		return configError("tolerance must be non-negative, got %v", o.Tolerance)
	}
	return nil
}

// Result of a solve. Scores has one entry per id in [0, Len()).
type Result struct {
	Scores     []float64 // score of every id in [0, n)
	Iterations int       // rounds executed
	Delta      float64   // L1 change of the last round
	Converged  bool      // Delta < Tolerance before MaxIterations was exhausted
}

type solver struct {
	graph           *Graph
	nodes           []int // keys in ascending order
	dangling        []int
	isSource        []bool
	personalization []float64
	alpha           float64
	weight          float64 // 1 / m
	n               float64
	m               float64
	size            int
}

// Solve computes the personalized PageRank of g biased toward sources.
//
// R_(i+1)(v) = (1-alpha)/n + alpha*D/n + alpha * sum_(u in S_v) R_i(u) / N_u
//   - plus a term depending on whether v is a source, a dangling node, or neither
//   - plus alpha * P(v) * (1 - sourceHits(v) / N_v) / m
//
// where S_v are the successors of v, N_u the out-degree of u and D the score
// held by dangling nodes in the previous round. Successors without out-links
// are skipped in the sum.
func Solve(g *Graph, sources []int, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	s, err := newSolver(g, sources, opts.Alpha)
	if err != nil {
		return nil, err
	}

	// Initial ranks are the personalization vector itself
	score := make([]float64, s.size)
	copy(score, s.personalization)

	result := &Result{}
	for i := 0; i < opts.MaxIterations; i++ {
		previous := score
		score = make([]float64, s.size)

		danglingMass := 0.0
		for _, d := range s.dangling {
			danglingMass += previous[d]
		}
		s.iterate(score, previous, danglingMass, opts.Workers)

		delta := 0.0
		for v := range score {
			delta += math.Abs(score[v] - previous[v])
		}
		result.Iterations = i + 1
		result.Delta = delta
		if delta < opts.Tolerance {
			result.Converged = true
			break
		}
	}
	result.Scores = score
	if result.Converged {
		logger.Debug("Convergence check success", "iterations", result.Iterations, "delta", result.Delta)
	} else {
		logger.Debug("Iteration limit reached", "iterations", result.Iterations, "delta", result.Delta)
	}
	return result, nil
}

func newSolver(g *Graph, sources []int, alpha float64) (*solver, error) {
	n := g.Len()
	m := len(sources)
	if n == 0 {
		return nil, configError("empty graph")
	}
	if m == 0 {
		return nil, configError("no source nodes")
	}
	s := &solver{
		graph:           g,
		nodes:           g.Nodes(),
		dangling:        g.Dangling(),
		isSource:        make([]bool, n),
		personalization: make([]float64, n),
		alpha:           alpha,
		weight:          1 / float64(m),
		n:               float64(n),
		m:               float64(m),
		size:            n,
	}
	for _, source := range sources {
		if source < 0 || source >= n {
			return nil, configError("source %d outside [0, %d)", source, n)
		}
		if !g.Has(source) {
			return nil, configError("source %d is not a graph node", source)
		}
		if s.isSource[source] {
			return nil, configError("duplicate source %d", source)
		}
		s.isSource[source] = true
		s.personalization[source] = s.weight
	}
	if n-m <= 0 {
		return nil, configError("every node is a source (n = %d, m = %d)", n, m)
	}
	return s, nil
}

// Write the new rank of every key into score, reading only previous
func (s *solver) iterate(score, previous []float64, danglingMass float64, workers int) {
	if workers <= 1 || len(s.nodes) < 2*workers {
		for _, v := range s.nodes {
			score[v] = s.rank(v, previous, danglingMass)
		}
		return
	}
	chunk := (len(s.nodes) + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < len(s.nodes); start += chunk {
		end := min(start+chunk, len(s.nodes))
		wg.Add(1)
		go func(nodes []int) {
			defer wg.Done()
			for _, v := range nodes {
				score[v] = s.rank(v, previous, danglingMass)
			}
		}(s.nodes[start:end])
	}
	wg.Wait()
}

func (s *solver) rank(v int, previous []float64, danglingMass float64) float64 {
	alpha := s.alpha
	successors := s.graph.Successors(v)

	// Teleportation and dangling redistribution
	rank := (1 - alpha) / s.n
	rank += alpha * danglingMass / s.n
	for _, u := range successors {
		// u without out-links (or not a key) has nothing to share
		if degree := s.graph.OutDegree(u); degree > 0 {
			rank += alpha * previous[u] / float64(degree)
		}
	}

	switch {
	case s.isSource[v]:
		rank += (1 - alpha) * s.personalization[v]
		rank += alpha * danglingMass * s.personalization[v]
	case len(successors) == 0:
		rank += (1 - alpha) * s.weight / s.m
		rank += alpha * danglingMass * s.weight / s.m
	default:
		rank += (1 - alpha) * s.weight / (s.n - s.m)
		rank += alpha * danglingMass * s.weight / (s.n - s.m)
	}

	// Source-link correction (zero unless v is a source)
	hits := 0
	for _, u := range successors {
		if u < s.size && s.isSource[u] {
			hits++
		}
	}
	degree := max(len(successors), 1)
	rank += alpha * s.personalization[v] * (1 - float64(hits)/float64(degree)) / s.m
	return rank
}

package node

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/lioia/personalized-pagerank/pkg/cache"
	"github.com/lioia/personalized-pagerank/pkg/graph"
	"github.com/lioia/personalized-pagerank/pkg/report"
	"github.com/lioia/personalized-pagerank/pkg/utils"
)

// Service runs solve requests: load, solve, rank, cache
type Service struct {
	Config   utils.Config
	Cache    cache.Cache
	CacheTTL time.Duration
	Logger   *log.Logger
	// Local resources are read only from this directory; empty allows URLs only
	ResourceDir string
}

func NewService(config utils.Config, c cache.Cache, ttl time.Duration, logger *log.Logger) *Service {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{Config: config, Cache: c, CacheTTL: ttl, Logger: logger}
}

func (s *Service) Solve(ctx context.Context, req *SolveRequest) (*SolveResponse, error) {
	g, err := s.loadGraph(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.solve(ctx, req, g)
}

func (s *Service) solve(ctx context.Context, req *SolveRequest, g *graph.Graph) (*SolveResponse, error) {
	id := req.ID
	if id == "" {
		var err error
		if id, err = gonanoid.New(); err != nil {
			return nil, err
		}
	}
	logger := s.Logger.With("request", id)
	sources, opts := s.parameters(req)

	// Same graph and parameters -> same ranking, whatever the input format
	var canonical bytes.Buffer
	if err := graph.WriteAdjacency(&canonical, g); err != nil {
		return nil, err
	}
	key := cache.Key("ranking", canonical.String(), sources, opts.Alpha, opts.MaxIterations, opts.Tolerance)
	if data, hit, err := s.Cache.Get(ctx, key); err != nil {
		logger.Warn("Cache lookup failed", "err", err)
	} else if hit {
		var cached SolveResponse
		if err := json.Unmarshal(data, &cached); err == nil {
			logger.Debug("Cache hit", "key", key)
			cached.ID = id
			cached.Cached = true
			cached.Ranks = cached.Ranks.Top(req.Top)
			return &cached, nil
		}
	}

	start := time.Now()
	result, err := graph.Solve(g, sources, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("Computation finished",
		"nodes", g.Len(), "edges", g.NumEdges(), "iterations", result.Iterations,
		"converged", result.Converged, "elapsed", time.Since(start).Round(time.Millisecond))

	resp := &SolveResponse{
		ID:         id,
		Nodes:      g.Len(),
		Iterations: result.Iterations,
		Delta:      result.Delta,
		Converged:  result.Converged,
		Ranks:      report.RankScores(result.Scores),
	}
	if data, err := json.Marshal(resp); err == nil {
		if err := s.Cache.Set(ctx, key, data, s.CacheTTL); err != nil {
			logger.Warn("Cache store failed", "err", err)
		}
	}
	resp.Ranks = resp.Ranks.Top(req.Top)
	return resp, nil
}

// Render the ranked graph of req as SVG
func (s *Service) Render(ctx context.Context, req *SolveRequest) ([]byte, error) {
	g, err := s.loadGraph(ctx, req)
	if err != nil {
		return nil, err
	}
	resp, err := s.solve(ctx, req, g)
	if err != nil {
		return nil, err
	}
	sources, _ := s.parameters(req)
	return report.RenderSVG(ctx, report.DOT(g, resp.Ranks, sources, req.Top))
}

func (s *Service) loadGraph(ctx context.Context, req *SolveRequest) (*graph.Graph, error) {
	switch {
	case req.Adjacency != "":
		return graph.ParseAdjacency([]byte(req.Adjacency))
	case req.Graph != "":
		return graph.ParseEdges([]byte(req.Graph))
	case req.Resource != "":
		resource, err := s.resolveResource(req.Resource)
		if err != nil {
			return nil, err
		}
		g, err := graph.LoadGraphResource(ctx, resource)
		if err != nil {
			return nil, fmt.Errorf("failed to load graph: %w", err)
		}
		return g, nil
	}
	return nil, ErrNoGraph
}

// URLs pass through; local paths must stay inside the resource directory
func (s *Service) resolveResource(resource string) (string, error) {
	if strings.HasPrefix(resource, "http://") || strings.HasPrefix(resource, "https://") {
		return resource, nil
	}
	if s.ResourceDir == "" {
		return "", fmt.Errorf("%w: only http(s) resources are accepted", ErrResourceNotAllowed)
	}
	if !filepath.IsLocal(resource) {
		return "", fmt.Errorf("%w: %s is outside the resource directory", ErrResourceNotAllowed, resource)
	}
	return filepath.Join(s.ResourceDir, resource), nil
}

// Request parameters, falling back to the configured ones
func (s *Service) parameters(req *SolveRequest) ([]int, graph.Options) {
	opts := s.Config.Options()
	if req.Alpha != nil {
		opts.Alpha = *req.Alpha
	}
	if req.MaxIterations != nil {
		opts.MaxIterations = *req.MaxIterations
	}
	if req.Tolerance != nil {
		opts.Tolerance = *req.Tolerance
	}
	sources := s.Config.Sources
	if len(req.Sources) > 0 {
		sources = req.Sources
	}
	return sources, opts
}

package node

import (
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/lioia/personalized-pagerank/pkg/graph"
	"github.com/lioia/personalized-pagerank/pkg/report"
)

var (
	// ErrNoGraph is returned when a request carries neither a graph nor a resource.
	ErrNoGraph = errors.New("no graph in request")

	// ErrResourceNotAllowed is returned for a local resource outside the
	// node's resource directory (or any local resource when none is set).
	ErrResourceNotAllowed = errors.New("resource not allowed")
)

// SolveRequest is accepted by every transport (gRPC, HTTP, queue).
// Exactly one of Graph, Adjacency and Resource should be set; absent
// parameters fall back to the node configuration.
type SolveRequest struct {
	ID            string   `json:"id,omitempty"`
	Graph         string   `json:"graph,omitempty"`     // edge list text
	Adjacency     string   `json:"adjacency,omitempty"` // adjacency list text
	Resource      string   `json:"resource,omitempty"`  // URL, or path under the node's resource directory
	Sources       []int    `json:"sources,omitempty"`
	Alpha         *float64 `json:"alpha,omitempty"`
	MaxIterations *int     `json:"max_iterations,omitempty"`
	Tolerance     *float64 `json:"tolerance,omitempty"` // 0 runs every iteration
	Top           int      `json:"top,omitempty"`       // truncate the ranking (0 = every node)
}

type SolveResponse struct {
	ID         string         `json:"id"`
	Nodes      int            `json:"nodes"`
	Iterations int            `json:"iterations"`
	Delta      float64        `json:"delta"`
	Converged  bool           `json:"converged"`
	Cached     bool           `json:"cached"`
	Ranks      report.Ranking `json:"ranks"`
	Error      string         `json:"error,omitempty"` // set only on queue replies
}

type Queue struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
	Work    *amqp.Queue
	Result  *amqp.Queue
}

// Node serves solve requests coming from the work queue
type Node struct {
	Service    *Service
	Queue      Queue
	Connection string // this node connection information (gRPC address)
}

// IsInvalid reports whether err was caused by the request itself
// (malformed graph, bad sources or parameters) rather than by the node.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrNoGraph) ||
		errors.Is(err, ErrResourceNotAllowed) ||
		errors.Is(err, graph.ErrConfig) ||
		errors.Is(err, graph.ErrMalformedLine) ||
		errors.Is(err, graph.ErrNegativeNode)
}

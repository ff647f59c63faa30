package graph

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
)

// Format of a textual graph
type Format int

const (
	EdgeList  Format = iota // one `from<TAB>to` per line
	Adjacency               // one `id [s1, s2, ...]` per line
)

// Load a graph from a local path or an http(s) URL
func LoadGraphResource(ctx context.Context, resource string) (*Graph, error) {
	bytes, err := LoadResource(ctx, resource)
	if err != nil {
		return nil, err
	}
	g, err := ParseGraph(bytes)
	if err != nil {
		return nil, fmt.Errorf("could not load graph from %s: %w", resource, err)
	}
	return g, nil
}

// Read the raw contents of a local path or an http(s) URL
func LoadResource(ctx context.Context, resource string) ([]byte, error) {
	// Check if it's a network resource or a local one
	if !strings.HasPrefix(resource, "http://") && !strings.HasPrefix(resource, "https://") {
		bytes, err := os.ReadFile(resource)
		if err != nil {
			return nil, fmt.Errorf("could not read graph at %s: %w", resource, err)
		}
		return bytes, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resource, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not load network file at %s: %w", resource, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("could not load network file at %s: %s", resource, resp.Status)
	}
	bytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not load body from request: %w", err)
	}
	return bytes, nil
}

// Guess the format from the first meaningful line
func DetectFormat(contents []byte) Format {
	for _, line := range splitLines(contents) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, "[") {
			return Adjacency
		}
		return EdgeList
	}
	return EdgeList
}

// Parse contents in whichever format they are written in
func ParseGraph(contents []byte) (*Graph, error) {
	if DetectFormat(contents) == Adjacency {
		return ParseAdjacency(contents)
	}
	return ParseEdges(contents)
}

// Parse an edge list: one `from<TAB>to` per line, `#` lines are comments
func ParseEdges(contents []byte) (*Graph, error) {
	g := New()
	for i, line := range splitLines(contents) {
		from, to, skip, err := convertLine(i+1, line)
		// There was an error loading the line
		if err != nil {
			return nil, err
		}
		// Comment line -> no new edge to add
		if skip {
			continue
		}
		if err := g.AddEdge(from, to); err != nil {
			return nil, &ParseError{Line: i + 1, Text: line, Err: err}
		}
	}
	return g, nil
}

func convertLine(n int, line string) (int, int, bool, error) {
	trimmed := strings.TrimSpace(line)
	// Skip comment and blank lines
	if strings.HasPrefix(trimmed, "#") || trimmed == "" {
		return 0, 0, true, nil
	}
	tokens := strings.Split(trimmed, "\t")
	if len(tokens) != 2 {
		return 0, 0, false, parseError(n, line, "expected 2 tab-separated fields, got %d", len(tokens))
	}
	from, err := strconv.Atoi(tokens[0])
	if err != nil {
		return 0, 0, false, parseError(n, line, "could not convert FromNode")
	}
	to, err := strconv.Atoi(tokens[1])
	if err != nil {
		return 0, 0, false, parseError(n, line, "could not convert ToNode")
	}
	return from, to, false, nil
}

// Parse an adjacency list: one `id [s1,s2,...]` per line.
// Empty brackets declare a dangling node; a repeated id replaces its list.
func ParseAdjacency(contents []byte) (*Graph, error) {
	g := New()
	for i, line := range splitLines(contents) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, value, found := strings.Cut(trimmed, " ")
		if !found {
			return nil, parseError(i+1, line, "missing successor list")
		}
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, parseError(i+1, line, "could not convert node")
		}
		value = strings.TrimSpace(value)
		if !strings.HasPrefix(value, "[") || !strings.HasSuffix(value, "]") {
			return nil, parseError(i+1, line, "successor list must be enclosed in brackets")
		}
		var successors []int
		if inner := strings.TrimSpace(value[1 : len(value)-1]); inner != "" {
			for j, token := range strings.Split(inner, ",") {
				to, err := strconv.Atoi(strings.TrimSpace(token))
				if err != nil {
					return nil, parseError(i+1, line, "could not convert successor %d", j+1)
				}
				successors = append(successors, to)
			}
		}
		if err := g.SetSuccessors(id, successors); err != nil {
			return nil, &ParseError{Line: i + 1, Text: line, Err: err}
		}
	}
	return g, nil
}

// Write one `id [s1, s2, ...]` line per key, in first-appearance order
func WriteAdjacency(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)
	for _, id := range g.Order() {
		successors := g.Successors(id)
		tokens := make([]string, len(successors))
		for i, to := range successors {
			tokens[i] = strconv.Itoa(to)
		}
		if _, err := fmt.Fprintf(bw, "%d [%s]\n", id, strings.Join(tokens, ", ")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Split file contents in lines (based on newline delimiter)
func splitLines(contents []byte) []string {
	text := strings.ReplaceAll(string(contents), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

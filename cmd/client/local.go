package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/lioia/personalized-pagerank/pkg/graph"
	"github.com/lioia/personalized-pagerank/pkg/report"
)

func newMapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "map",
		Short: "Turn an edge list (stdin) into an adjacency list (stdout)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			contents, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			g, err := graph.ParseEdges(contents)
			if err != nil {
				return err
			}
			return graph.WriteAdjacency(cmd.OutOrStdout(), g)
		},
	}
}

func newReduceCmd(a *app) *cobra.Command {
	var flags solverFlags
	cmd := &cobra.Command{
		Use:   "reduce",
		Short: "Rank the nodes of an adjacency list (stdin) toward the sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			contents, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			g, err := graph.ParseAdjacency(contents)
			if err != nil {
				return err
			}
			return a.rank(cmd, g, &flags, cmd.OutOrStdout())
		},
	}
	flags.register(cmd)
	return cmd
}

func newRankCmd(a *app) *cobra.Command {
	var (
		flags  solverFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "rank [graph]",
		Short: "Rank the nodes of a graph file or URL (edge or adjacency list)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contents, err := a.readInput(cmd.Context(), cmd, args)
			if err != nil {
				return err
			}
			g, err := graph.ParseGraph(contents)
			if err != nil {
				return err
			}
			w, closeOutput, err := a.openOutput(cmd, output)
			if err != nil {
				return err
			}
			if err := a.rank(cmd, g, &flags, w); err != nil {
				_ = closeOutput()
				return err
			}
			return closeOutput()
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newRenderCmd(a *app) *cobra.Command {
	var (
		flags  solverFlags
		output string
		top    int
		asDOT  bool
	)
	cmd := &cobra.Command{
		Use:   "render [graph]",
		Short: "Render the ranked graph as SVG (or DOT)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contents, err := a.readInput(cmd.Context(), cmd, args)
			if err != nil {
				return err
			}
			g, err := graph.ParseGraph(contents)
			if err != nil {
				return err
			}
			sources, opts := flags.apply(cmd, a.config)
			result, err := graph.Solve(g, sources, opts)
			if err != nil {
				return err
			}
			dot := report.DOT(g, report.RankScores(result.Scores), sources, top)
			out := []byte(dot)
			if !asDOT {
				if out, err = report.RenderSVG(cmd.Context(), dot); err != nil {
					return err
				}
			}
			w, closeOutput, err := a.openOutput(cmd, output)
			if err != nil {
				return err
			}
			if _, err := w.Write(out); err != nil {
				_ = closeOutput()
				return err
			}
			return closeOutput()
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&top, "top", 50, "draw only the top N nodes (0 = all)")
	cmd.Flags().BoolVar(&asDOT, "dot", false, "write DOT instead of SVG")
	return cmd
}

func (a *app) rank(cmd *cobra.Command, g *graph.Graph, flags *solverFlags, w io.Writer) error {
	sources, opts := flags.apply(cmd, a.config)
	result, err := graph.Solve(g, sources, opts)
	if err != nil {
		return err
	}
	a.logger.Debug("Ranked graph", "nodes", g.Len(), "edges", g.NumEdges(),
		"iterations", result.Iterations, "converged", result.Converged)
	return report.Write(w, report.RankScores(result.Scores))
}

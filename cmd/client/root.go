package main

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lioia/personalized-pagerank/pkg/graph"
	"github.com/lioia/personalized-pagerank/pkg/utils"
)

// State shared by the subcommands of one invocation
type app struct {
	configFile string
	verbose    bool
	config     utils.Config
	logger     *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: log.Default()}

	root := &cobra.Command{
		Use:          "pagerank",
		Short:        "Personalized PageRank over edge lists",
		Long:         "Build adjacency lists from edge lists, rank nodes toward a set of sources, and send jobs to a PageRank node.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if a.verbose {
				level = log.DebugLevel
			}
			a.logger = log.NewWithOptions(os.Stderr, log.Options{
				ReportTimestamp: true,
				TimeFormat:      "15:04:05.00",
				Level:           level,
			})
			graph.SetLogger(a.logger)

			var err error
			a.config, err = utils.LoadConfiguration(a.configFile)
			return err
		},
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ./config.json)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newMapCmd(),
		newReduceCmd(a),
		newRankCmd(a),
		newRenderCmd(a),
		newSubmitCmd(a),
		newEnqueueCmd(a),
	)
	return root
}

// Solver flags shared by the commands that compute rankings
type solverFlags struct {
	sources       []int
	alpha         float64
	maxIterations int
	tolerance     float64
	workers       int
}

func (f *solverFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntSliceVarP(&f.sources, "sources", "s", nil, "source node ids (default from config)")
	cmd.Flags().Float64VarP(&f.alpha, "alpha", "a", 0, "damping factor (default from config)")
	cmd.Flags().IntVarP(&f.maxIterations, "max-iterations", "n", 0, "maximum number of iterations (default from config)")
	cmd.Flags().Float64VarP(&f.tolerance, "tolerance", "t", 0, "convergence tolerance, 0 runs every iteration (default from config)")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "goroutines per iteration (default from config)")
}

// Apply the flags that were set on top of the configuration
func (f *solverFlags) apply(cmd *cobra.Command, c utils.Config) ([]int, graph.Options) {
	sources := c.Sources
	if cmd.Flags().Changed("sources") {
		sources = f.sources
	}
	opts := c.Options()
	if cmd.Flags().Changed("alpha") {
		opts.Alpha = f.alpha
	}
	if cmd.Flags().Changed("max-iterations") {
		opts.MaxIterations = f.maxIterations
	}
	if cmd.Flags().Changed("tolerance") {
		opts.Tolerance = f.tolerance
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = f.workers
	}
	return sources, opts
}

// Graph resource from the argument, the configuration, or stdin
func (a *app) readInput(ctx context.Context, cmd *cobra.Command, args []string) ([]byte, error) {
	resource := a.config.Graph
	if len(args) > 0 {
		resource = args[0]
	}
	if resource == "" || resource == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return graph.LoadResource(ctx, resource)
}

// Output file from the flag or the configuration ("" = stdout)
func (a *app) openOutput(cmd *cobra.Command, output string) (io.Writer, func() error, error) {
	if output == "" {
		output = a.config.Output
	}
	if output == "" || output == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	file, err := os.Create(output)
	if err != nil {
		return nil, nil, err
	}
	return file, file.Close, nil
}

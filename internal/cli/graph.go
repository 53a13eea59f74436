package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pierre-ernst/ghnet/pkg/errors"
	"github.com/pierre-ernst/ghnet/pkg/graph"
	"github.com/pierre-ernst/ghnet/pkg/network"
)

// Graph output formats.
const (
	graphDOT  = "dot"
	graphSVG  = "svg"
	graphJSON = "json"
)

func (c *CLI) graphCommand() *cobra.Command {
	var (
		scan     scanFlags
		format   string
		output   string
		detailed bool
		snapshot string
	)
	cmd := &cobra.Command{
		Use:   "graph [owner/repo]",
		Short: "Draw a repository and its dependents",
		Long: `Draw a repository and its popular dependents as a Graphviz graph. Nodes
are coloured by language and link to the repository on GitHub.

The graph is built from a new scan, or from a saved snapshot with --snapshot.

Examples:
  ghnet graph spf13/cobra -o cobra.svg
  ghnet graph spf13/cobra --format dot --detailed | dot -Tpng > cobra.png
  ghnet graph --snapshot 3f0c2b9e-... -o before.svg`,
		Args: func(cmd *cobra.Command, args []string) error {
			if snapshot != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			format = strings.ToLower(format)
			switch format {
			case graphDOT, graphSVG, graphJSON:
			default:
				return errors.New(errors.ErrCodeInvalidFormat, "unknown graph format %q (use dot, svg or json)", format)
			}

			var result *network.Scan
			if snapshot != "" {
				st, err := c.newStore(ctx)
				if err != nil {
					return err
				}
				defer st.Close()
				snap, err := st.Get(ctx, snapshot)
				if err != nil {
					return fmt.Errorf("snapshot %s: %w", snapshot, err)
				}
				result = &snap.Scan
			} else {
				s, err := c.openSession(ctx)
				if err != nil {
					return err
				}
				defer s.close()
				if result, err = c.runScan(ctx, s, args[0], &scan); err != nil {
					return err
				}
			}

			g := graph.FromScan(result)
			var data []byte
			switch format {
			case graphJSON:
				b, err := graph.MarshalGraph(g)
				if err != nil {
					return err
				}
				data = append(b, '\n')
			case graphDOT:
				data = []byte(graph.ToDOT(g, graph.Options{Detailed: detailed}))
			case graphSVG:
				prog := newProgress(c.Logger)
				svg, err := graph.RenderSVG(ctx, graph.ToDOT(g, graph.Options{Detailed: detailed}))
				if err != nil {
					return err
				}
				prog.done(fmt.Sprintf("Rendered %d nodes", len(g.Nodes)))
				data = svg
			}

			return writeTo(output, func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			})
		},
	}
	addScanFlags(cmd, &scan)
	cmd.Flags().StringVarP(&format, "format", "f", graphSVG, "graph format: dot, svg or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show language and dependents count in nodes")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "draw a saved snapshot instead of scanning")
	return cmd
}

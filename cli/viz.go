// ABOUTME: Visualization CLI commands
// ABOUTME: Renders the pipeline dashboard and Graphviz pipeline/network graphs
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-graphviz"

	"github.com/harperreed/leadbook/models"
	"github.com/harperreed/leadbook/people"
	"github.com/harperreed/leadbook/viz"
)

// DashboardCommand prints the text dashboard.
func DashboardCommand(ctx context.Context, store people.Store, w io.Writer, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	all, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list people: %w", err)
	}

	_, _ = fmt.Fprint(w, viz.RenderDashboard(viz.GenerateDashboardStats(all)))
	return nil
}

// VizPipelineCommand renders the outreach funnel as a graph.
func VizPipelineCommand(ctx context.Context, store people.Store, w io.Writer, args []string) error {
	return vizGraph(ctx, store, w, "viz pipeline", args, func(ctx context.Context, all []models.Person, format graphviz.Format) ([]byte, error) {
		return viz.PipelineGraph(ctx, viz.GenerateDashboardStats(all).ByStatus, format)
	})
}

// VizNetworkCommand renders prospects grouped by connection degree.
func VizNetworkCommand(ctx context.Context, store people.Store, w io.Writer, args []string) error {
	return vizGraph(ctx, store, w, "viz network", args, viz.NetworkGraph)
}

type graphFunc func(ctx context.Context, all []models.Person, format graphviz.Format) ([]byte, error)

func vizGraph(ctx context.Context, store people.Store, w io.Writer, name string, args []string, build graphFunc) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	output := fs.String("output", "", "Output file; the extension picks svg, png or jpg (default: DOT to stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	all, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list people: %w", err)
	}

	format := graphviz.XDOT
	if *output != "" {
		format = viz.FormatForPath(*output)
	}

	data, err := build(ctx, all, format)
	if err != nil {
		return err
	}

	if *output != "" {
		if err := os.WriteFile(*output, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", *output, err)
		}
		_, _ = fmt.Fprintf(w, "✓ Graph written to %s\n", *output)
		return nil
	}

	_, _ = w.Write(data)
	return nil
}

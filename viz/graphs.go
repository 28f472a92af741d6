// ABOUTME: Graphviz renderings of the outreach pipeline and the contact network
// ABOUTME: Produces DOT, SVG or PNG output through go-graphviz
package viz

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/leadbook/models"
)

// FormatForPath picks an output format from a file extension. DOT is the default.
func FormatForPath(path string) graphviz.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return graphviz.SVG
	case ".png":
		return graphviz.PNG
	case ".jpg", ".jpeg":
		return graphviz.JPG
	}
	return graphviz.XDOT
}

func render(ctx context.Context, format graphviz.Format, build func(graph *cgraph.Graph) error) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	if err := build(graph); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, format, &buf); err != nil {
		return nil, fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.Bytes(), nil
}

// PipelineGraph draws the stages as a left-to-right funnel labelled with counts.
// Cancelled hangs off the first stage as a dashed side exit.
func PipelineGraph(ctx context.Context, stages []StageCount, format graphviz.Format) ([]byte, error) {
	return render(ctx, format, func(graph *cgraph.Graph) error {
		graph.SetLabel("Outreach pipeline")
		graph.SetRankDir(cgraph.LRRank)

		var prev, first *cgraph.Node
		for i, s := range stages {
			node, err := graph.CreateNodeByName(fmt.Sprintf("stage_%d", i))
			if err != nil {
				return fmt.Errorf("failed to create node: %w", err)
			}
			node.SetLabel(fmt.Sprintf("%s\n%d", s.Status, s.Count))
			node.SetShape("box")
			node.SetStyle("filled")

			if s.Status == models.StatusCancelled {
				node.SetFillColor("lightgrey")
				if first != nil {
					edge, err := graph.CreateEdgeByName("cancelled", first, node)
					if err != nil {
						return fmt.Errorf("failed to create edge: %w", err)
					}
					edge.SetStyle("dashed")
				}
				continue
			}

			node.SetFillColor(stageColor(s.Count))
			if first == nil {
				first = node
			}
			if prev != nil {
				if _, err := graph.CreateEdgeByName(fmt.Sprintf("e_%d", i), prev, node); err != nil {
					return fmt.Errorf("failed to create edge: %w", err)
				}
			}
			prev = node
		}
		return nil
	})
}

func stageColor(count int) string {
	if count == 0 {
		return "white"
	}
	return "lightblue"
}

// NetworkGraph connects "me" to each company and each company to its people.
// Edge labels carry the connection degree; people without a company hang off "me".
func NetworkGraph(ctx context.Context, records []models.Person, format graphviz.Format) ([]byte, error) {
	return render(ctx, format, func(graph *cgraph.Graph) error {
		graph.SetLabel("Network")
		graph.SetLayout("neato")

		me, err := graph.CreateNodeByName("me")
		if err != nil {
			return fmt.Errorf("failed to create node: %w", err)
		}
		me.SetShape("doublecircle")

		companies := make(map[string]*cgraph.Node)
		for i, p := range records {
			person, err := graph.CreateNodeByName(fmt.Sprintf("person_%d", i))
			if err != nil {
				return fmt.Errorf("failed to create node: %w", err)
			}
			person.SetLabel(p.DisplayName())
			person.SetShape("ellipse")
			person.SetStyle("filled")
			if p.Connected {
				person.SetFillColor("lightgreen")
			} else {
				person.SetFillColor("lightyellow")
			}

			parent := me
			if company := models.Deref(p.CurrentCompany); company != "" {
				node, ok := companies[company]
				if !ok {
					node, err = graph.CreateNodeByName(fmt.Sprintf("company_%d", len(companies)))
					if err != nil {
						return fmt.Errorf("failed to create node: %w", err)
					}
					node.SetLabel(company)
					node.SetShape("box")
					companies[company] = node
					if _, err := graph.CreateEdgeByName("", me, node); err != nil {
						return fmt.Errorf("failed to create edge: %w", err)
					}
				}
				parent = node
			}

			edge, err := graph.CreateEdgeByName(fmt.Sprintf("link_%d", i), parent, person)
			if err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
			if p.ConnectionDegree > 0 {
				edge.SetLabel(models.ConnectionLabel(p.ConnectionDegree))
			} else {
				edge.SetStyle("dashed")
			}
		}
		return nil
	})
}

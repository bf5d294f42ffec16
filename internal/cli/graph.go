package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/batchsort/pkg/batch"
	apperrors "github.com/matzehuels/batchsort/pkg/errors"
	"github.com/matzehuels/batchsort/pkg/render/dot"
	"github.com/matzehuels/batchsort/pkg/scene"
)

// graphFlags holds flags for the graph command.
type graphFlags struct {
	panel    string
	output   string
	svg      bool
	showKeys bool
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var flags graphFlags

	cmd := &cobra.Command{
		Use:   "graph <scene.json>",
		Short: "Export a panel's ordering constraints",
		Long: `Graph writes the dependency graph of one panel: an edge A -> B means the
widgets overlap and A must be drawn before B. Nodes with the same color
share a batch key.

Output is Graphviz DOT, or SVG with --svg or an .svg output path.`,
		Example: `  batchsort graph menu.json --panel HUD
  batchsort graph menu.json --panel HUD -o hud.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.panel, "panel", "", "panel to export (required when the scene has several)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&flags.svg, "svg", false, "render SVG instead of DOT")
	cmd.Flags().BoolVar(&flags.showKeys, "keys", false, "show batch keys in node labels")

	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, input string, flags graphFlags) error {
	sc, err := scene.ImportJSON(input)
	if err != nil {
		return err
	}
	p, err := selectPanel(sc, flags.panel)
	if err != nil {
		return err
	}

	items := scene.BuildItems(p)
	g := batch.NewGraph(items)
	out := dot.ToDOT(g, dot.Options{
		Label:    func(i int) string { return items[i].ID() },
		ShowKeys: flags.showKeys,
	})
	commandLogger(cmd).Debug("built graph", "panel", p.Name, "nodes", g.Len(), "edges", len(g.Edges()))

	data := []byte(out)
	if flags.svg || strings.EqualFold(filepath.Ext(flags.output), ".svg") {
		data, err = dot.RenderSVG(cmd.Context(), out)
		if err != nil {
			return err
		}
	}

	if flags.output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(flags.output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", flags.output, err)
	}
	printSuccess("Exported panel %s", StyleTitle.Render(p.Name))
	printFile(flags.output)
	return nil
}

// selectPanel returns the named panel, or the only panel when name is empty.
func selectPanel(sc *scene.Scene, name string) (*scene.Panel, error) {
	if name == "" {
		if len(sc.Panels) == 1 {
			return &sc.Panels[0], nil
		}
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "scene has %d panels, choose one with --panel", len(sc.Panels))
	}
	p := sc.Panel(name)
	if p == nil {
		return nil, apperrors.New(apperrors.ErrCodePanelNotFound, "panel %q not found", name)
	}
	return p, nil
}

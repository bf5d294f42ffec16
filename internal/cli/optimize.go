package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/batchsort/pkg/errors"
	"github.com/matzehuels/batchsort/pkg/pipeline"
	"github.com/matzehuels/batchsort/pkg/scene"
)

// optimizeFlags holds flags for the optimize command.
type optimizeFlags struct {
	output         string
	report         string
	inPlace        bool
	panel          string
	applyUnchanged bool
	concurrency    int
	noCache        bool
	refresh        bool
}

// optimizeCommand creates the optimize command.
func (c *CLI) optimizeCommand() *cobra.Command {
	var flags optimizeFlags

	cmd := &cobra.Command{
		Use:   "optimize <scene.json>",
		Short: "Reorder widgets to reduce draw calls",
		Long: `Optimize reorders the widgets of each panel so that widgets sharing a batch
key (material, texture and shader) are drawn together, and rewrites their
depths to match. Widgets that overlap keep their relative order.

Panels whose draw-call count would not go down are left untouched unless
--apply-unchanged is set.`,
		Example: `  batchsort optimize menu.json
  batchsort optimize menu.json -o out.json --report report.json
  batchsort optimize menu.json --panel HUD --in-place`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runOptimize(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output scene path (default <input>.optimized.json)")
	cmd.Flags().StringVar(&flags.report, "report", "", "write the optimization report as JSON")
	cmd.Flags().BoolVar(&flags.inPlace, "in-place", false, "overwrite the input file")
	cmd.Flags().StringVar(&flags.panel, "panel", "", "optimize only this panel")
	cmd.Flags().BoolVar(&flags.applyUnchanged, "apply-unchanged", false, "rewrite depths even when draw calls do not go down")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 0, "panels optimized at once (default from config)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the report cache")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "recompute even if a cached report exists")
	cmd.MarkFlagsMutuallyExclusive("output", "in-place")

	return cmd
}

func (c *CLI) runOptimize(cmd *cobra.Command, input string, flags optimizeFlags) error {
	ctx := cmd.Context()

	sc, err := scene.ImportJSON(input)
	if err != nil {
		return err
	}

	output := flags.output
	switch {
	case flags.inPlace:
		output = input
	case output == "":
		output = defaultOutputPath(input)
	}
	if err := apperrors.ValidatePath(output); err != nil {
		return err
	}

	opts := c.pipelineOptions()
	opts.Panel = flags.panel
	opts.Refresh = flags.refresh
	if cmd.Flags().Changed("apply-unchanged") {
		opts.ApplyUnchanged = flags.applyUnchanged
	}
	if flags.concurrency != 0 {
		opts.Concurrency = flags.concurrency
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(commandLogger(cmd))
	spin := newSpinner(ctx, cmd.ErrOrStderr(), "Optimizing "+input)
	spin.Start()
	rep, err := runner.Optimize(ctx, sc, opts)
	spin.Stop()
	if err != nil {
		return err
	}

	if err := scene.ExportJSON(rep.Result, output); err != nil {
		return err
	}
	prog.done("Wrote optimized scene", "output", output, "cached", rep.Cached)
	if flags.report != "" {
		if err := writeReport(rep, flags.report); err != nil {
			return err
		}
	}

	printOptimizeResult(rep)
	printFile(output)
	if flags.report != "" {
		printFile(flags.report)
	}
	return nil
}

// defaultOutputPath turns "menu.json" into "menu.optimized.json".
func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".optimized" + ext
}

func writeReport(rep *pipeline.Report, path string) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func printOptimizeResult(rep *pipeline.Report) {
	name := rep.Scene
	if name == "" {
		name = "scene"
	}
	if rep.Saved() > 0 {
		printSuccess("%s: %s", StyleTitle.Render(name), formatDrawCalls(rep.Before, rep.After))
	} else {
		printInfo("%s: %s", StyleTitle.Render(name), formatDrawCalls(rep.Before, rep.After))
	}
	for _, p := range rep.Panels {
		switch {
		case p.Skipped():
			printKeyValue(p.Panel, StyleDim.Render("skipped ("+p.SkipReason+")"))
		case !p.Applied:
			printKeyValue(p.Panel, formatDrawCalls(p.Before, p.After)+StyleDim.Render(" (unchanged)"))
		default:
			printKeyValue(p.Panel, formatDrawCalls(p.Before, p.After))
		}
	}
	printStats(len(rep.Panels), rep.Applied(), rep.Cached)
}

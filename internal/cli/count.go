package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/batchsort/pkg/pipeline"
	"github.com/matzehuels/batchsort/pkg/scene"
)

// countCommand creates the count command.
func (c *CLI) countCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "count <scene.json>",
		Short: "Report draw calls per panel",
		Long: `Count reports how many draw calls each panel needs in its current depth
order. The scene is not modified.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scene.ImportJSON(args[0])
			if err != nil {
				return err
			}
			rep := pipeline.Count(sc)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}

			for _, p := range rep.Panels {
				printKeyValue(p.Panel, fmt.Sprintf("%s draw calls %s",
					StyleNumber.Render(fmt.Sprint(p.DrawCalls)),
					StyleDim.Render(fmt.Sprintf("(%d widgets)", p.Widgets))))
			}
			printInfo("Total: %s draw calls", StyleNumber.Render(fmt.Sprint(rep.Total)))
			printNextStep("Reduce them with", "batchsort optimize "+args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print counts as JSON")
	return cmd
}

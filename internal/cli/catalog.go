package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/motifhq/motif/pkg/pipeline"
)

// catalogCommand creates the catalog command: the grouped overview of every
// eligible template with each frame rendering its border style supports.
func (c *CLI) catalogCommand() *cobra.Command {
	var (
		text    string
		outDir  string
		seed    uint64
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Render the catalog overview grouped by border family",
		Example: `  motif catalog --text "HAPPY DAYS"
  motif catalog --text "HAPPY DAYS" --seed 7 -o ./catalog`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			runner, cleanup, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			prog := newProgress(logger)
			spin := newSpinnerWithContext(cmd.Context(), "Rendering catalog...")
			spin.Start()
			result, err := runner.Catalog(cmd.Context(), pipeline.Options{
				Text:    text,
				Seed:    seed,
				Refresh: refresh,
				Logger:  logger,
			})
			if err != nil {
				spin.Stop()
				return err
			}
			spin.Stop()

			if err := os.MkdirAll(outDir, 0755); err != nil {
				return err
			}
			for _, group := range result.Groups {
				printInfo("%s", StyleTitle.Render(group.Family))
				for _, v := range group.Variants {
					name := fmt.Sprintf("%s-%s.svg", v.Descriptor.TemplateID, v.Descriptor.Frame)
					path := filepath.Join(outDir, name)
					if err := os.WriteFile(path, []byte(v.Doc), 0644); err != nil {
						return err
					}
					printFile(path)
				}
			}
			prog.done("Catalog rendered")
			printStats(result.Stats)
			return nil
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "text to inject (required)")
	cmd.Flags().StringVarP(&outDir, "output", "o", "catalog", "output directory")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for reproducible color picks")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the base-result cache")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}

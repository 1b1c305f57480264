package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/motifhq/motif/pkg/pipeline"
)

// renderCommand creates the render command: one template, one descriptor,
// one output document.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		text    string
		tplID   string
		color   string
		frame   string
		tilt    int
		texture string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one personalized variant",
		Long:  `Render injects the given text into a template, auto-fits it, applies the requested color, frame, tilt, and texture, and writes the resulting document.`,
		Example: `  motif render --text "HAPPY BIRTHDAY ANNA" --template classic-01
  motif render --text "CONGRATS" --template classic-01 --color c0392b --frame double --tilt -10 -o card.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			runner, cleanup, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			d := pipeline.Descriptor{
				TemplateID: tplID,
				Color:      color,
				Frame:      frame,
				Tilt:       tilt,
				Texture:    texture,
			}

			prog := newProgress(logger)
			spin := newSpinnerWithContext(cmd.Context(), "Rendering variant...")
			spin.Start()
			v, err := runner.Regenerate(cmd.Context(), text, d)
			if err != nil {
				spin.Stop()
				return err
			}
			spin.Stop()

			if out == "" {
				out = fmt.Sprintf("%s-%s.svg", appName, tplID)
			}
			if err := os.WriteFile(out, []byte(v.Doc), 0644); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Rendered %s", tplID))
			printSuccess("Variant written")
			printFile(out)
			printNextStep("Share it", appName+" link emit --text "+fmt.Sprintf("%q", text)+" --template "+tplID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "text to inject (required)")
	cmd.Flags().StringVar(&tplID, "template", "", "template identifier (required)")
	cmd.Flags().StringVar(&color, "color", "", "variant color as hex without '#'")
	cmd.Flags().StringVar(&frame, "frame", "", "frame rendering: single, double, or split")
	cmd.Flags().IntVar(&tilt, "tilt", 0, "rotation in degrees, within (-360, 360)")
	cmd.Flags().StringVar(&texture, "texture", "", "texture identifier or group")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file path")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

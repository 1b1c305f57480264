package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/motifhq/motif/pkg/errors"
	"github.com/motifhq/motif/pkg/svgdoc"
)

// inspectCommand creates the inspect command. It reports the naming-convention
// containers and text zones a template document exposes, the groundwork for
// authoring its zone catalog entries.
func (c *CLI) inspectCommand() *cobra.Command {
	var templateID string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List the containers and text zones of a template document",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runner, cleanup, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			templates, err := runner.Store.ListActiveTemplates(ctx)
			if err != nil {
				return err
			}
			var locator string
			editable := make(map[int]bool)
			for _, tpl := range templates {
				if tpl.ID == templateID {
					locator = tpl.Locator
					for _, zone := range tpl.EditableZones() {
						editable[zone.Index] = true
					}
					break
				}
			}
			if locator == "" {
				return errors.New(errors.ErrCodeTemplateNotFound, "template %q not in catalog", templateID)
			}

			raw, err := runner.Fetcher.FetchTemplate(ctx, locator)
			if err != nil {
				return err
			}
			doc, err := svgdoc.Normalize(raw)
			if err != nil {
				return err
			}
			containers, err := svgdoc.LocateContainers(doc)
			if err != nil {
				return err
			}
			zones, err := svgdoc.LocateTextZones(doc)
			if err != nil {
				return err
			}

			printKeyValue("Template", templateID)
			printKeyValue("Locator", locator)
			printNewline()

			printInfo("%d containers", len(containers))
			numbers := make([]int, 0, len(containers))
			for n := range containers {
				numbers = append(numbers, n)
			}
			sort.Ints(numbers)
			for _, n := range numbers {
				box := containers[n]
				printDetail("ct-%d: %g,%g %g×%g", n, box.X, box.Y, box.Width, box.Height)
			}

			printNewline()
			printInfo("%d text zones", len(zones))
			for _, zone := range zones {
				label := fmt.Sprintf("zone %d", zone.Index)
				if editable[zone.Index] {
					label += " (editable)"
				}
				detail := label
				if zone.Container >= 0 {
					detail += fmt.Sprintf(" in ct-%d", zone.Container)
				}
				if zone.FontSize > 0 {
					detail += fmt.Sprintf(" font-size %g", zone.FontSize)
				}
				if zone.Content != "" {
					detail += fmt.Sprintf(" %q", zone.Content)
				}
				printDetail("%s", detail)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&templateID, "template", "", "template identifier (required)")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

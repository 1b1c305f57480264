package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/motifhq/motif/pkg/errors"
	"github.com/motifhq/motif/pkg/session"
)

// sessionCommand creates the session command for restorable CLI state.
func (c *CLI) sessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and restore saved sessions",
	}

	cmd.AddCommand(c.sessionShowCommand())
	cmd.AddCommand(c.sessionRestoreCommand())
	cmd.AddCommand(c.sessionCleanupCommand())

	return cmd
}

// sessionShowCommand creates the "session show" subcommand.
func (c *CLI) sessionShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a session's text and saved descriptors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := session.NewFileStore("")
			if err != nil {
				return err
			}
			sess, err := sessions.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if sess == nil {
				return errors.New(errors.ErrCodeSessionNotFound, "session %q not found or expired", args[0])
			}
			printKeyValue("Text", sess.Text)
			printKeyValue("Created", sess.CreatedAt.Format("2006-01-02 15:04"))
			printKeyValue("Expires", sess.ExpiresAt.Format("2006-01-02 15:04"))
			for i, d := range sess.Saved {
				printKeyValue("Saved "+strconv.Itoa(i+1), d.Encode())
			}
			return nil
		},
	}
}

// sessionRestoreCommand creates the "session restore" subcommand, rendering
// every saved descriptor back into documents.
func (c *CLI) sessionRestoreCommand() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Re-render every variant saved in a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := session.NewFileStore("")
			if err != nil {
				return err
			}
			sess, err := sessions.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if sess == nil {
				return errors.New(errors.ErrCodeSessionNotFound, "session %q not found or expired", args[0])
			}
			if len(sess.Saved) == 0 {
				printInfo("Session has no saved variants")
				return nil
			}

			runner, cleanup, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := os.MkdirAll(outDir, 0755); err != nil {
				return err
			}
			restored := 0
			for i, d := range sess.Saved {
				v, err := runner.Regenerate(cmd.Context(), sess.Text, d)
				if err != nil {
					printWarning("skipping %s: %v", d.TemplateID, err)
					continue
				}
				path := fmt.Sprintf("%s/%s-%d.svg", outDir, d.TemplateID, i+1)
				if err := os.WriteFile(path, []byte(v.Doc), 0644); err != nil {
					return err
				}
				printFile(path)
				restored++
			}
			printSuccess("Restored %d of %d variants", restored, len(sess.Saved))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", "restored", "output directory")

	return cmd
}

// sessionCleanupCommand creates the "session cleanup" subcommand.
func (c *CLI) sessionCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := session.NewFileStore("")
			if err != nil {
				return err
			}
			if err := sessions.Cleanup(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Expired sessions removed")
			printDetail("Directory: %s", sessions.Path())
			return nil
		},
	}
}

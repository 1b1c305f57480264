package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/motifhq/motif/pkg/pipeline"
	"github.com/motifhq/motif/pkg/session"
)

// browseCommand creates the browse command: an interactive pager over a
// filtered generation batch.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		text     string
		colors   string
		tilts    string
		textures string
		filters  pipeline.Filters
		pageSize int
		seed     uint64
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through a filtered generation batch interactively",
		Example: `  motif browse --text "HAPPY DAYS"
  motif browse --text "HAPPY DAYS" --colors c0392b,2980b9 --tilts -10,0,10 --shape round`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			runner, cleanup, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			tiltList, err := parseTilts(tilts)
			if err != nil {
				return err
			}
			opts := pipeline.Options{
				Text:     text,
				Colors:   parseList(colors),
				Tilts:    tiltList,
				Textures: parseList(textures),
				Filters:  filters,
				PageSize: pageSize,
				Seed:     seed,
				Logger:   logger,
			}
			pager, err := runner.Generate(cmd.Context(), opts)
			if err != nil {
				return err
			}

			sessions, err := session.NewFileStore("")
			if err != nil {
				return err
			}
			sess, err := session.New(text, session.DefaultTTL)
			if err != nil {
				return err
			}

			model := newBrowseModel(cmd.Context(), pager, sess, sessions, outDir)
			final, err := tea.NewProgram(model).Run()
			if err != nil {
				return err
			}
			m := final.(browseModel)
			if m.savedCount > 0 {
				printSuccess("Saved %d variants to session %s", m.savedCount, sess.ID[:8])
				printNextStep("Restore it", appName+" session show "+sess.ID)
			}
			printStats(pager.Stats())
			return nil
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "text to inject (required)")
	cmd.Flags().StringVar(&colors, "colors", "", "comma-separated hex colors without '#'")
	cmd.Flags().StringVar(&tilts, "tilts", "", "comma-separated tilt degrees")
	cmd.Flags().StringVar(&textures, "textures", "", "comma-separated texture identifiers")
	cmd.Flags().StringVar(&filters.Shape, "shape", "", "filter by template shape")
	cmd.Flags().StringVar(&filters.Object, "object", "", "filter by template object")
	cmd.Flags().StringVar(&filters.Frame, "frame", "", "filter by frame rendering")
	cmd.Flags().StringVar(&filters.Border, "border", "", "filter by border style")
	cmd.Flags().StringVar(&filters.Corner, "corner", "", "filter by corner style")
	cmd.Flags().StringVar(&filters.Fill, "fill", "", "filter by fill style")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "variants per page")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for reproducible batches")
	cmd.Flags().StringVarP(&outDir, "output", "o", "variants", "export directory")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}

// pageMsg carries a freshly rendered page into the model.
type pageMsg struct {
	variants []pipeline.Variant
	done     bool
}

// browseModel is the bubbletea model for paging through variants.
type browseModel struct {
	ctx      context.Context
	pager    *pipeline.Pager
	session  *session.Session
	sessions session.Store
	outDir   string

	page       []pipeline.Variant
	pageNum    int
	cursor     int
	done       bool
	loading    bool
	status     string
	savedCount int
}

func newBrowseModel(ctx context.Context, pager *pipeline.Pager, sess *session.Session, sessions session.Store, outDir string) browseModel {
	return browseModel{
		ctx:      ctx,
		pager:    pager,
		session:  sess,
		sessions: sessions,
		outDir:   outDir,
		loading:  true,
	}
}

func (m browseModel) nextPage() tea.Cmd {
	return func() tea.Msg {
		variants, done := m.pager.Next(m.ctx)
		return pageMsg{variants: variants, done: done}
	}
}

func (m browseModel) Init() tea.Cmd {
	return m.nextPage()
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pageMsg:
		m.page = msg.variants
		m.done = msg.done
		m.pageNum++
		m.cursor = 0
		m.loading = false
		if len(m.page) == 0 {
			m.status = "No variants matched"
		}
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			if msg.String() == "q" || msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.page)-1 {
				m.cursor++
			}
		case "n", "right", "l":
			if m.done {
				m.status = "No more pages"
				return m, nil
			}
			m.loading = true
			m.status = ""
			return m, m.nextPage()
		case "enter", "e":
			m.status = m.export()
		case "s":
			m.status = m.save()
		}
	}
	return m, nil
}

// export writes the highlighted variant's document to the export directory.
func (m *browseModel) export() string {
	if len(m.page) == 0 {
		return ""
	}
	v := m.page[m.cursor]
	if err := os.MkdirAll(m.outDir, 0755); err != nil {
		return "export failed: " + err.Error()
	}
	name := fmt.Sprintf("%s-p%d-%d.svg", v.Descriptor.TemplateID, m.pageNum, m.cursor+1)
	path := filepath.Join(m.outDir, name)
	if err := os.WriteFile(path, []byte(v.Doc), 0644); err != nil {
		return "export failed: " + err.Error()
	}
	return "exported " + path
}

// save records the highlighted variant's descriptor in the session.
func (m *browseModel) save() string {
	if len(m.page) == 0 {
		return ""
	}
	d := m.page[m.cursor].Descriptor
	m.session.Save(d)
	if err := m.sessions.Set(m.ctx, m.session); err != nil {
		return "save failed: " + err.Error()
	}
	m.savedCount = len(m.session.Saved)
	return fmt.Sprintf("saved (%d in session)", m.savedCount)
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Browse Variants"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  n next page  ⏎ export  s save  q quit"))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(StyleDim.Render("  rendering page..."))
		return b.String()
	}

	rows := [][]string{}
	for i, v := range m.page {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		d := v.Descriptor
		color := d.Color
		if color == "" {
			color = "—"
		}
		texture := d.Texture
		if texture == "" {
			texture = "—"
		}
		rows = append(rows, []string{
			cursor, d.TemplateID, color, d.Frame, strconv.Itoa(d.Tilt), texture,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Template", "Color", "Frame", "Tilt", "Texture").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row == m.cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	footer := fmt.Sprintf("  page %d · %d remaining", m.pageNum, m.pager.Remaining())
	if m.done {
		footer += " · last page"
	}
	b.WriteString(StyleDim.Render(footer))
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(StyleHighlight.Render("  " + m.status))
	}
	return b.String()
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/ldscript/layout"
)

// palette holds the styles for one output mode. The plain palette carries
// no colour so piped output stays free of escape codes.
type palette struct {
	title    lipgloss.Style
	header   lipgloss.Style
	cell     lipgloss.Style
	bootCopy lipgloss.Style
	warn     lipgloss.Style
	border   lipgloss.Style
}

func newPalette(color bool) palette {
	p := palette{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Bold(true).Padding(0, 1),
		cell:     lipgloss.NewStyle().Padding(0, 1),
		bootCopy: lipgloss.NewStyle().Padding(0, 1),
		warn:     lipgloss.NewStyle(),
		border:   lipgloss.NewStyle(),
	}
	if !color {
		return p
	}
	p.title = p.title.Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Padding(0, 1)
	p.header = p.header.Foreground(lipgloss.Color("#87CEEB"))
	p.bootCopy = p.bootCopy.Foreground(lipgloss.Color("#98FB98"))
	p.warn = p.warn.Foreground(lipgloss.Color("#FF6B6B"))
	p.border = p.border.Foreground(lipgloss.Color("#666666"))
	return p
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

var showCmd = &cobra.Command{
	Use:   "show <descriptor>",
	Short: "Print the memory map of a descriptor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := loadLayout(args[0])
		if err != nil {
			return err
		}
		_, ferr := l.Freeze()
		fmt.Fprint(cmd.OutOrStdout(), renderMap(args[0], l.Snapshot(), ferr, newPalette(stdoutIsTerminal())))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

// renderMap formats the region and section tables of img. invalid, when
// set, is the reason the layout cannot be generated yet.
func renderMap(name string, img *layout.Image, invalid error, p palette) string {
	var b strings.Builder

	b.WriteString(p.title.Render("Memory map"))
	b.WriteString(" ")
	b.WriteString(name)
	b.WriteString("\n\n")

	regions := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.border).
		Headers("REGION", "ACCESS", "ORIGIN", "END", "SIZE", "USED", "FREE")
	for _, r := range img.Regions() {
		used := img.Usage(r.ID).Total()
		free := "-"
		if used <= uint64(r.Size) {
			free = layout.Size(uint64(r.Size) - used).String()
		}
		regions.Row(
			r.ID,
			r.Capabilities.String(),
			r.Base.String(),
			fmt.Sprintf("0x%08x", r.End()),
			r.Size.String(),
			layout.Size(used).String(),
			free,
		)
	}
	regions.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return p.header
		}
		return p.cell
	})
	b.WriteString(regions.Render())
	b.WriteString("\n\n")

	sections := img.Sections()
	rows := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.border).
		Headers("SECTION", "ROLE", "VMA", "LMA", "SIZE", "PLACEMENT")
	for _, s := range sections {
		size := "auto"
		if s.Size > 0 {
			size = s.Size.String()
		}
		rows.Row(s.Name, s.Role.String(), s.VMA, s.LMA, size, placement(s))
	}
	rows.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return p.header
		case row >= 0 && row < len(sections) && sections[row].BootCopy():
			return p.bootCopy
		}
		return p.cell
	})
	b.WriteString(rows.Render())
	b.WriteString("\n")

	if invalid != nil {
		b.WriteString("\n")
		b.WriteString(p.warn.Render("not generatable: " + invalid.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

func placement(s layout.Section) string {
	switch {
	case s.BootCopy():
		return "boot-copy"
	case s.Role.NoLoad():
		return "noload"
	}
	return "in-place"
}

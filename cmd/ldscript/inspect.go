package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/ldscript/layout"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	regionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	attrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type inspectModel struct {
	invalid  error
	img      *layout.Image
	filename string
	regions  []layout.MemoryRegion
	filter   textinput.Model
	selected int
	state    inspectState
}

type inspectState int

const (
	stateBrowse inspectState = iota
	stateFilter
)

func newInspectModel(filename string, img *layout.Image, invalid error) *inspectModel {
	ti := textinput.New()
	ti.Placeholder = "section name"
	ti.Prompt = "filter: "
	ti.Width = 30

	return &inspectModel{
		invalid:  invalid,
		img:      img,
		filename: filename,
		regions:  img.Regions(),
		filter:   ti,
		state:    stateBrowse,
	}
}

func (m *inspectModel) Init() tea.Cmd {
	return nil
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.state == stateFilter {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter", "esc":
			m.filter.Blur()
			m.state = stateBrowse
			if key.String() == "esc" {
				m.filter.SetValue("")
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.regions)-1 {
			m.selected++
		}
	case "/":
		m.state = stateFilter
		return m, m.filter.Focus()
	case "esc":
		m.filter.SetValue("")
	}
	return m, nil
}

// visibleSections returns the sections of the selected region matching
// the filter.
func (m *inspectModel) visibleSections() []layout.Section {
	if len(m.regions) == 0 {
		return nil
	}
	needle := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	var out []layout.Section
	for _, s := range m.img.SectionsIn(m.regions[m.selected].ID) {
		if needle == "" || strings.Contains(s.Name, needle) {
			out = append(out, s)
		}
	}
	return out
}

func (m *inspectModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Layout Inspector"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	if len(m.regions) == 0 {
		b.WriteString("No memory regions.\n\n")
		b.WriteString(helpStyle.Render("q quit"))
		return b.String()
	}

	b.WriteString("Regions:\n\n")
	for i, r := range m.regions {
		line := fmt.Sprintf("%-12s %s %s..0x%08x %s", r.ID, r.Capabilities, r.Base, r.End(), r.Size)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + regionStyle.Render(line))
		}
		b.WriteString("\n")
	}

	r := m.regions[m.selected]
	u := m.img.Usage(r.ID)
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Sections in %s (exec %s, load %s of %s):\n\n",
		regionStyle.Render(r.ID), layout.Size(u.Exec), layout.Size(u.Load), r.Size))

	sections := m.visibleSections()
	if len(sections) == 0 {
		b.WriteString(helpStyle.Render("  none"))
		b.WriteString("\n")
	}
	for _, s := range sections {
		b.WriteString("  ")
		b.WriteString(m.formatSection(s, r.ID))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.state == stateFilter || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}
	if m.invalid != nil {
		b.WriteString(errorStyle.Render("not generatable: " + m.invalid.Error()))
		b.WriteString("\n\n")
	}

	if m.state == stateFilter {
		b.WriteString(helpStyle.Render("enter apply • esc clear"))
	} else {
		b.WriteString(helpStyle.Render("↑/↓ select region • / filter • esc clear filter • q quit"))
	}
	return b.String()
}

func (m *inspectModel) formatSection(s layout.Section, region string) string {
	var where string
	switch {
	case !s.BootCopy():
		where = "in place"
	case s.VMA == region:
		where = "runs here, loaded from " + s.LMA
	default:
		where = "stored here, runs in " + s.VMA
	}
	size := "auto"
	if s.Size > 0 {
		size = s.Size.String()
	}
	return fmt.Sprintf("%-16s %s %s %s",
		s.Name, attrStyle.Render(s.Role.String()), attrStyle.Render(size), where)
}

func runInspect(filename string, img *layout.Image, invalid error) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !stdoutIsTerminal() {
		return errors.New("inspect needs an interactive terminal; use show instead")
	}
	p := tea.NewProgram(newInspectModel(filename, img, invalid), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <descriptor>",
	Short: "Browse regions and their sections interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := loadLayout(args[0])
		if err != nil {
			return err
		}
		_, ferr := l.Freeze()
		return runInspect(args[0], l.Snapshot(), ferr)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

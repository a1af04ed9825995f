package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const listWidth = 32

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#666666"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// browserModel lists devices on the left and the selected device's
// details in a scrollable viewport on the right.
type browserModel struct {
	report   *report
	styles   styles
	detail   viewport.Model
	selected int
	ready    bool
}

func newBrowserModel(r *report) *browserModel {
	return &browserModel{report: r, styles: newStyles(true)}
}

func (m *browserModel) Init() tea.Cmd {
	return nil
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.refresh()
			}
			return m, nil

		case "down", "j":
			if m.selected < len(m.report.Devices)-1 {
				m.selected++
				m.refresh()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		width := max(msg.Width-listWidth-4, 20)
		height := max(msg.Height-4, 5)
		if !m.ready {
			m.detail = viewport.New(width, height)
			m.ready = true
		} else {
			m.detail.Width = width
			m.detail.Height = height
		}
		m.refresh()
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m *browserModel) refresh() {
	if !m.ready {
		return
	}
	if len(m.report.Devices) == 0 {
		m.detail.SetContent("No physical devices.")
		return
	}
	m.detail.SetContent(describeText(m.report.Devices[m.selected], m.styles, m.detail.Width))
	m.detail.GotoTop()
}

func (m *browserModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	var list strings.Builder
	list.WriteString(m.styles.title.Render("Vulkan " + m.report.LoaderVersion))
	list.WriteString("\n\n")
	for i, d := range m.report.Devices {
		line := fmt.Sprintf("%d %s", d.Index, truncate(d.Name, listWidth-4))
		if i == m.selected {
			list.WriteString(selectedStyle.Render("> " + line))
		} else {
			list.WriteString("  " + line)
		}
		list.WriteString("\n")
	}
	list.WriteString(fmt.Sprintf("\n%d layers\n%d extensions\n", len(m.report.Layers), len(m.report.Extensions)))

	left := lipgloss.NewStyle().Width(listWidth).Render(list.String())
	right := paneStyle.Render(m.detail.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right) + "\n" +
		helpStyle.Render("↑/↓ device • pgup/pgdn scroll • q quit")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func runInteractive(r *report) error {
	p := tea.NewProgram(newBrowserModel(r), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

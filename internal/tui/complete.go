package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cbwinslow/hetzner-app/internal/edgectl"
)

type completeModel struct {
	state  *wizardState
	cursor int // 0=Run Deploy, 1=Exit
}

func newCompleteModel(state *wizardState) *completeModel {
	return &completeModel{state: state}
}

func (m *completeModel) Init() tea.Cmd {
	m.cursor = 1
	return nil
}

func (m *completeModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isLeft(msg) && m.cursor > 0 {
			m.cursor--
		}
		if isRight(msg) && m.cursor < 1 {
			m.cursor++
		}
		if isEnter(msg) {
			if m.cursor == 0 {
				// Deploy runs after the program exits, back on a normal screen.
				m.state.deploy = true
			}
			return m, tea.Quit
		}
		if msg.String() == "q" || isEsc(msg) {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *completeModel) View() string {
	var b strings.Builder

	b.WriteString(successStyle.Render("  Edge Proxy Provisioned!"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  Domain:   %s\n", selectedStyle.Render(m.state.domain)))
	b.WriteString(fmt.Sprintf("  Unit:     %s\n", normalStyle.Render(edgectl.UnitName)))

	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("  Next Steps"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("  $ edgectl up            # provision again and deploy the app stack"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("  $ edgectl status        # check the proxy unit"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("  $ edgectl doctor        # verify the host"))
	b.WriteString("\n\n")

	buttons := []string{"Run Deploy Now", "Exit"}
	for i, btn := range buttons {
		if i == m.cursor {
			b.WriteString("  " + borderStyle.Render(selectedStyle.Render(btn)))
		} else {
			b.WriteString("  " + normalStyle.Render("["+btn+"]"))
		}
		b.WriteString("  ")
	}

	b.WriteString(helpStyle.Render("\n\n  left/right: navigate  enter: select  q: quit"))
	return b.String()
}

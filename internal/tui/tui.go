package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cbwinslow/hetzner-app/internal/edgectl"
)

type screen int

const (
	screenWelcome screen = iota
	screenDomainInput
	screenEmailInput
	screenTokenInput
	screenConfirm
	screenPreflight
	screenProgress
	screenComplete
	screenHelp
)

type navigateMsg struct {
	to screen
}

type wizardState struct {
	domain string
	email  string
	token  string
	deploy bool
}

type screenModel interface {
	Init() tea.Cmd
	Update(tea.Msg) (screenModel, tea.Cmd)
	View() string
}

type rootModel struct {
	current  screen
	previous screen
	state    *wizardState
	screens  map[screen]screenModel
	width    int
	height   int
	quitting bool
}

func StartWizard() error {
	state := &wizardState{}
	screens := map[screen]screenModel{
		screenWelcome:     newWelcomeModel(),
		screenDomainInput: newDomainInputModel(state),
		screenEmailInput:  newEmailInputModel(state),
		screenTokenInput:  newTokenInputModel(state),
		screenConfirm:     newConfirmModel(state),
		screenPreflight:   newPreflightModel(state),
		screenProgress:    newProgressModel(state),
		screenComplete:    newCompleteModel(state),
		screenHelp:        newHelpModel(),
	}

	m := rootModel{
		current: screenWelcome,
		state:   state,
		screens: screens,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	if state.deploy {
		target, err := edgectl.LoadHostTarget()
		if err != nil {
			return err
		}
		return edgectl.RunDeploy(target, nil)
	}
	return nil
}

func (m rootModel) Init() tea.Cmd {
	return m.screens[m.current].Init()
}

func (m rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if isQuit(msg) {
			m.quitting = true
			return m, tea.Quit
		}
		// Help overlay accessible via '?' except while steps are running
		if msg.String() == "?" && m.current != screenProgress && m.current != screenHelp {
			m.previous = m.current
			m.current = screenHelp
			return m, m.screens[m.current].Init()
		}

	case navigateMsg:
		m.current = msg.to
		s := m.screens[m.current]
		return m, s.Init()

	case helpReturnMsg:
		m.current = m.previous
		return m, nil
	}

	s := m.screens[m.current]
	newScreen, cmd := s.Update(msg)
	m.screens[m.current] = newScreen
	return m, cmd
}

func (m rootModel) View() string {
	if m.quitting {
		return ""
	}

	s := m.screens[m.current]
	content := s.View()

	if m.current >= screenDomainInput && m.current <= screenConfirm {
		step := int(m.current)
		total := int(screenConfirm)
		progress := mutedStyle.Render(fmt.Sprintf("Step %d of %d", step, total))
		content = content + "\n" + progress
	}

	return content
}

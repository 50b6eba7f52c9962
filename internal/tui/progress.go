package tui

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cbwinslow/hetzner-app/internal/edgectl"
)

type stepStatus int

const (
	stepPending stepStatus = iota
	stepRunning
	stepDone
	stepFailed
)

type progressStep struct {
	label  string
	status stepStatus
	err    error
}

type stepDoneMsg struct {
	index int
	err   error
}

type progressModel struct {
	state       *wizardState
	provisioner *edgectl.Provisioner
	steps       []progressStep
	spinner     spinner.Model
	current     int
	done        bool
	errMsg      string
}

func newProgressModel(state *wizardState) *progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &progressModel{
		state:   state,
		spinner: sp,
		steps: []progressStep{
			{label: "Validating configuration"},
			{label: "Installing dependencies"},
			{label: "Rendering Caddyfile"},
			{label: "Writing systemd unit"},
			{label: "Starting proxy service"},
		},
	}
}

func (m *progressModel) Init() tea.Cmd {
	m.current = 0
	m.done = false
	m.errMsg = ""
	m.provisioner = nil
	for i := range m.steps {
		m.steps[i].status = stepPending
		m.steps[i].err = nil
	}
	m.steps[0].status = stepRunning

	return tea.Batch(m.spinner.Tick, m.runStep(0))
}

// The provisioning routine reads its inputs from the process environment, so
// the wizard exports the collected values before running the same pipeline
// the CLI uses.
func (m *progressModel) exportState() {
	os.Setenv("DOMAIN", m.state.domain)
	os.Setenv("LETSENCRYPT_EMAIL", m.state.email)
	os.Setenv("CLOUDFLARE_API_TOKEN", m.state.token)
}

func (m *progressModel) runStep(index int) tea.Cmd {
	return func() tea.Msg {
		err := m.doStep(index)
		return stepDoneMsg{index: index, err: err}
	}
}

func (m *progressModel) doStep(index int) error {
	if index == 0 {
		m.exportState()
		target, err := edgectl.LoadHostTarget()
		if err != nil {
			return err
		}
		m.provisioner = edgectl.NewProvisioner(target)
		return m.provisioner.Validate()
	}

	var fn func() error
	switch index {
	case 1:
		fn = m.provisioner.InstallDeps
	case 2:
		fn = m.provisioner.Render
	case 3:
		fn = m.provisioner.WriteUnit
	case 4:
		fn = m.provisioner.Start
	}
	_, err := captureOutput(fn)
	return err
}

func captureOutput(fn func() error) (string, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}

	// Drain concurrently: a step that writes more than the pipe buffer would
	// otherwise block with nobody reading.
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		io.Copy(&buf, r)
		close(done)
	}()

	oldOut, oldErr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = w, w
	err = fn()
	os.Stdout, os.Stderr = oldOut, oldErr
	w.Close()
	<-done
	r.Close()
	return buf.String(), err
}

func (m *progressModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stepDoneMsg:
		m.steps[msg.index].status = stepDone
		if msg.err != nil {
			m.steps[msg.index].status = stepFailed
			m.steps[msg.index].err = msg.err
			m.errMsg = msg.err.Error()
			m.done = true
			return m, nil
		}

		next := msg.index + 1
		if next >= len(m.steps) {
			m.done = true
			return m, func() tea.Msg { return navigateMsg{to: screenComplete} }
		}
		m.current = next
		m.steps[next].status = stepRunning
		return m, m.runStep(next)

	case tea.KeyMsg:
		if m.done && m.errMsg != "" {
			if isEnter(msg) || isEsc(msg) {
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *progressModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Provisioning"))
	b.WriteString("\n\n")

	for _, step := range m.steps {
		var icon string
		switch step.status {
		case stepPending:
			icon = mutedStyle.Render("  ")
		case stepRunning:
			icon = m.spinner.View()
		case stepDone:
			icon = successStyle.Render("OK")
		case stepFailed:
			icon = errorStyle.Render("XX")
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", icon, normalStyle.Render(step.label)))
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("  Error: " + m.errMsg))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("\n  press enter or esc to exit"))
	}

	return b.String()
}

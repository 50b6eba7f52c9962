package edgectl

import "fmt"

// Provisioner sequences the edge bootstrap: validate -> install deps ->
// render config -> write unit -> start proxy. Every stage is a hard
// precondition for the next; the first failure aborts the run. A second run
// with the same inputs is idempotent at every stage.
type Provisioner struct {
	Target     HostTarget
	Supervisor Supervisor
	Installer  *Installer

	settings Settings
}

func NewProvisioner(target HostTarget) *Provisioner {
	return &Provisioner{
		Target:     target,
		Supervisor: NewSystemd(target.UnitDir),
		Installer:  NewInstaller(target),
	}
}

func (p *Provisioner) Validate() error {
	set, err := LoadSettings()
	if err != nil {
		return err
	}
	p.settings = set
	return nil
}

func (p *Provisioner) InstallDeps() error {
	return p.Installer.EnsureAll()
}

func (p *Provisioner) Render() error {
	return RenderCaddyfile(p.Target, p.settings)
}

func (p *Provisioner) WriteUnit() error {
	return WriteUnit(p.Target, p.Supervisor)
}

func (p *Provisioner) Start() error {
	return StartProxy(p.Supervisor)
}

// Run executes the whole provisioning sequence.
func (p *Provisioner) Run() error {
	steps := []struct {
		label string
		fn    func() error
	}{
		{"validate configuration", p.Validate},
		{"install dependencies", p.InstallDeps},
		{"render proxy configuration", p.Render},
		{"write service unit", p.WriteUnit},
		{"start proxy", p.Start},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return err
		}
	}
	fmt.Printf("provisioned %s for %s\n", UnitName, p.settings.Domain)
	return nil
}

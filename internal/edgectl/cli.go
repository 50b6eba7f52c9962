package edgectl

import (
	"errors"
	"fmt"
)

func Run(args []string) error {
	if len(args) < 1 {
		usage()
		return errors.New("a command is required")
	}

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "provision":
		return cmdProvision()
	case "up":
		return cmdUp(cmdArgs)
	case "deploy":
		return cmdDeploy(cmdArgs)
	case "status":
		return cmdStatus()
	case "doctor":
		target, err := LoadHostTarget()
		if err != nil {
			return err
		}
		return RunDoctor(target)
	case "help", "--help", "-h":
		usage()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func usage() {
	fmt.Println(`edgectl - TLS edge provisioning for the app stack

Usage:
  edgectl provision            # install caddy+dns plugin, render Caddyfile, register unit
  edgectl up [deploy args...]  # provision, then run the deploy script with the given args
  edgectl deploy [args...]     # run only the deploy script
  edgectl status               # show unit state and effective paths
  edgectl doctor               # host preflight checks
  edgectl setup                # interactive setup wizard

Required environment:
  DOMAIN                 base domain served by the proxy
  LETSENCRYPT_EMAIL      ACME account email
  CLOUDFLARE_API_TOKEN   DNS-01 challenge credential

Paths can be overridden in edgectl.yml or via EDGECTL_* variables.`)
}

func cmdProvision() error {
	target, err := LoadHostTarget()
	if err != nil {
		return err
	}
	return NewProvisioner(target).Run()
}

func cmdUp(args []string) error {
	target, err := LoadHostTarget()
	if err != nil {
		return err
	}
	if err := NewProvisioner(target).Run(); err != nil {
		return err
	}
	return RunDeploy(target, args)
}

func cmdDeploy(args []string) error {
	target, err := LoadHostTarget()
	if err != nil {
		return err
	}
	return RunDeploy(target, args)
}

func cmdStatus() error {
	target, err := LoadHostTarget()
	if err != nil {
		return err
	}

	fmt.Printf("unit:       %s\n", UnitName)
	fmt.Printf("caddyfile:  %s", target.CaddyfilePath)
	if !fileExists(target.CaddyfilePath) {
		fmt.Print("  (not rendered)")
	}
	fmt.Println()
	fmt.Printf("unit dir:   %s\n", target.UnitDir)
	fmt.Printf("bin dir:    %s\n", target.BinDir)

	active, err := NewSystemd(target.UnitDir).IsActive(UnitName)
	if err != nil {
		fmt.Printf("state:      unavailable (%v)\n", err)
		return nil
	}
	if active {
		fmt.Println("state:      active")
	} else {
		fmt.Println("state:      inactive")
	}
	return nil
}

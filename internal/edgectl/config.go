package edgectl

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultCaddyfile    = "/etc/caddy/Caddyfile"
	defaultTemplate     = "caddy/Caddyfile"
	defaultUnitDir      = "/etc/systemd/system"
	defaultBinDir       = "/usr/local/bin"
	defaultDeployScript = "./deploy.sh"

	// UnitName is the systemd unit the proxy runs under.
	UnitName = "caddy.service"

	targetFileName = "edgectl.yml"
)

// RequiredEnv lists the environment values that must be present and non-empty
// before any host mutation happens. Order matters: the first missing key is
// the one reported.
var RequiredEnv = []string{"DOMAIN", "LETSENCRYPT_EMAIL", "CLOUDFLARE_API_TOKEN"}

// HostTarget names every host-global path the provisioning routine touches.
// Passing it explicitly keeps the routine runnable against a sandboxed
// filesystem in tests.
type HostTarget struct {
	CaddyfilePath string `yaml:"caddyfile"`
	TemplatePath  string `yaml:"template"`
	UnitDir       string `yaml:"unit_dir"`
	BinDir        string `yaml:"bin_dir"`
	DeployScript  string `yaml:"deploy_script"`
}

func DefaultHostTarget() HostTarget {
	return HostTarget{
		CaddyfilePath: defaultCaddyfile,
		TemplatePath:  defaultTemplate,
		UnitDir:       defaultUnitDir,
		BinDir:        defaultBinDir,
		DeployScript:  defaultDeployScript,
	}
}

// LoadHostTarget builds the target from defaults, an optional edgectl.yml in
// the working directory, and EDGECTL_* environment overrides, in that order.
func LoadHostTarget() (HostTarget, error) {
	target := DefaultHostTarget()

	b, err := os.ReadFile(targetFileName)
	if err == nil {
		if err := yaml.Unmarshal(b, &target); err != nil {
			return HostTarget{}, stageErrorf(KindConfig, "parse %s: %v", targetFileName, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return HostTarget{}, stageErrorf(KindConfig, "read %s: %v", targetFileName, err)
	}

	overrides := map[string]*string{
		"EDGECTL_CADDYFILE":     &target.CaddyfilePath,
		"EDGECTL_TEMPLATE":      &target.TemplatePath,
		"EDGECTL_UNIT_DIR":      &target.UnitDir,
		"EDGECTL_BIN_DIR":       &target.BinDir,
		"EDGECTL_DEPLOY_SCRIPT": &target.DeployScript,
	}
	for key, dst := range overrides {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	return target, nil
}

// ResolveTemplate returns the absolute template path. Relative paths are
// looked up under the templates directory.
func (t HostTarget) ResolveTemplate() string {
	if filepath.IsAbs(t.TemplatePath) {
		return t.TemplatePath
	}
	return filepath.Join(FindTemplatesDir(), t.TemplatePath)
}

// Settings holds the values substituted into the proxy configuration.
type Settings struct {
	Domain          string `validate:"required,fqdn"`
	Email           string `validate:"required,email"`
	CloudflareToken string `validate:"required"`
}

// RenderVars maps settings back onto the environment-variable names the
// Caddyfile template references.
func (s Settings) RenderVars() map[string]string {
	return map[string]string{
		"DOMAIN":               s.Domain,
		"LETSENCRYPT_EMAIL":    s.Email,
		"CLOUDFLARE_API_TOKEN": s.CloudflareToken,
	}
}

// ValidateEnv checks each key in order against the process environment and
// fails on the first missing or empty one. It never aggregates: naming one
// concrete missing key is the whole point of the pre-mutation check.
func ValidateEnv(keys []string) error {
	for _, key := range keys {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			return stageErrorf(KindConfig, "required environment variable %s is not set", key)
		}
	}
	return nil
}

// LoadSettings loads a .env file if one exists (real environment wins),
// checks required keys, and validates value formats.
func LoadSettings() (Settings, error) {
	_ = godotenv.Load()

	if err := ValidateEnv(RequiredEnv); err != nil {
		return Settings{}, err
	}

	set := Settings{
		Domain:          strings.TrimSpace(os.Getenv("DOMAIN")),
		Email:           strings.TrimSpace(os.Getenv("LETSENCRYPT_EMAIL")),
		CloudflareToken: strings.TrimSpace(os.Getenv("CLOUDFLARE_API_TOKEN")),
	}
	if err := validator.New().Struct(set); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return Settings{}, stageErrorf(KindConfig, "invalid value for %s (%s)", verrs[0].Field(), verrs[0].Tag())
		}
		return Settings{}, stageErrorf(KindConfig, "validate settings: %v", err)
	}
	return set, nil
}

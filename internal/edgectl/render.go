package edgectl

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Placeholder syntaxes the renderer understands: envsubst-style ${VAR} and
// $VAR, plus Caddy's runtime form {env.VAR}. Both are expanded from the same
// variable map so the rendered file carries no unresolved references.
var (
	envsubstRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)
	caddyEnvRe = regexp.MustCompile(`\{env\.([A-Za-z_][A-Za-z0-9_]*)\}`)
)

// RenderString substitutes every placeholder in content from vars. A
// placeholder naming a key absent from vars fails the render, so a broken
// configuration is never written silently. The scan runs on the template
// before substitution: scanning the output instead would misread substituted
// values that legitimately contain placeholder-shaped text.
func RenderString(content string, vars map[string]string) (string, error) {
	if leftover := findUnresolved(content, vars); leftover != "" {
		return "", stageErrorf(KindRender, "unresolved placeholder %s", leftover)
	}

	expand := func(match, key string) string {
		if val, ok := vars[key]; ok {
			return val
		}
		return match
	}

	out := envsubstRe.ReplaceAllStringFunc(content, func(match string) string {
		groups := envsubstRe.FindStringSubmatch(match)
		key := groups[1]
		if key == "" {
			key = groups[2]
		}
		return expand(match, key)
	})
	out = caddyEnvRe.ReplaceAllStringFunc(out, func(match string) string {
		return expand(match, caddyEnvRe.FindStringSubmatch(match)[1])
	})
	return out, nil
}

// findUnresolved returns the first placeholder in content naming a key
// absent from vars, or "" when every reference is satisfied.
func findUnresolved(content string, vars map[string]string) string {
	for _, m := range envsubstRe.FindAllStringSubmatch(content, -1) {
		key := m[1]
		if key == "" {
			key = m[2]
		}
		if _, ok := vars[key]; !ok {
			return m[0]
		}
	}
	for _, m := range caddyEnvRe.FindAllStringSubmatch(content, -1) {
		if _, ok := vars[m[1]]; !ok {
			return m[0]
		}
	}
	return ""
}

// RenderFile renders the template at src into dst, creating parent
// directories and overwriting any previous output.
func RenderFile(src, dst string, vars map[string]string) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return stageErrorf(KindRender, "read template: %v", err)
	}
	out, err := RenderString(string(content), vars)
	if err != nil {
		return err
	}
	if err := ensureDir(filepath.Dir(dst), 0o755); err != nil {
		return stageErrorf(KindRender, "create %s: %v", filepath.Dir(dst), err)
	}
	if err := os.WriteFile(dst, []byte(out), 0o644); err != nil {
		return stageErrorf(KindRender, "write %s: %v", dst, err)
	}
	return nil
}

// RenderCaddyfile writes the live proxy configuration from the template and
// the validated settings.
func RenderCaddyfile(target HostTarget, set Settings) error {
	return RenderFile(target.ResolveTemplate(), target.CaddyfilePath, set.RenderVars())
}

// FindTemplatesDir locates the bundled templates: explicit override first,
// then next to the executable, then the working directory, then the shared
// install location.
func FindTemplatesDir() string {
	if custom := strings.TrimSpace(os.Getenv("EDGECTL_TEMPLATES")); custom != "" {
		return custom
	}

	exe, err := os.Executable()
	if err == nil {
		binDir := filepath.Dir(exe)
		candidates := []string{
			filepath.Join(binDir, "..", "templates"),
			filepath.Join(binDir, "templates"),
		}
		for _, c := range candidates {
			if dirExists(c) {
				return c
			}
		}
	}

	cwd, err := os.Getwd()
	if err == nil {
		c := filepath.Join(cwd, "templates")
		if dirExists(c) {
			return c
		}
	}

	if dirExists("/usr/local/share/edgectl/templates") {
		return "/usr/local/share/edgectl/templates"
	}
	return "templates"
}

// internal/config/overlay.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// OverlayOrganizations merges an optional organizations file over the
// loaded config, so large org lists can live outside the main config.
func OverlayOrganizations(cfg *Config, orgsPath string) error {
	b, err := os.ReadFile(orgsPath)
	if err != nil {
		// Missing organizations file should not kill startup
		return nil
	}

	var of OrganizationsFile
	if err := yaml.Unmarshal(b, &of); err != nil {
		return err
	}

	if len(of.Sources.Organizations) > 0 {
		cfg.Sources.Organizations = of.Sources.Organizations
	}
	return nil
}

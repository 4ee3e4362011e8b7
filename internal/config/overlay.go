// config/overlay.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// rostersFile mirrors just the company lists, so big ATS rosters can
// live in their own file next to config.yml and be swapped without
// touching the rest of the config.
type rostersFile struct {
	Sources struct {
		Greenhouse struct {
			Companies []Company `yaml:"companies"`
		} `yaml:"greenhouse"`
		Lever struct {
			Companies []Company `yaml:"companies"`
		} `yaml:"lever"`
		SmartRecruiters struct {
			Companies []Company `yaml:"companies"`
		} `yaml:"smartrecruiters"`
		Workday struct {
			Companies []Company `yaml:"companies"`
		} `yaml:"workday"`
	} `yaml:"sources"`
}

func OverlayRosters(cfg *Config, rostersPath string) error {
	b, err := os.ReadFile(rostersPath)
	if err != nil {
		// Missing rosters file should not kill startup
		return nil
	}

	var rf rostersFile
	if err := yaml.Unmarshal(b, &rf); err != nil {
		return err
	}

	if len(rf.Sources.Greenhouse.Companies) > 0 {
		cfg.Sources.Greenhouse.Companies = rf.Sources.Greenhouse.Companies
	}
	if len(rf.Sources.Lever.Companies) > 0 {
		cfg.Sources.Lever.Companies = rf.Sources.Lever.Companies
	}
	if len(rf.Sources.SmartRecruiters.Companies) > 0 {
		cfg.Sources.SmartRecruiters.Companies = rf.Sources.SmartRecruiters.Companies
	}
	if len(rf.Sources.Workday.Companies) > 0 {
		cfg.Sources.Workday.Companies = rf.Sources.Workday.Companies
	}
	return nil
}

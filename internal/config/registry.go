package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pet-medication-reminder/internal/models"
	"pet-medication-reminder/internal/notify"
)

type registryFile struct {
	Medications []models.Medication `yaml:"medications"`
}

// LoadRegistry reads a medication registry from a YAML file.
func LoadRegistry(path string) (models.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	reg := models.Registry(f.Medications)
	if err := ValidateRegistry(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func ValidateRegistry(reg models.Registry) error {
	if len(reg) == 0 {
		return errors.New("registry has no medications")
	}
	seen := make(map[string]bool, len(reg))
	for i, m := range reg {
		switch {
		case m.Key == "":
			return fmt.Errorf("medication #%d: empty key", i+1)
		case seen[m.Key]:
			return fmt.Errorf("medication %q: duplicate key", m.Key)
		case m.Name == "":
			return fmt.Errorf("medication %q: empty name", m.Key)
		case m.IntervalDays < 1:
			return fmt.Errorf("medication %q: interval_days must be positive", m.Key)
		}
		if err := notify.CheckKey(m.Key); err != nil {
			return fmt.Errorf("medication %q: %w", m.Key, err)
		}
		seen[m.Key] = true
	}
	return nil
}

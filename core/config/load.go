package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load loads the configuration from the directory.
func Load(path string) (*Configuration, error) {
	return loadFs(afero.NewOsFs(), path)
}

func loadFs(base afero.Fs, path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	configFs := afero.NewBasePathFs(base, path)
	configContents, err := afero.ReadFile(configFs, ConfigurationName)
	if err != nil {
		return nil, err
	}
	var out Configuration
	if err := yaml.UnmarshalStrict(configContents, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Join(path, ConfigurationName), err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Join(path, ConfigurationName), err)
	}
	out.configFs = configFs
	out.configurationDir = path
	return &out, nil
}

// Initialize writes the default configuration into dir if it doesn't
// already have one, then loads it.
func Initialize(dir string, logger *log.Logger) (*Configuration, error) {
	return initializeFs(afero.NewOsFs(), dir, logger)
}

func initializeFs(base afero.Fs, dir string, logger *log.Logger) (*Configuration, error) {
	if err := base.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	configPath := filepath.Join(dir, ConfigurationName)
	switch _, err := base.Stat(configPath); {
	case err == nil:
		logger.Printf("Keeping existing configuration %s\n", configPath)
	case os.IsNotExist(err):
		logger.Printf("Writing default configuration to %s\n", configPath)
		if err := afero.WriteFile(base, configPath, defaultConfigData, 0600); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return loadFs(base, dir)
}

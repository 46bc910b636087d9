package config

import (
	"io/ioutil"
	"os"
	"path"

	"github.com/ghodss/yaml"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

const (
	configDirName  = ".bricksync"
	configFileName = "config.yaml"
)

// DefaultFilePath returns the default config file location under the user's home directory.
func DefaultFilePath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "unable to find home directory")
	}
	return path.Join(home, configDirName, configFileName), nil
}

// MergeFile overlays values from a YAML file onto cfg.
// Only keys present in the file are applied; environment values win for
// anything the file omits. A missing file at the default path is not an error.
func MergeFile(cfg *Config, filePath string, mustExist bool) error {
	b, err := ioutil.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) && !mustExist { // if the optional default file is absent...
			return nil
		}
		return errors.Wrapf(err, "unable to read config file %v", filePath)
	}
	var m map[string]interface{}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return errors.Wrapf(err, "invalid YAML in config file %v", filePath)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     cfg,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(m); err != nil {
		return errors.Wrapf(err, "unable to apply config file %v", filePath)
	}
	return nil
}

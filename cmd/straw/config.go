package main

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// config holds defaults for flags not given on the command line.
type config struct {
	MatrixType string `yaml:"matrix_type"`
	Workers    int    `yaml:"workers"`
	Verbose    bool   `yaml:"verbose"`
	Separator  string `yaml:"separator"`
}

func defaultConfig() config {
	return config{
		MatrixType: "observed",
		Separator:  "\t",
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	if cfg.Separator == "" {
		cfg.Separator = "\t"
	}
	return cfg, nil
}

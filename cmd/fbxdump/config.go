package main

import (
	"os"

	yaml "gopkg.in/yaml.v2"
)

type config struct {
	Format               string  `yaml:"format"`
	Full                 bool    `yaml:"full"`
	IgnoreFooterChecksum bool    `yaml:"ignoreFooterChecksum"`
	GLB                  string  `yaml:"glb"`
	Scale                float32 `yaml:"scale"`
}

func defaultConfig() *config {
	return &config{Format: "raw", Scale: 1}
}

func loadConfig(path string) (*config, error) {
	conf := defaultConfig()
	if path == "" {
		return conf, nil
	}
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if err := yaml.NewDecoder(r).Decode(conf); err != nil {
		return nil, err
	}
	return conf, nil
}

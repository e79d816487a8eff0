/*
   Copyright (C) 2023 eLife Sciences

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as
   published by the Free Software Foundation, either version 3 of the
   License, or (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package config reads the ivycharts yaml configuration.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"ivy-charts/internal/charts"
	"ivy-charts/internal/ivy"
)

// Environment variables read by Load.
const (
	EnvData  = "IVYCHARTS_DATA"
	EnvToken = "GITHUB_TOKEN"
)

//go:embed default.yaml
var defaultYAML []byte

type Config struct {
	// Data is the dataset source, see dataset.Loader.Load.
	Data string `yaml:"data"`
	// Addr is where `serve` listens.
	Addr string `yaml:"addr"`
	// Width is the container width charts are laid out for when none is given.
	Width float64 `yaml:"width"`

	Schools []ivy.School     `yaml:"schools"`
	Charts  []charts.Options `yaml:"charts"`

	// Token comes from the environment only.
	Token string `yaml:"-"`
}

func decode(r io.Reader, c *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// Default is the embedded configuration with no environment applied. Schools
// come from the built-in ivy table.
func Default() (*Config, error) {
	c := &Config{}
	if err := decode(bytes.NewReader(defaultYAML), c); err != nil {
		return nil, fmt.Errorf("parsing default config: %w", err)
	}
	if len(c.Schools) == 0 {
		c.Schools = ivy.Default().Schools()
	}
	return c, nil
}

// Load starts from the embedded defaults, overlays the file at `path` when one
// is given, then the environment.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		defer f.Close()
		if err := decode(f, c); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if v, ok := os.LookupEnv(EnvData); ok && v != "" {
		c.Data = v
	}
	c.Token = os.Getenv(EnvToken)
	return c, c.Validate()
}

func (c *Config) Validate() error {
	if len(c.Schools) == 0 {
		return fmt.Errorf("config: no schools")
	}
	if _, err := c.Table(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	opts, err := c.ChartOptions()
	if err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, o := range opts {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if seen[o.Name] {
			return fmt.Errorf("config: duplicate chart %q", o.Name)
		}
		seen[o.Name] = true
	}
	return nil
}

// Table builds the school table.
func (c *Config) Table() (*ivy.Table, error) {
	return ivy.NewTable(c.Schools)
}

// ChartOptions returns the configured charts, or the built-in ones when the
// config declares none.
func (c *Config) ChartOptions() ([]charts.Options, error) {
	if len(c.Charts) > 0 {
		return c.Charts, nil
	}
	return charts.Defaults()
}

// Copyright 2019 Google Inc. All Rights Reserved.
// This file is available under the Apache license.

// Package config reads the TOML configuration shared by the mjc and mjam
// commands.
package config

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/golang/glog"
	"github.com/google/minijava/internal/vm/code"
	"github.com/pkg/errors"
)

// Machine configures the mJAM virtual machine.
type Machine struct {
	DataStoreSize int   `toml:"data_store_size"`
	CodeCapacity  int   `toml:"code_capacity"`
	Breakpoints   []int `toml:"breakpoints"`
}

// Compiler configures the miniJava compiler.
type Compiler struct {
	DynamicDispatch bool `toml:"dynamic_dispatch"`
	Symbols         bool `toml:"symbols"`
	MaxCodeSize     int  `toml:"max_code_size"`
}

// Config is the contents of a configuration file.
type Config struct {
	Machine  Machine  `toml:"machine"`
	Compiler Compiler `toml:"compiler"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Machine: Machine{
			DataStoreSize: code.DefaultDataStoreSize,
			CodeCapacity:  code.DefaultCodeCapacity,
		},
		Compiler: Compiler{
			MaxCodeSize: code.DefaultCodeCapacity,
		},
	}
}

// Parse reads a configuration from r.  Keys absent from the input keep their
// default values; unknown keys are an error.
func Parse(r io.Reader) (*Config, error) {
	c := Default()
	md, err := toml.NewDecoder(r).Decode(c)
	if err != nil {
		return nil, errors.Wrap(err, "parsing configuration")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, errors.Errorf("unknown configuration keys: %s", strings.Join(keys, ", "))
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads the configuration file at path.  An empty path yields the
// default configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open config %q", path)
	}
	defer f.Close()
	c, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", path)
	}
	glog.V(1).Infof("Loaded configuration from %s: %+v", path, c)
	return c, nil
}

// Validate checks that the sizes in c can be used to build a machine.
func (c *Config) Validate() error {
	if c.Machine.DataStoreSize <= 0 {
		return errors.Errorf("data_store_size must be positive, not %d", c.Machine.DataStoreSize)
	}
	if c.Machine.CodeCapacity <= 0 {
		return errors.Errorf("code_capacity must be positive, not %d", c.Machine.CodeCapacity)
	}
	if c.Compiler.MaxCodeSize <= 0 {
		return errors.Errorf("max_code_size must be positive, not %d", c.Compiler.MaxCodeSize)
	}
	if c.Compiler.MaxCodeSize > c.Machine.CodeCapacity {
		return errors.Errorf("max_code_size %d exceeds code_capacity %d", c.Compiler.MaxCodeSize, c.Machine.CodeCapacity)
	}
	for _, b := range c.Machine.Breakpoints {
		if b < 0 {
			return errors.Errorf("invalid breakpoint %d", b)
		}
	}
	return nil
}

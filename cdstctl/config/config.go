// Copyright 2026 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides basic infrastructure to set configuration settings
// for cdstctl. Each setting can be changed from the command line, and most
// of them from a configuration file as well.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"cdst.dev/cdst/pkg/log"
	"cdst.dev/cdst/pkg/memutil"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds configuration that is shared by all commands.
//
// Fields with a flag tag are populated by NewFromFlags. Fields with toml and
// yaml tags can also be set from the file named by ConfigFile; flags given
// explicitly on the command line take precedence over the file.
type Config struct {
	// ConfigFile is the path of an optional TOML or YAML file.
	ConfigFile string `flag:"config" toml:"-" yaml:"-"`

	// Debug enables debug logging. It raises LogLevel to log.Debug.
	Debug bool `flag:"debug" toml:"debug" yaml:"debug"`

	// LogLevel is the most verbose level that is logged.
	LogLevel log.Level `flag:"log-level" toml:"log_level" yaml:"log_level"`

	// LogFilename is the file to log to. Logs go to stderr when empty.
	LogFilename string `flag:"log" toml:"log" yaml:"log"`

	// LogFormat is the log format.
	LogFormat log.Format `flag:"log-format" toml:"log_format" yaml:"log_format"`

	// Memory selects where backing regions come from.
	Memory memutil.Kind `flag:"memory" toml:"memory" yaml:"memory"`

	// RingSize is the size in bytes of ring regions. A ring holds at most
	// RingSize-1 bytes.
	RingSize int `flag:"ring-size" toml:"ring_size" yaml:"ring_size"`

	// ChunkSize is the largest number of bytes moved by a single push or
	// pop.
	ChunkSize int `flag:"chunk-size" toml:"chunk_size" yaml:"chunk_size"`

	// StackSize is the size in bytes of stack regions.
	StackSize int `flag:"stack-size" toml:"stack_size" yaml:"stack_size"`

	// Records is the number of preallocated list records.
	Records int `flag:"records" toml:"records" yaml:"records"`
}

// Default values of the settings.
const (
	DefaultRingSize  = 64 << 10
	DefaultChunkSize = 4 << 10
	DefaultStackSize = 1 << 20
	DefaultRecords   = 1 << 16
)

// RegisterFlags registers flags used to populate Config.
func RegisterFlags(flagSet *flag.FlagSet) {
	flagSet.String("config", "", "path to a TOML (.toml) or YAML (.yaml, .yml) configuration file. Flags set on the command line override it.")

	// Debugging flags.
	flagSet.Bool("debug", false, "enable debug logging, same as -log-level=debug.")
	flagSet.Var(logLevelPtr(log.Warning), "log-level", "most verbose level logged: warning (default), info or debug.")
	flagSet.String("log", "", "file path where logs are written, default is stderr.")
	flagSet.Var(logFormatPtr(log.FormatText), "log-format", "log format: text (default) or json.")

	// Container flags.
	flagSet.Var(memoryKindPtr(memutil.Heap), "memory", "where backing memory comes from: heap (default) or mmap.")
	flagSet.Int("ring-size", DefaultRingSize, "size in bytes of ring buffers; a ring holds one byte less.")
	flagSet.Int("chunk-size", DefaultChunkSize, "largest number of bytes moved by a single push or pop.")
	flagSet.Int("stack-size", DefaultStackSize, "size in bytes of stacks.")
	flagSet.Int("records", DefaultRecords, "number of preallocated list records.")
}

// NewFromFlags creates a new Config with values coming from the given flag
// set and from the configuration file it names, if any.
func NewFromFlags(flagSet *flag.FlagSet) (*Config, error) {
	conf := &Config{}

	// Start with every flag, default or not.
	if err := conf.setFlags(flagSet, func(fn func(*flag.Flag)) { flagSet.VisitAll(fn) }); err != nil {
		return nil, err
	}

	if len(conf.ConfigFile) > 0 {
		if err := conf.LoadFile(conf.ConfigFile); err != nil {
			return nil, err
		}
		// Flags given on the command line win over the file.
		if err := conf.setFlags(flagSet, func(fn func(*flag.Flag)) { flagSet.Visit(fn) }); err != nil {
			return nil, err
		}
	}

	if conf.Debug {
		conf.LogLevel = log.Debug
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// setFlags copies the values of the flags visited by visit into the fields
// tagged with their names.
func (c *Config) setFlags(flagSet *flag.FlagSet, visit func(func(*flag.Flag))) error {
	obj := reflect.ValueOf(c).Elem()
	st := obj.Type()
	fields := make(map[string]int, st.NumField())
	for i := 0; i < st.NumField(); i++ {
		name, ok := st.Field(i).Tag.Lookup("flag")
		if !ok {
			// No flag set for this field.
			continue
		}
		if flagSet.Lookup(name) == nil {
			panic(fmt.Sprintf("Flag %q not found", name))
		}
		fields[name] = i
	}

	var err error
	visit(func(fl *flag.Flag) {
		i, ok := fields[fl.Name]
		if !ok || err != nil {
			return
		}
		getter, ok := fl.Value.(flag.Getter)
		if !ok {
			err = fmt.Errorf("flag %q does not implement flag.Getter", fl.Name)
			return
		}
		x := reflect.ValueOf(getter.Get())
		if !x.Type().AssignableTo(obj.Field(i).Type()) {
			err = fmt.Errorf("flag %q has type %v, field wants %v", fl.Name, x.Type(), obj.Field(i).Type())
			return
		}
		obj.Field(i).Set(x)
	})
	return err
}

// LoadFile decodes the configuration file at path into c. Settings absent from
// the file keep their current value. Unknown settings are an error.
func (c *Config) LoadFile(path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.DecodeFile(path, c)
		if err != nil {
			return fmt.Errorf("unable to decode %q: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("unable to decode %q: unknown settings %v", path, undecoded)
		}
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("unable to open config: %w", err)
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("unable to decode %q: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config file extension %q for %q, want .toml, .yaml or .yml", ext, path)
	}
	return nil
}

// Validate checks that c holds usable settings.
func (c *Config) Validate() error {
	if _, err := log.ParseFormat(string(c.LogFormat)); err != nil {
		return err
	}
	if c.LogLevel > log.Debug {
		return fmt.Errorf("invalid log level %d", c.LogLevel)
	}
	if _, err := memutil.ParseKind(string(c.Memory)); err != nil {
		return err
	}
	if c.RingSize < 2 {
		return fmt.Errorf("ring-size must be at least 2, got %d", c.RingSize)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("chunk-size must be positive, got %d", c.ChunkSize)
	}
	if c.StackSize < 1 {
		return fmt.Errorf("stack-size must be positive, got %d", c.StackSize)
	}
	if c.Records < 1 {
		return fmt.Errorf("records must be positive, got %d", c.Records)
	}
	return nil
}

// Log logs important aspects of the configuration to the given log function.
func (c *Config) Log() {
	log.Infof("Config:")
	obj := reflect.ValueOf(c).Elem()
	st := obj.Type()
	for i := 0; i < st.NumField(); i++ {
		name, ok := st.Field(i).Tag.Lookup("flag")
		if !ok {
			continue
		}
		log.Infof("\t%s: %v", name, obj.Field(i).Interface())
	}
}

type logFormat log.Format

func logFormatPtr(f log.Format) *logFormat {
	p := logFormat(f)
	return &p
}

// Set implements flag.Value.
func (f *logFormat) Set(s string) error {
	v, err := log.ParseFormat(s)
	if err != nil {
		return err
	}
	*f = logFormat(v)
	return nil
}

// Get implements flag.Getter.
func (f *logFormat) Get() any {
	return log.Format(*f)
}

// String implements flag.Value.
func (f *logFormat) String() string {
	return string(*f)
}

type logLevel log.Level

func logLevelPtr(l log.Level) *logLevel {
	p := logLevel(l)
	return &p
}

// Set implements flag.Value.
func (l *logLevel) Set(s string) error {
	v, err := log.ParseLevel(s)
	if err != nil {
		return err
	}
	*l = logLevel(v)
	return nil
}

// Get implements flag.Getter.
func (l *logLevel) Get() any {
	return log.Level(*l)
}

// String implements flag.Value.
func (l *logLevel) String() string {
	return log.Level(*l).String()
}

type memoryKind memutil.Kind

func memoryKindPtr(k memutil.Kind) *memoryKind {
	p := memoryKind(k)
	return &p
}

// Set implements flag.Value.
func (k *memoryKind) Set(s string) error {
	v, err := memutil.ParseKind(s)
	if err != nil {
		return err
	}
	*k = memoryKind(v)
	return nil
}

// Get implements flag.Getter.
func (k *memoryKind) Get() any {
	return memutil.Kind(*k)
}

// String implements flag.Value.
func (k *memoryKind) String() string {
	return string(*k)
}

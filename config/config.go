// Package config loads the watcher configuration: one global settings
// section plus one transfer profile per watched directory.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// ProgramSection is the name of the section holding global settings. Every
// other section describes a watched directory.
const ProgramSection = "auto-transfer"

var (
	// ErrInvalidConfig is returned when the configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConfigLookupMiss is returned when a path does not belong to any
	// configured input directory.
	ErrConfigLookupMiss = errors.New("no profile configured for directory")
)

// CompletionPolicy selects what happens to a source path after a
// successful transfer.
type CompletionPolicy string

const (
	PolicyMove    CompletionPolicy = "move"
	PolicyDelete  CompletionPolicy = "delete"
	PolicyNothing CompletionPolicy = "nothing"
)

// Settings are the global options from the program section.
type Settings struct {
	MaxSimultaneousTransfers int    `mapstructure:"max_simultaneous_transfers"`
	LogFile                  string `mapstructure:"log_file"`
	LogLevel                 string `mapstructure:"log_level"`
	HistoryDB                string `mapstructure:"history_db"`
	LockFile                 string `mapstructure:"lock_file"`
	TransferProgram          string `mapstructure:"transfer_program"`
	Dashboard                string `mapstructure:"dashboard"`
}

// Profile is the transfer policy for one watched directory. Profiles are
// read-only once Load returns.
type Profile struct {
	ID                 string           `mapstructure:"-"`
	InputDirectory     string           `mapstructure:"input_directory"`
	RawDestination     string           `mapstructure:"destination"`
	ErrorDirectory     string           `mapstructure:"error_directory"`
	CompletedDirectory string           `mapstructure:"completed_directory"`
	OnComplete         CompletionPolicy `mapstructure:"on_complete"`

	Destination Destination `mapstructure:"-"`
}

// Config is the fully loaded configuration.
type Config struct {
	Settings Settings
	Profiles []*Profile

	byDir map[string]*Profile
}

// Load reads the configuration file at path. Files without an extension
// viper recognizes are parsed as INI. The result is validated before it is
// returned.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	typ := strings.TrimPrefix(filepath.Ext(path), ".")
	if !slices.Contains(viper.SupportedExts, typ) {
		typ = "ini"
		v.SetConfigType(typ)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	global := v.Sub(ProgramSection)
	if global == nil {
		return nil, fmt.Errorf("%w: missing [%s] section", ErrInvalidConfig, ProgramSection)
	}
	if err := global.Unmarshal(&cfg.Settings); err != nil {
		return nil, fmt.Errorf("decode [%s]: %w", ProgramSection, err)
	}

	display := map[string]string{}
	if typ == "ini" {
		display = iniSectionNames(path)
	}
	for _, name := range sectionNames(v) {
		sub := v.Sub(name)
		if sub == nil {
			continue
		}
		p := &Profile{ID: name}
		if orig, ok := display[name]; ok {
			p.ID = orig
		}
		if err := sub.Unmarshal(p); err != nil {
			return nil, fmt.Errorf("decode [%s]: %w", p.ID, err)
		}
		cfg.Profiles = append(cfg.Profiles, p)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// sectionNames returns every top-level table except the program section,
// sorted so profiles are processed in a stable order.
func sectionNames(v *viper.Viper) []string {
	var names []string
	for key, value := range v.AllSettings() {
		if key == ProgramSection {
			continue
		}
		if _, ok := value.(map[string]any); ok {
			names = append(names, key)
		}
	}
	sort.Strings(names)
	return names
}

// iniSectionNames maps viper's lowercased section keys back to the names
// as written in the file.
func iniSectionNames(path string) map[string]string {
	names := map[string]string{}
	f, err := ini.Load(path)
	if err != nil {
		return names
	}
	for _, s := range f.SectionStrings() {
		names[strings.ToLower(s)] = s
	}
	return names
}

// ProfileFor returns the profile watching dir.
func (c *Config) ProfileFor(dir string) (*Profile, error) {
	if p, ok := c.byDir[filepath.Clean(dir)]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrConfigLookupMiss, dir)
}

// Tag renders the log prefix used for every message about this profile.
func (p *Profile) Tag() string {
	return "[" + p.ID + "]"
}

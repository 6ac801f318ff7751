package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	DefaultTransferProgram = "rsync"
	DefaultLogLevel        = "info"
	DefaultDashboardMode   = "auto"
)

func (c *Config) applyDefaults() {
	s := &c.Settings
	if strings.TrimSpace(s.TransferProgram) == "" {
		s.TransferProgram = DefaultTransferProgram
	}
	if strings.TrimSpace(s.LogLevel) == "" {
		s.LogLevel = DefaultLogLevel
	}
	s.Dashboard = strings.ToLower(strings.TrimSpace(s.Dashboard))
	if s.Dashboard == "" {
		s.Dashboard = DefaultDashboardMode
	}
	for _, p := range c.Profiles {
		p.OnComplete = CompletionPolicy(strings.ToLower(strings.TrimSpace(string(p.OnComplete))))
		if p.OnComplete == "" {
			p.OnComplete = PolicyNothing
		}
	}
}

// Validate checks the configuration and builds the directory index used by
// ProfileFor. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	if c.Settings.MaxSimultaneousTransfers < 1 {
		errs = append(errs, fmt.Errorf("max_simultaneous_transfers must be at least 1, got %d", c.Settings.MaxSimultaneousTransfers))
	}
	switch c.Settings.Dashboard {
	case "auto", "on", "off":
	default:
		errs = append(errs, fmt.Errorf("dashboard: unsupported value %q", c.Settings.Dashboard))
	}
	if len(c.Profiles) == 0 {
		errs = append(errs, errors.New("no watched directories configured"))
	}

	c.byDir = make(map[string]*Profile, len(c.Profiles))
	for _, p := range c.Profiles {
		if err := p.validate(); err != nil {
			errs = append(errs, fmt.Errorf("[%s]: %w", p.ID, err))
			continue
		}
		dir := filepath.Clean(p.InputDirectory)
		if other, ok := c.byDir[dir]; ok {
			errs = append(errs, fmt.Errorf("[%s]: input_directory %s already watched by [%s]", p.ID, dir, other.ID))
			continue
		}
		c.byDir[dir] = p
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (p *Profile) validate() error {
	var errs []error
	if strings.TrimSpace(p.InputDirectory) == "" {
		errs = append(errs, errors.New("input_directory is required"))
	}
	dst, err := ParseDestination(p.RawDestination)
	if err != nil {
		errs = append(errs, err)
	} else {
		p.Destination = dst
	}
	if strings.TrimSpace(p.ErrorDirectory) == "" {
		errs = append(errs, errors.New("error_directory is required"))
	}
	switch p.OnComplete {
	case PolicyMove:
		if strings.TrimSpace(p.CompletedDirectory) == "" {
			errs = append(errs, errors.New("completed_directory is required when on_complete = move"))
		}
	case PolicyDelete, PolicyNothing:
	default:
		errs = append(errs, fmt.Errorf("on_complete: unsupported value %q", p.OnComplete))
	}
	return errors.Join(errs...)
}

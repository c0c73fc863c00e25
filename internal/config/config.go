package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/sigreer/osdgen/internal/selection"
)

// ErrInvalidSetting is wrapped by every validation and parse error
var ErrInvalidSetting = errors.New("invalid setting")

const (
	DefaultResultDir        = "/var/tmp/introspect_dir"
	DefaultOpenStackCommand = "openstack"
)

// Flag names shared by the CLI and ApplyFlags
const (
	FlagResultDir         = "result-dir"
	FlagDeviceNamePattern = "device-name-pattern"
	FlagDeviceSize        = "device-size"
	FlagRotational        = "rotational"
	FlagJournalPattern    = "journal-pattern"
	FlagMinJournals       = "min-journals-per-host"
	FlagReuseOldData      = "reuse-old-data"
	FlagDebug             = "debug"
	FlagOpenStackCommand  = "openstack-command"
)

type Settings struct {
	ResultDir        string  `yaml:"result_dir"`
	ReuseOldData     bool    `yaml:"reuse_old_data"`
	Debug            bool    `yaml:"debug"`
	OpenStackCommand string  `yaml:"openstack_command"`
	Filters          Filters `yaml:"filters"`
}

// Filters are the device selection settings. Unset pointers leave the
// corresponding filter inactive.
type Filters struct {
	DeviceNamePattern  string   `yaml:"device_name_pattern,omitempty"`
	DeviceSizeGB       *float64 `yaml:"device_size_gb,omitempty"`
	Rotational         *YesNo   `yaml:"rotational,omitempty"`
	JournalPattern     string   `yaml:"journal_pattern,omitempty"`
	MinJournalsPerHost *int     `yaml:"min_journals_per_host,omitempty"`
}

// YesNo is a boolean that accepts the same spellings as ParseBool
type YesNo bool

func (y *YesNo) UnmarshalYAML(value *yaml.Node) error {
	b, err := ParseBool(value.Value)
	if err != nil {
		return err
	}
	*y = YesNo(b)
	return nil
}

// Defaults returns settings with no filters active
func Defaults() *Settings {
	return &Settings{
		ResultDir:        DefaultResultDir,
		OpenStackCommand: DefaultOpenStackCommand,
	}
}

// Load reads settings from path, or from the first default location that
// exists. No file at all means defaults.
func Load(path string) (*Settings, error) {
	explicit := path != ""
	if !explicit {
		// Try default locations
		candidates := []string{
			"/etc/osdgen/config.yaml",
			filepath.Join(os.Getenv("HOME"), ".config/osdgen/config.yaml"),
			"osdgen.yaml",
		}
		for _, c := range candidates {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
	}

	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if explicit {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSetting, path, err)
	}

	// Apply defaults for values the file cleared
	if cfg.ResultDir == "" {
		cfg.ResultDir = DefaultResultDir
	}
	if cfg.OpenStackCommand == "" {
		cfg.OpenStackCommand = DefaultOpenStackCommand
	}

	return cfg, nil
}

// ApplyFlags overlays the flags the user set on the command line
func (s *Settings) ApplyFlags(flags *pflag.FlagSet) error {
	var errs []error
	flags.Visit(func(f *pflag.Flag) {
		if err := s.applyFlag(f.Name, f.Value.String()); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

func (s *Settings) applyFlag(name, value string) error {
	switch name {
	case FlagResultDir:
		s.ResultDir = value
	case FlagOpenStackCommand:
		s.OpenStackCommand = value
	case FlagDeviceNamePattern:
		s.Filters.DeviceNamePattern = value
	case FlagJournalPattern:
		s.Filters.JournalPattern = value
	case FlagDeviceSize:
		size, err := ParsePositiveFloat(value)
		if err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
		s.Filters.DeviceSizeGB = &size
	case FlagRotational:
		b, err := ParseBool(value)
		if err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
		y := YesNo(b)
		s.Filters.Rotational = &y
	case FlagMinJournals:
		n, err := ParsePositiveInt(value)
		if err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
		s.Filters.MinJournalsPerHost = &n
	case FlagReuseOldData:
		b, err := ParseBool(value)
		if err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
		s.ReuseOldData = b
	case FlagDebug:
		b, err := ParseBool(value)
		if err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
		s.Debug = b
	}
	return nil
}

// NormalizeFlagName maps the older per-node spelling onto its per-host flag
func NormalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "min-journals-per-node" {
		name = FlagMinJournals
	}
	return pflag.NormalizedName(name)
}

// Validate checks patterns and numeric limits
func (s *Settings) Validate() error {
	if s.ResultDir == "" {
		return fmt.Errorf("%w: result directory must not be empty", ErrInvalidSetting)
	}
	if _, err := regexp.Compile(s.Filters.DeviceNamePattern); err != nil {
		return fmt.Errorf("%w: device name pattern %q: %v", ErrInvalidSetting, s.Filters.DeviceNamePattern, err)
	}
	if _, err := regexp.Compile(s.Filters.JournalPattern); err != nil {
		return fmt.Errorf("%w: journal pattern %q: %v", ErrInvalidSetting, s.Filters.JournalPattern, err)
	}
	if s.Filters.DeviceSizeGB != nil && *s.Filters.DeviceSizeGB <= 0 {
		return fmt.Errorf("%w: device size must be positive, got %g", ErrInvalidSetting, *s.Filters.DeviceSizeGB)
	}
	if s.Filters.MinJournalsPerHost != nil && *s.Filters.MinJournalsPerHost <= 0 {
		return fmt.Errorf("%w: min journals per host must be positive, got %d", ErrInvalidSetting, *s.Filters.MinJournalsPerHost)
	}
	return nil
}

// SelectionFilters converts the filter settings for the selection engine
func (s *Settings) SelectionFilters() selection.Filters {
	f := selection.Filters{
		NamePattern:    s.Filters.DeviceNamePattern,
		JournalPattern: s.Filters.JournalPattern,
	}
	if s.Filters.DeviceSizeGB != nil {
		size := *s.Filters.DeviceSizeGB
		f.SizeGB = &size
	}
	if s.Filters.Rotational != nil {
		rot := bool(*s.Filters.Rotational)
		f.Rotational = &rot
	}
	if s.Filters.MinJournalsPerHost != nil {
		f.MinJournals = *s.Filters.MinJournalsPerHost
	}
	return f
}

// Log reports the effective parameters
func (s *Settings) Log(logger *slog.Logger) {
	logger.Info("result directory", "dir", s.ResultDir)
	if s.Filters.DeviceNamePattern != "" {
		logger.Info("device name pattern", "pattern", s.Filters.DeviceNamePattern)
	}
	if s.Filters.JournalPattern != "" {
		logger.Info("journal name pattern", "pattern", s.Filters.JournalPattern)
	}
	if s.Filters.DeviceSizeGB != nil {
		logger.Info("device size", "gb", fmt.Sprintf("%6.3f", *s.Filters.DeviceSizeGB))
	}
	if s.Filters.Rotational != nil {
		logger.Info("device rotational", "rotational", bool(*s.Filters.Rotational))
	}
	if s.Filters.MinJournalsPerHost != nil {
		logger.Info("min journal devices per host", "count", *s.Filters.MinJournalsPerHost)
	}
}

// ParseBool accepts Y*, TRUE and 1 as true, N*, FALSE and 0 as false,
// ignoring case
func ParseBool(s string) (bool, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(v, "Y"), v == "TRUE", v == "1":
		return true, nil
	case strings.HasPrefix(v, "N"), v == "FALSE", v == "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: could not parse %q as boolean, expected Y or N", ErrInvalidSetting, s)
}

// ParsePositiveInt parses an integer greater than zero
func ParsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidSetting, s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d is not a positive integer", ErrInvalidSetting, n)
	}
	return n, nil
}

// ParsePositiveFloat parses a number greater than zero
func ParsePositiveFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidSetting, s)
	}
	if f <= 0 {
		return 0, fmt.Errorf("%w: %g is not a positive number", ErrInvalidSetting, f)
	}
	return f, nil
}

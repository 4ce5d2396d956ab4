// Package config loads mahmkit settings from a YAML file and the
// environment. Precedence, lowest first: defaults, file, environment,
// command-line flags (applied by the caller).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/mahmkit/internal/format"
	"github.com/joshuapare/mahmkit/internal/shm"
	"github.com/joshuapare/mahmkit/monitor"
)

// Environment variables read by ApplyEnv.
const (
	EnvSegmentName = "MAHM_SEGMENT_NAME"
	EnvSegmentDir  = "MAHM_SEGMENT_DIR"
	EnvEncoding    = "MAHM_TEXT_ENCODING"
	EnvListen      = "MAHM_LISTEN"
	EnvMinInterval = "MAHM_MIN_INTERVAL"
	EnvLogLevel    = "LOG_LEVEL"
)

// DefaultListen is the exporter's default listen address.
const DefaultListen = ":9785"

// Config is the full settings tree.
type Config struct {
	Segment  SegmentConfig  `yaml:"segment"`
	Log      LogConfig      `yaml:"log"`
	Exporter ExporterConfig `yaml:"exporter"`
}

// SegmentConfig selects the shared memory segment to read.
type SegmentConfig struct {
	Name     string `yaml:"name"`
	Dir      string `yaml:"dir,omitempty"`
	Encoding string `yaml:"encoding"`
	// Replay reads a captured segment image instead of the live segment.
	Replay string `yaml:"replay,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// ExporterConfig configures the Prometheus exporter.
type ExporterConfig struct {
	Listen string `yaml:"listen"`
	// MinInterval is the minimum time between segment refreshes; scrapes
	// arriving sooner are served the previous snapshot.
	MinInterval Duration `yaml:"min_interval"`
}

// Duration is a time.Duration that reads and writes as "1s" in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Segment: SegmentConfig{
			Name:     format.SegmentName,
			Encoding: format.EncodingUTF8,
		},
		Exporter: ExporterConfig{
			Listen:      DefaultListen,
			MinInterval: Duration(time.Second),
		},
	}
}

// Load returns the defaults overlaid with the file at path (skipped when
// path is empty) and the environment, validated.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyEnv overlays set environment variables. Unset variables leave the
// current value alone.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvSegmentName); ok {
		c.Segment.Name = v
	}
	if v, ok := os.LookupEnv(EnvSegmentDir); ok {
		c.Segment.Dir = v
	}
	if v, ok := os.LookupEnv(EnvEncoding); ok {
		c.Segment.Encoding = v
	}
	if v, ok := os.LookupEnv(EnvListen); ok {
		c.Exporter.Listen = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvMinInterval); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvMinInterval, err)
		}
		c.Exporter.MinInterval = Duration(d)
	}
	return nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Segment.Name == "" {
		errs = append(errs, errors.New("segment.name must not be empty"))
	}
	if _, ok := format.LookupEncoding(c.Segment.Encoding); !ok {
		errs = append(errs, fmt.Errorf("segment.encoding: unknown encoding %q", c.Segment.Encoding))
	}
	if c.Exporter.MinInterval < 0 {
		errs = append(errs, errors.New("exporter.min_interval must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// MonitorOptions converts the segment settings into monitor options. With
// Replay set, the image is loaded into a memory backend under the segment
// name.
func (c *Config) MonitorOptions(log *slog.Logger) (monitor.Options, error) {
	opts := monitor.Options{
		SegmentName: c.Segment.Name,
		Dir:         c.Segment.Dir,
		Encoding:    c.Segment.Encoding,
		Logger:      log,
	}
	if c.Segment.Replay == "" {
		return opts, nil
	}
	img, err := os.ReadFile(c.Segment.Replay)
	if err != nil {
		return opts, fmt.Errorf("config: replay: %w", err)
	}
	name := opts.SegmentName
	if name == "" {
		name = format.SegmentName
	}
	mem := shm.NewMemoryBackend()
	mem.Store(name, img)
	opts.Backend = mem
	return opts, nil
}

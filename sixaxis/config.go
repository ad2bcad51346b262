package sixaxis

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration, loaded from YAML. Every field has a
// working default so the engine runs with no file at all.
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Bluetooth BluetoothConfig `yaml:"bluetooth"`
	USB       USBConfig       `yaml:"usb"`
	Motion    MotionConfig    `yaml:"motion"`
}

// BluetoothConfig controls the wireless front-end.
type BluetoothConfig struct {
	Enabled bool   `yaml:"enabled"`
	Alias   string `yaml:"alias"`
}

// USBConfig controls hidraw scanning for wired pads.
type USBConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Glob         string   `yaml:"glob"`
	ScanInterval Duration `yaml:"scan_interval"`
}

// Duration accepts "1s" style values in YAML, which the yaml package does
// not decode into time.Duration on its own.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MotionConfig controls the DSU motion export server.
type MotionConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "debug",
		Bluetooth: BluetoothConfig{
			Enabled: true,
			Alias:   "Sixaxis Host",
		},
		USB: USBConfig{
			Enabled:      true,
			Glob:         "/dev/hidraw*",
			ScanInterval: Duration(time.Second),
		},
		Motion: MotionConfig{
			Enabled: true,
			Listen:  "127.0.0.1:26760",
		},
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse config: %w", err)
	}
	if config.USB.ScanInterval <= 0 {
		config.USB.ScanInterval = Duration(time.Second)
	}
	return config, nil
}

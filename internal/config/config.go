package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const appName = "fwprobe"

type Config struct {
	Query    QueryConfig    `toml:"query"`
	Backend  BackendConfig  `toml:"backend"`
	Output   OutputConfig   `toml:"output"`
	Advanced AdvancedConfig `toml:"advanced"`
}

type QueryConfig struct {
	Permanent bool   `toml:"permanent"`
	Zone      string `toml:"zone"`
}

type BackendConfig struct {
	Kind     string   `toml:"kind"`
	Sudo     bool     `toml:"sudo"`
	Shell    []string `toml:"shell"`
	Timeout  Duration `toml:"timeout"`
	MockFile string   `toml:"mock_file"`
}

type OutputConfig struct {
	Format  string `toml:"format"`
	NoColor bool   `toml:"no_color"`
}

type AdvancedConfig struct {
	LogLevel string `toml:"log_level"`
}

// Duration decodes TOML strings such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q", string(text))
	}
	if parsed < 0 {
		return fmt.Errorf("duration must be >= 0")
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

const (
	BackendLocal = "local"
	BackendMock  = "mock"
	BackendDBus  = "dbus"

	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

func Default() Config {
	return Config{
		Query: QueryConfig{
			Permanent: false,
			Zone:      "public",
		},
		Backend: BackendConfig{
			Kind:    BackendLocal,
			Shell:   []string{"sh", "-c"},
			Timeout: Duration{30 * time.Second},
		},
		Output: OutputConfig{
			Format: FormatText,
		},
		Advanced: AdvancedConfig{
			LogLevel: "",
		},
	}
}

func ResolvePath() (string, error) {
	if env := os.Getenv("FWPROBE_CONFIG"); env != "" {
		return env, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// Load reads the first config file found. It returns the config, warnings
// about ignored or corrected settings, the path read and whether a file was
// found at all.
func Load() (Config, []string, string, bool, error) {
	paths, err := candidatePaths()
	if err != nil {
		return Default(), nil, "", false, err
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Default(), nil, "", false, err
		}
		cfg, warnings, err := Parse(string(data))
		if err != nil {
			return Default(), nil, "", false, fmt.Errorf("parse %s: %w", path, err)
		}
		return cfg, warnings, path, true, nil
	}
	return Default(), nil, "", false, nil
}

// Parse decodes raw over the defaults. Unknown keys are reported as
// warnings, not errors.
func Parse(raw string) (Config, []string, error) {
	cfg := Default()
	md, err := toml.Decode(raw, &cfg)
	if err != nil {
		return Default(), nil, err
	}
	var warnings []string
	for _, key := range md.Undecoded() {
		warnings = append(warnings, fmt.Sprintf("unknown key %q", key.String()))
	}
	warnings = append(warnings, normalizeConfig(&cfg)...)
	return cfg, warnings, nil
}

func normalizeConfig(cfg *Config) []string {
	warnings := make([]string, 0)

	cfg.Backend.Kind = strings.ToLower(strings.TrimSpace(cfg.Backend.Kind))
	switch cfg.Backend.Kind {
	case BackendLocal, BackendDBus:
	case BackendMock:
		if cfg.Backend.MockFile == "" {
			warnings = append(warnings, "backend.kind \"mock\" needs backend.mock_file; using local")
			cfg.Backend.Kind = BackendLocal
		}
	default:
		warnings = append(warnings, fmt.Sprintf("backend.kind %q is not supported; using local", cfg.Backend.Kind))
		cfg.Backend.Kind = BackendLocal
	}

	if len(cfg.Backend.Shell) == 0 {
		warnings = append(warnings, "backend.shell is empty; using sh -c")
		cfg.Backend.Shell = []string{"sh", "-c"}
	}

	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	switch cfg.Output.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		warnings = append(warnings, fmt.Sprintf("output.format %q is not supported; using text", cfg.Output.Format))
		cfg.Output.Format = FormatText
	}

	return warnings
}

func candidatePaths() ([]string, error) {
	if env := os.Getenv("FWPROBE_CONFIG"); env != "" {
		return []string{env}, nil
	}
	primary, err := ResolvePath()
	if err != nil {
		return nil, err
	}
	paths := []string{primary}
	if sudoPath, ok := sudoConfigPath(primary); ok {
		paths = append(paths, sudoPath)
	}
	return paths, nil
}

// sudoConfigPath points at the invoking user's config when running under
// sudo, since root's config dir is rarely set up.
func sudoConfigPath(primary string) (string, bool) {
	sudoUser := os.Getenv("SUDO_USER")
	if sudoUser == "" {
		return "", false
	}
	current := os.Getenv("USER")
	if current == sudoUser {
		return "", false
	}
	u, err := user.Lookup(sudoUser)
	if err != nil || u.HomeDir == "" {
		return "", false
	}
	path := filepath.Join(u.HomeDir, ".config", appName, "config.toml")
	if path == primary {
		return "", false
	}
	return path, true
}

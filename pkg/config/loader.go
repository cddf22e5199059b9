package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/fileroutes/pkg/errors"
	"github.com/arthur-debert/fileroutes/pkg/logging"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// ProjectFileName is looked up in the project directory
	ProjectFileName = "fileroutes.toml"
	// EnvPrefix marks environment overrides
	EnvPrefix = "FILEROUTES_"
)

// Load builds the configuration for the project in projectDir. Overrides
// are flat "section.key" maps applied last, above the environment.
func Load(projectDir string, overrides ...map[string]interface{}) (*Config, error) {
	logger := logging.GetLogger("config")

	k := koanf.New(".")
	if err := loadDefaults(k); err != nil {
		return nil, err
	}

	for _, path := range []string{userConfigPath(), filepath.Join(projectDir, ProjectFileName)} {
		loaded, err := loadIfExists(k, path)
		if err != nil {
			return nil, err
		}
		if loaded {
			logger.Debug().Str("path", path).Msg("Loaded config file")
		}
	}

	return finish(k, projectDir, overrides)
}

// LoadFile builds the configuration from an explicit file on top of the
// defaults. Relative directories resolve against the file's directory.
func LoadFile(path string, overrides ...map[string]interface{}) (*Config, error) {
	k := koanf.New(".")
	if err := loadDefaults(k); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, errors.ErrNotFound, "config file %s not found", path)
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
	}
	return finish(k, filepath.Dir(path), overrides)
}

func loadDefaults(k *koanf.Koanf) error {
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}
	return nil
}

func loadIfExists(k *koanf.Koanf, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	if _, err := os.Stat(path); err != nil {
		return false, nil
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return false, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
	}
	return true, nil
}

// finish applies env and explicit overrides, decodes and validates
func finish(k *koanf.Koanf, root string, overrides []map[string]interface{}) (*Config, error) {
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}
	for _, o := range overrides {
		if len(o) == 0 {
			continue
		}
		if err := k.Load(confmap.Provider(o, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}
	cfg.Root = root

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// userConfigPath honours XDG_CONFIG_HOME set after start up
func userConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = xdg.ConfigHome
	}
	if base == "" {
		return ""
	}
	return filepath.Join(base, logging.AppName, "config.toml")
}

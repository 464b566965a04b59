package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"
)

const envPrefix = "CONSOLE_AGENT_"

// Load reads config.yaml from the first directory in dirs that contains one,
// applies the default values declared on the config types, and finally overlays
// CONSOLE_AGENT_* environment variables. A missing config file is not an error;
// the defaults and the environment are enough to run.
func Load(dirs ...string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("applying config defaults: %w", err)
	}

	for _, dir := range dirs {
		path := filepath.Join(os.ExpandEnv(dir), "config.yaml")

		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}

		var values map[string]any
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}

		if err := decodeInto(cfg, values); err != nil {
			return nil, fmt.Errorf("decoding config file %s: %w", path, err)
		}

		break
	}

	if err := decodeInto(cfg, envValues(os.Environ())); err != nil {
		return nil, fmt.Errorf("overlaying environment variables: %w", err)
	}

	return cfg, nil
}

// envValues turns CONSOLE_AGENT_<SECTION>_<FIELD> variables into the nested
// map shape of the YAML config. Underscores inside the field part are dropped
// so that e.g. CONSOLE_AGENT_API_BASE_URL matches the baseURL field.
func envValues(environ []string) map[string]any {
	values := map[string]any{}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, envPrefix) {
			continue
		}

		section, field, ok := strings.Cut(strings.ToLower(strings.TrimPrefix(key, envPrefix)), "_")
		if !ok {
			continue
		}

		fields, ok := values[section].(map[string]any)
		if !ok {
			fields = map[string]any{}
			values[section] = fields
		}
		fields[strings.ReplaceAll(field, "_", "")] = value
	}

	return values
}

func decodeInto(cfg *Config, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           cfg,
		TagName:          "yaml",
	})
	if err != nil {
		return fmt.Errorf("creating decoder: %w", err)
	}

	return decoder.Decode(values)
}

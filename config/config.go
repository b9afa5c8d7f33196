package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/cyril-s/aptly-ctl-go/aptlyerr"
	"github.com/cyril-s/aptly-ctl-go/signing"
)

// Config is the fully resolved client configuration: server URL, signing
// policy, worker-pool size and HTTP timeouts.
type Config struct {
	URL            string
	DefaultSigning signing.Config
	SigningMap     map[string]signing.Config
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	MaxWorkers     int
}

const (
	defaultURL            = "http://localhost:8090/"
	defaultConnectTimeout = 15 * time.Second
	defaultMaxWorkers     = 8

	// maxOverrideValueBytes caps a single override value tried as a JSON
	// literal, mirroring parse_override_dict's 1024-byte guard against
	// pathological parser input.
	maxOverrideValueBytes = 1024
)

// defaultLocations returns the config file search path, in order: files
// under $HOME first (most to least specific), then /etc, each tried as
// .json, .yaml, then .yml.
func defaultLocations() []string {
	var bases []string
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		bases = append(bases,
			filepath.Join(home, "aptly-ctl"),
			filepath.Join(home, ".aptly-ctl"),
			filepath.Join(home, ".config", "aptly-ctl"),
		)
	}
	bases = append(bases, filepath.Join(string(filepath.Separator)+"etc", "aptly-ctl"))

	out := make([]string, 0, len(bases)*3)
	for _, base := range bases {
		out = append(out, base+".json", base+".yaml", base+".yml")
	}
	return out
}

// Load reads a config file (path, or the first default location that
// exists when path is ""), selects a profile section from it, and layers a
// set of "KEY.PATH=value" overrides on top, last one wins. An explicitly
// named path that cannot be read is an error; a missing default location is
// not: Load falls through to built-in defaults exactly as if no file
// existed.
func Load(path, section string, overrides []string) (*Config, error) {
	cfg := &Config{
		URL:            defaultURL,
		ConnectTimeout: defaultConnectTimeout,
		MaxWorkers:     defaultMaxWorkers,
	}

	keys, sections, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	profile, err := selectSection(keys, sections, section)
	if err != nil {
		return nil, err
	}

	overrideTree, err := ParseOverrideDict(overrides)
	if err != nil {
		return nil, err
	}

	if err := cfg.apply(profile); err != nil {
		return nil, err
	}
	if err := cfg.apply(overrideTree); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile reads and decodes the config file at path (or the first default
// location found, when path == ""), returning its top-level section names
// in file order plus the decoded body of each.
func loadFile(path string) ([]string, map[string]map[string]any, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, &aptlyerr.ConfigurationError{
				Msg: fmt.Sprintf("reading config file %s: %v", path, err),
			}
		}
		keys, sections, err := unmarshalSections(path, data)
		if err != nil {
			return nil, nil, &aptlyerr.ConfigurationError{
				Msg: fmt.Sprintf("parsing config file %s: %v", path, err),
			}
		}
		return keys, sections, nil
	}

	for _, try := range defaultLocations() {
		data, err := os.ReadFile(try)
		if err != nil {
			continue
		}
		keys, sections, err := unmarshalSections(try, data)
		if err != nil {
			return nil, nil, &aptlyerr.ConfigurationError{
				Msg: fmt.Sprintf("parsing config file %s: %v", try, err),
			}
		}
		return keys, sections, nil
	}
	return nil, nil, nil
}

// selectSection picks one section out of a file's sections: an exact name
// match wins outright; failing that, every section whose name has `section`
// as a prefix is a candidate (an empty `section` makes every one). With a
// non-empty `section`, zero candidates is an unknown-profile error and more
// than one is ambiguous. Otherwise the first candidate in file order is
// used, so an empty `section` selects the file's first section. A file with
// no sections at all yields an empty profile.
func selectSection(keys []string, sections map[string]map[string]any, section string) (map[string]any, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	if body, ok := sections[section]; ok {
		return body, nil
	}

	var candidates []string
	for _, k := range keys {
		if strings.HasPrefix(k, section) {
			candidates = append(candidates, k)
		}
	}
	if section != "" && len(candidates) == 0 {
		return nil, &aptlyerr.ConfigurationError{
			Msg: fmt.Sprintf("no profile %q in configuration (have: %s)", section, strings.Join(keys, ", ")),
		}
	}
	if section != "" && len(candidates) > 1 {
		return nil, &aptlyerr.ConfigurationError{
			Msg: fmt.Sprintf("profile %q is ambiguous, matches %s", section, strings.Join(candidates, ", ")),
		}
	}
	return sections[candidates[0]], nil
}

// apply layers one section (file profile or parsed override tree) onto cfg,
// field by field, leaving any key absent from section untouched.
func (cfg *Config) apply(section map[string]any) error {
	if section == nil {
		return nil
	}
	if v, ok := section["url"]; ok {
		s, ok := v.(string)
		if !ok {
			return &aptlyerr.ConfigurationError{Msg: "config: \"url\" must be a string"}
		}
		cfg.URL = s
	}
	if v, ok := section["signing"]; ok {
		m, ok := v.(map[string]any)
		if !ok {
			return &aptlyerr.ConfigurationError{Msg: "config: \"signing\" must be an object"}
		}
		sc, err := decodeSigningConfig(cfg.DefaultSigning, m)
		if err != nil {
			return err
		}
		cfg.DefaultSigning = sc
	}
	if v, ok := section["signing map"]; ok {
		m, ok := v.(map[string]any)
		if !ok {
			return &aptlyerr.ConfigurationError{Msg: "config: \"signing map\" must be an object"}
		}
		if cfg.SigningMap == nil {
			cfg.SigningMap = make(map[string]signing.Config, len(m))
		}
		for key, raw := range m {
			entry, ok := raw.(map[string]any)
			if !ok {
				return &aptlyerr.ConfigurationError{Msg: fmt.Sprintf("config: signing map entry %q must be an object", key)}
			}
			sc, err := decodeSigningConfig(cfg.SigningMap[key], entry)
			if err != nil {
				return err
			}
			cfg.SigningMap[key] = sc
		}
	}
	if v, ok := section["connect_timeout"]; ok {
		d, err := toDuration(v)
		if err != nil {
			return &aptlyerr.ConfigurationError{Msg: "config: \"connect_timeout\": " + err.Error()}
		}
		cfg.ConnectTimeout = d
	}
	if v, ok := section["read_timeout"]; ok {
		d, err := toDuration(v)
		if err != nil {
			return &aptlyerr.ConfigurationError{Msg: "config: \"read_timeout\": " + err.Error()}
		}
		cfg.ReadTimeout = d
	}
	if v, ok := section["workers"]; ok {
		switch n := v.(type) {
		case float64:
			cfg.MaxWorkers = int(n)
		case int:
			cfg.MaxWorkers = n
		default:
			return &aptlyerr.ConfigurationError{Msg: "config: \"workers\" must be a number"}
		}
	}
	return nil
}

// toDuration converts a bare number (seconds; JSON decodes to float64, YAML
// to int) or a numeric string into a time.Duration.
func toDuration(v any) (time.Duration, error) {
	switch n := v.(type) {
	case float64:
		return time.Duration(n * float64(time.Second)), nil
	case int:
		return time.Duration(n) * time.Second, nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return time.Duration(f * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("not a number")
	}
}

func decodeSigningConfig(base signing.Config, m map[string]any) (signing.Config, error) {
	sc := base
	if v, ok := m["skip"]; ok {
		b, ok := v.(bool)
		if !ok {
			return sc, &aptlyerr.ConfigurationError{Msg: "signing: \"skip\" must be a bool"}
		}
		sc.Skip = b
	}
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"gpgkey", &sc.GpgKey},
		{"keyring", &sc.Keyring},
		{"secret_keyring", &sc.SecretKeyring},
		{"passphrase", &sc.Passphrase},
		{"passphrase_file", &sc.PassphraseFile},
	} {
		if v, ok := m[f.key]; ok {
			s, ok := v.(string)
			if !ok {
				return sc, &aptlyerr.ConfigurationError{Msg: fmt.Sprintf("signing: %q must be a string", f.key)}
			}
			*f.dst = s
		}
	}
	return sc, nil
}

// unmarshalSections parses a config file's top-level object into its
// section names, in file order, and each section's decoded body. JSON and
// YAML are both object-in-object: { "profile": { "url": ... }, ... }.
func unmarshalSections(path string, data []byte) ([]string, map[string]map[string]any, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		return unmarshalSectionsYAML(data)
	}
	return unmarshalSectionsJSON(data)
}

func unmarshalSectionsJSON(data []byte) ([]string, map[string]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected a top-level JSON object")
	}

	var keys []string
	sections := make(map[string]map[string]any)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected a string key")
		}
		var body map[string]any
		if err := dec.Decode(&body); err != nil {
			return nil, nil, fmt.Errorf("section %q: %w", key, err)
		}
		keys = append(keys, key)
		sections[key] = body
	}
	return keys, sections, nil
}

func unmarshalSectionsYAML(data []byte) ([]string, map[string]map[string]any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("expected a top-level YAML mapping")
	}

	var keys []string
	sections := make(map[string]map[string]any)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		var body map[string]any
		if err := root.Content[i+1].Decode(&body); err != nil {
			return nil, nil, fmt.Errorf("section %q: %w", key, err)
		}
		keys = append(keys, key)
		sections[key] = body
	}
	return keys, sections, nil
}

// ParseOverrideDict builds a nested map[string]any from "KEY.PATH=value"
// strings, one iterative dot-path insert per entry. Each value no longer
// than maxOverrideValueBytes is first tried as
// a JSON literal (number, bool, null, quoted string); on failure, or when
// it is too long, it is kept as a raw string.
func ParseOverrideDict(entries []string) (map[string]any, error) {
	out := make(map[string]any)
	for _, entry := range entries {
		keyPath, value, ok := strings.Cut(entry, "=")
		if !ok || keyPath == "" || value == "" {
			return nil, &aptlyerr.ConfigurationError{
				Msg: fmt.Sprintf("override %q: expected \"KEY.PATH=value\"", entry),
			}
		}
		keys := strings.Split(keyPath, ".")

		d := out
		for _, k := range keys[:len(keys)-1] {
			next, ok := d[k].(map[string]any)
			if !ok {
				next = make(map[string]any)
				d[k] = next
			}
			d = next
		}
		d[keys[len(keys)-1]] = parseOverrideValue(value)
	}
	return out, nil
}

func parseOverrideValue(value string) any {
	if len(value) > maxOverrideValueBytes {
		return value
	}
	var v any
	if err := json.Unmarshal([]byte(value), &v); err == nil {
		return v
	}
	return value
}

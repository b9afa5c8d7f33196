package signing

import (
	"encoding/json"

	"github.com/cyril-s/aptly-ctl-go/aptlyerr"
)

// Config is a publish's GPG signing configuration. Batch is implied true
// whenever signing is not skipped and is not a field callers set.
type Config struct {
	Skip           bool
	GpgKey         string
	Keyring        string
	SecretKeyring  string
	Passphrase     string
	PassphraseFile string
}

// Validate enforces the model invariant: when not Skip, exactly one of
// Passphrase/PassphraseFile is set, and GpgKey is set.
func (c Config) Validate() error {
	if c.Skip {
		return nil
	}
	if c.GpgKey == "" {
		return &aptlyerr.ConfigurationError{Msg: "signing config: GpgKey is required unless Skip is set"}
	}
	hasPass := c.Passphrase != ""
	hasPassFile := c.PassphraseFile != ""
	if hasPass == hasPassFile {
		return &aptlyerr.ConfigurationError{
			Msg: "signing config: exactly one of Passphrase or PassphraseFile must be set",
		}
	}
	return nil
}

// MarshalJSON implements the server's wire contract: when Skip, emit only
// {"Skip":true}; otherwise always emit Batch:true plus any non-empty subset
// of GpgKey, Keyring, SecretKeyring, Passphrase, PassphraseFile.
func (c Config) MarshalJSON() ([]byte, error) {
	if c.Skip {
		return json.Marshal(map[string]any{"Skip": true})
	}
	m := map[string]any{"Batch": true}
	if c.GpgKey != "" {
		m["GpgKey"] = c.GpgKey
	}
	if c.Keyring != "" {
		m["Keyring"] = c.Keyring
	}
	if c.SecretKeyring != "" {
		m["SecretKeyring"] = c.SecretKeyring
	}
	if c.Passphrase != "" {
		m["Passphrase"] = c.Passphrase
	}
	if c.PassphraseFile != "" {
		m["PassphraseFile"] = c.PassphraseFile
	}
	return json.Marshal(m)
}

// Resolver resolves the effective Config for a given publish: look up
// "{prefix or '.'}/{distribution}" in the override map, falling back to
// Default.
type Resolver struct {
	Default   Config
	Overrides map[string]Config
}

// Resolve returns the signing configuration for a publish at (prefix,
// distribution).
func (r Resolver) Resolve(prefix, distribution string) Config {
	p := prefix
	if p == "" {
		p = "."
	}
	key := p + "/" + distribution
	if cfg, ok := r.Overrides[key]; ok {
		return cfg
	}
	return r.Default
}

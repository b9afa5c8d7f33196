package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSigningAndOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "aptly-ctl.json", `
{
    "test": {
        "url": "http://example.com:8090",
        "signing": {
            "gpgkey": "aptly@example.com",
            "passphrase_file": "/home/aptly/gpg_pass"
        },
        "signing map": {
            "./unstable": {
                "skip": true
            }
        }
    }
}`)

	cfg, err := Load(path, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.URL != "http://example.com:8090" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if cfg.DefaultSigning.GpgKey != "aptly@example.com" {
		t.Errorf("GpgKey = %q", cfg.DefaultSigning.GpgKey)
	}
	if cfg.DefaultSigning.PassphraseFile != "/home/aptly/gpg_pass" {
		t.Errorf("PassphraseFile = %q", cfg.DefaultSigning.PassphraseFile)
	}
	if !cfg.SigningMap["./unstable"].Skip {
		t.Error("expected ./unstable to skip signing")
	}

	cfg, err = Load(path, "", []string{
		"url=http://localhost:8090",
		"signing.gpgkey=root@localhost",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.URL != "http://localhost:8090" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if cfg.DefaultSigning.GpgKey != "root@localhost" {
		t.Errorf("GpgKey = %q", cfg.DefaultSigning.GpgKey)
	}
	if cfg.DefaultSigning.PassphraseFile != "/home/aptly/gpg_pass" {
		t.Errorf("override must not clobber unrelated signing fields, got %q", cfg.DefaultSigning.PassphraseFile)
	}
}

func TestLoadSectionSelection(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "aptly-ctl.json", `
{
    "test": { "url": "http://example.com:8091" },
    "test2": { "url": "http://example.com:8092" }
}`)

	if _, err := Load(path, "tes", nil); err == nil {
		t.Fatal("expected ambiguous-section error")
	}
	if _, err := Load(path, "bla", nil); err == nil {
		t.Fatal("expected unknown-section error")
	}

	cfg, err := Load(path, "test", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.URL != "http://example.com:8091" {
		t.Errorf("URL = %q", cfg.URL)
	}

	cfg, err = Load(path, "test2", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.URL != "http://example.com:8092" {
		t.Errorf("URL = %q", cfg.URL)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "aptly-ctl.yaml", `
default:
  url: http://example.com:9000
  connect_timeout: 5
  workers: 3
`)
	cfg, err := Load(path, "default", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.URL != "http://example.com:9000" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if cfg.MaxWorkers != 3 {
		t.Errorf("MaxWorkers = %d", cfg.MaxWorkers)
	}
}

func TestLoadMissingDefaultLocationIsNotAnError(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load("", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.URL != defaultURL {
		t.Errorf("URL = %q, want default", cfg.URL)
	}
}

func TestParseOverrideDict(t *testing.T) {
	got, err := ParseOverrideDict([]string{
		"url=http://localhost:8080",
		"signing.skip=true",
		"some.nested.int=1",
		"float=1.2",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got["url"] != "http://localhost:8080" {
		t.Errorf("url = %v", got["url"])
	}
	signing, ok := got["signing"].(map[string]any)
	if !ok || signing["skip"] != true {
		t.Errorf("signing.skip = %v", got["signing"])
	}
	some, ok := got["some"].(map[string]any)
	if !ok {
		t.Fatalf("some = %v", got["some"])
	}
	nested, ok := some["nested"].(map[string]any)
	if !ok || nested["int"] != float64(1) {
		t.Errorf("some.nested.int = %v", some["nested"])
	}
	if got["float"] != 1.2 {
		t.Errorf("float = %v", got["float"])
	}
}

func TestParseOverrideDictTooLongStaysRaw(t *testing.T) {
	long := ""
	for i := 0; i < maxOverrideValueBytes+10; i++ {
		long += "1"
	}
	got, err := ParseOverrideDict([]string{"huge=" + long})
	if err != nil {
		t.Fatal(err)
	}
	if got["huge"] != long {
		t.Error("expected the oversized value to be kept as a raw string, not parsed as a JSON number")
	}
}

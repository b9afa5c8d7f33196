package command

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func TestParsePubSpec(t *testing.T) {
	cases := []struct {
		in                            string
		storage, prefix, distribution string
	}{
		{"stretch", "", ".", "stretch"},
		{"./stretch", "", ".", "stretch"},
		{"debian/stretch", "", "debian", "stretch"},
		{"debian/wheezy/stretch", "", "debian/wheezy", "stretch"},
		{"s3:bucket/stretch", "s3", "bucket", "stretch"},
	}
	for _, c := range cases {
		spec, err := ParsePubSpec(c.in)
		if err != nil {
			t.Errorf("ParsePubSpec(%q): %v", c.in, err)
			continue
		}
		if spec.Storage != c.storage || spec.Prefix != c.prefix || spec.Distribution != c.distribution {
			t.Errorf("ParsePubSpec(%q) = %+v, want (%q, %q, %q)", c.in, spec, c.storage, c.prefix, c.distribution)
		}
	}

	for _, bad := range []string{"", "/stretch", "debian/"} {
		if _, err := ParsePubSpec(bad); err == nil {
			t.Errorf("ParsePubSpec(%q) expected an error", bad)
		}
	}
}

func TestParsePublishSources(t *testing.T) {
	sources, err := parsePublishSources([]string{"stretch_main=main", "stretch_extra"})
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].Name != "stretch_main" || sources[0].Component != "main" {
		t.Errorf("sources[0] = %+v", sources[0])
	}
	if sources[1].Name != "stretch_extra" || sources[1].Component != "" {
		t.Errorf("sources[1] = %+v", sources[1])
	}

	if _, err := parsePublishSources(nil); err == nil {
		t.Error("expected an error for an empty source list")
	}
	if _, err := parsePublishSources([]string{"=main"}); err == nil {
		t.Error("expected an error for an empty source name")
	}
}

func TestPublishCreateSendsSourcesAndPath(t *testing.T) {
	var gotPath string
	var captured map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(map[string]any{"SourceKind": "local", "Prefix": "debian", "Distribution": "stretch"})
	})

	spec, err := ParsePubSpec("debian/stretch")
	if err != nil {
		t.Fatal(err)
	}
	_, err = PublishCreate(context.Background(), client, spec, "local", []string{"stretch_main=main"}, PublishOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/api/publish/debian" {
		t.Errorf("path = %q, want /api/publish/debian", gotPath)
	}
	sources, ok := captured["Sources"].([]any)
	if !ok || len(sources) != 1 {
		t.Fatalf("Sources = %v", captured["Sources"])
	}
	src := sources[0].(map[string]any)
	if src["Name"] != "stretch_main" || src["Component"] != "main" {
		t.Errorf("source = %v", src)
	}
}

func TestPublishCreateRejectsUnknownSourceKind(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})
	spec := PubSpec{Prefix: ".", Distribution: "stretch"}
	if _, err := PublishCreate(context.Background(), client, spec, "remote", []string{"a"}, PublishOptions{}); err == nil {
		t.Fatal("expected an error for an unknown source kind")
	}
}

func TestPublishListSorted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{"SourceKind": "local", "Prefix": "debian", "Distribution": "stretch"},
			{"SourceKind": "local", "Prefix": ".", "Distribution": "unstable"},
			{"SourceKind": "local", "Prefix": ".", "Distribution": "stretch"},
		})
	})

	publishes, err := PublishList(context.Background(), client)
	if err != nil {
		t.Fatal(err)
	}
	var specs []string
	for _, p := range publishes {
		specs = append(specs, p.FullPrefix()+"/"+p.Distribution)
	}
	want := []string{"./stretch", "./unstable", "debian/stretch"}
	for i := range want {
		if specs[i] != want[i] {
			t.Fatalf("specs = %v, want %v", specs, want)
		}
	}
}

package command

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/cyril-s/aptly-ctl-go/aptlyclient"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *aptlyclient.Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return aptlyclient.NewClient(ts.URL)
}

// TestPutUploadsAddsAndUpdatesPublishes: put a
// package, add it to a repo, and have the dependent publish refreshed. Put
// picks a random upload-directory suffix, so the fake server matches any
// directory under the repo's prefix rather than a fixed name.
func TestPutUploadsAddsAndUpdatesPublishes(t *testing.T) {
	refs, err := putWithFixedDirRouting(t)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 || refs[0] != "stretch_main/aptly_1.3.0+ds1-2_amd64" {
		t.Errorf("refs = %v", refs)
	}
}

func putWithFixedDirRouting(t *testing.T) ([]string, error) {
	t.Helper()
	var uploadDir string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/repos/stretch_main":
			json.NewEncoder(w).Encode(map[string]string{"Name": "stretch_main"})
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/files/"):
			uploadDir = r.URL.Path[len("/api/files/"):]
			json.NewEncoder(w).Encode([]string{"aptly_1.3.0+ds1-2_amd64.deb"})
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/repos/stretch_main/file/"):
			json.NewEncoder(w).Encode(map[string]any{
				"FailedFiles": []string{},
				"Report": map[string]any{
					"Added":    []string{"aptly_1.3.0+ds1-2_amd64 added"},
					"Removed":  []string{},
					"Warnings": []string{},
				},
			})
		case r.Method == http.MethodDelete:
			if r.URL.Path != "/api/files/"+uploadDir {
				t.Errorf("deleted %q, want upload dir %q", r.URL.Path, uploadDir)
			}
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodGet && r.URL.Path == "/api/publish":
			json.NewEncoder(w).Encode([]map[string]any{
				{
					"SourceKind":   "local",
					"Sources":      []map[string]string{{"Name": "stretch_main", "Component": "main"}},
					"Prefix":       "",
					"Distribution": "stretch",
				},
			})
		case r.Method == http.MethodPut && r.URL.Path == "/api/publish/stretch":
			json.NewEncoder(w).Encode(map[string]any{})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	path := filepath.Join(dir, "aptly_1.3.0+ds1-2_amd64.deb")
	if err := os.WriteFile(path, []byte("fake"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := aptlyclient.NewClient(ts.URL)
	return Put(context.Background(), c, "stretch_main", []string{path}, false, nil)
}

func TestCopyResolvesKeysAndUpdatesPublishes(t *testing.T) {
	var addedKeys []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/repos/target/packages":
			var body struct {
				PackageRefs []string
			}
			json.NewDecoder(r.Body).Decode(&body)
			addedKeys = body.PackageRefs
			json.NewEncoder(w).Encode(map[string]string{"Name": "target"})
		case r.Method == http.MethodGet && r.URL.Path == "/api/publish":
			json.NewEncoder(w).Encode([]map[string]any{})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	refs, err := Copy(context.Background(), client, "target", []string{"Pamd64 foo 1.0 abc123"}, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 || refs[0] != "target/Pamd64 foo 1.0 abc123" {
		t.Errorf("refs = %v", refs)
	}
	if len(addedKeys) != 1 || addedKeys[0] != "Pamd64 foo 1.0 abc123" {
		t.Errorf("addedKeys = %v", addedKeys)
	}
}

func TestCopyRejectsDirectReference(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})
	if _, err := Copy(context.Background(), client, "target", []string{"foo_1.0_amd64"}, false, nil); err == nil {
		t.Fatal("expected an error for a hash-free direct reference")
	}
}

func TestRemoveAggregatesPerRepoFailures(t *testing.T) {
	var deletedFromGood []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/api/repos/good/packages":
			var body struct{ PackageRefs []string }
			json.NewDecoder(r.Body).Decode(&body)
			deletedFromGood = body.PackageRefs
			json.NewEncoder(w).Encode(map[string]string{"Name": "good"})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/repos/bad/packages":
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
		case r.Method == http.MethodGet && r.URL.Path == "/api/publish":
			json.NewEncoder(w).Encode([]map[string]any{})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	refs := []string{"good/Pamd64 foo 1.0 aaa", "bad/Pamd64 bar 2.0 bbb"}
	failed, err := Remove(context.Background(), client, refs, false, nil)
	if err == nil {
		t.Fatal("expected an aggregated error from the failing repo")
	}
	if len(failed) != 1 || failed[0] != "Pamd64 bar 2.0 bbb" {
		t.Errorf("failed = %v", failed)
	}
	if len(deletedFromGood) != 1 || deletedFromGood[0] != "Pamd64 foo 1.0 aaa" {
		t.Errorf("deletedFromGood = %v", deletedFromGood)
	}
}

func TestRotateRepoKeepsNewestAndDeletesRest(t *testing.T) {
	keys := []string{
		"Pamd64 foo 1.2 h1",
		"Pamd64 foo 1.3 h2",
		"Pamd64 foo 1.4 h3",
		"Pamd64 foo 1.5 h4",
		"Pamd64 foo 1.6 h5",
	}
	var deleted []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/repos/stretch_main/packages":
			json.NewEncoder(w).Encode(keys)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/repos/stretch_main/packages":
			var body struct{ PackageRefs []string }
			json.NewDecoder(r.Body).Decode(&body)
			deleted = body.PackageRefs
			json.NewEncoder(w).Encode(map[string]string{"Name": "stretch_main"})
		case r.Method == http.MethodGet && r.URL.Path == "/api/publish":
			json.NewEncoder(w).Encode([]map[string]any{})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	got, err := RotateRepo(context.Background(), client, "stretch_main", 2, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)
	want := []string{"Pamd64 foo 1.2 h1", "Pamd64 foo 1.3 h2", "Pamd64 foo 1.4 h3"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
			break
		}
	}
	sort.Strings(deleted)
	for i := range want {
		if deleted[i] != want[i] {
			t.Errorf("deleted %v, want %v", deleted, want)
			break
		}
	}
}

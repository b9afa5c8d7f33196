package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cyril-s/aptly-ctl-go/aptlyclient"
)

func listHandler(publishes []map[string]any, updateHook func(r *http.Request) int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/api/publish" {
			json.NewEncoder(w).Encode(publishes)
			return
		}
		if r.Method == http.MethodPut {
			status := updateHook(r)
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]any{})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestUpdateDependentPublishesFiltersBySourceAndKind(t *testing.T) {
	publishes := []map[string]any{
		{"SourceKind": "local", "Prefix": ".", "Distribution": "stretch", "Sources": []map[string]string{{"Name": "myrepo"}}},
		{"SourceKind": "local", "Prefix": ".", "Distribution": "unrelated", "Sources": []map[string]string{{"Name": "otherrepo"}}},
		{"SourceKind": "snapshot", "Prefix": ".", "Distribution": "frozen", "Sources": []map[string]string{{"Name": "myrepo"}}},
	}
	var updateCalls []string
	ts := httptest.NewServer(listHandler(publishes, func(r *http.Request) int {
		updateCalls = append(updateCalls, r.URL.Path)
		return http.StatusOK
	}))
	defer ts.Close()

	client := aptlyclient.NewClient(ts.URL)
	errs := UpdateDependentPublishes(context.Background(), client, []string{"myrepo"}, false, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(updateCalls) != 1 {
		t.Fatalf("expected exactly 1 update call (local+matching source), got %v", updateCalls)
	}
}

func TestUpdateDependentPublishesDryRunSkipsCall(t *testing.T) {
	publishes := []map[string]any{
		{"SourceKind": "local", "Prefix": ".", "Distribution": "stretch", "Sources": []map[string]string{{"Name": "myrepo"}}},
	}
	called := false
	ts := httptest.NewServer(listHandler(publishes, func(r *http.Request) int {
		called = true
		return http.StatusOK
	}))
	defer ts.Close()

	var events []string
	client := aptlyclient.NewClient(ts.URL)
	errs := UpdateDependentPublishes(context.Background(), client, []string{"myrepo"}, true, func(e fmt.Stringer) {
		events = append(events, e.String())
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if called {
		t.Error("expected no PublishUpdate call during dry run")
	}
	if len(events) != 1 {
		t.Errorf("expected 1 would-update event, got %d", len(events))
	}
}

func TestUpdateDependentPublishesCollectsPartialFailures(t *testing.T) {
	publishes := []map[string]any{
		{"SourceKind": "local", "Prefix": ".", "Distribution": "stretch", "Sources": []map[string]string{{"Name": "myrepo"}}},
		{"SourceKind": "local", "Prefix": "extra", "Distribution": "stretch", "Sources": []map[string]string{{"Name": "myrepo"}}},
	}
	first := true
	ts := httptest.NewServer(listHandler(publishes, func(r *http.Request) int {
		if first {
			first = false
			return http.StatusInternalServerError
		}
		return http.StatusOK
	}))
	defer ts.Close()

	client := aptlyclient.NewClient(ts.URL)
	errs := UpdateDependentPublishes(context.Background(), client, []string{"myrepo"}, false, nil)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
}

package command

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/cyril-s/aptly-ctl-go/aptlytypes"
)

func TestRepoListSorted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]string{
			{"Name": "stretch_main"},
			{"Name": "buster_main"},
			{"Name": "jessie_main"},
		})
	})

	repos, err := RepoList(context.Background(), client)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"buster_main", "jessie_main", "stretch_main"}
	for i := range want {
		if repos[i].Name != want[i] {
			t.Fatalf("repos = %+v, want names %v", repos, want)
		}
	}
}

func TestRepoCreateRequiresName(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})
	if _, err := RepoCreate(context.Background(), client, aptlytypes.Repository{}); err == nil {
		t.Fatal("expected an error for an empty repository name")
	}
}

func TestRepoShowWithPackages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/repos/stretch_main":
			json.NewEncoder(w).Encode(map[string]string{"Name": "stretch_main", "Comment": "main packages"})
		case "/api/repos/stretch_main/packages":
			json.NewEncoder(w).Encode([]string{
				"Pamd64 zsh 5.3 bbb",
				"Pamd64 aptly 1.3 aaa",
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	repo, keys, err := RepoShow(context.Background(), client, "stretch_main", true)
	if err != nil {
		t.Fatal(err)
	}
	if repo.Comment != "main packages" {
		t.Errorf("repo = %+v", repo)
	}
	if len(keys) != 2 || keys[0] != "Pamd64 aptly 1.3 aaa" {
		t.Errorf("expected sorted keys, got %v", keys)
	}
}

package command

import (
	"encoding/json"
	"fmt"

	"github.com/cyril-s/aptly-ctl-go/publish"
	"github.com/cyril-s/aptly-ctl-go/search"
)

// Listener is a callback that receives progress events as a command runs.
type Listener func(fmt.Stringer)

func jsonString(v any) string {
	b, _ := json.Marshal(map[string]any{fmt.Sprintf("%T", v): v})
	return string(b)
}

// searchListener adapts a command Listener to the search package's own
// Listener type so Search can hand it straight to search.Engine.Run.
func searchListener(l Listener) search.Listener {
	if l == nil {
		return nil
	}
	return func(e fmt.Stringer) { l(e) }
}

// publishListener adapts a command Listener to the publish package's own
// Listener type so commands can hand it straight to
// publish.UpdateDependentPublishes.
func publishListener(l Listener) publish.Listener {
	if l == nil {
		return nil
	}
	return func(e fmt.Stringer) { l(e) }
}

// EventUploadStart is emitted right before Put uploads files to a fresh
// server-side upload directory.
type EventUploadStart struct {
	Repo  string `json:"repo"`
	Dir   string `json:"dir"`
	Files int    `json:"files"`
}

func (e EventUploadStart) String() string { return jsonString(e) }

// EventCleanupFailed is emitted when deleting an upload directory fails
// after Put is done with it. Put still returns whatever result it had.
type EventCleanupFailed struct {
	Dir string `json:"dir"`
	Err string `json:"err"`
}

func (e EventCleanupFailed) String() string { return jsonString(e) }

// EventAddFailed is emitted for each file the server refused to add.
type EventAddFailed struct {
	File string `json:"file"`
}

func (e EventAddFailed) String() string { return jsonString(e) }

// EventAddWarning is emitted for each warning the server attached to an
// add-packages report.
type EventAddWarning struct {
	Warning string `json:"warning"`
}

func (e EventAddWarning) String() string { return jsonString(e) }

// EventNothingChanged is emitted when a put/remove/rotate operation
// had nothing to do, so the dependent-publish update was skipped.
type EventNothingChanged struct {
	Op string `json:"op"`
}

func (e EventNothingChanged) String() string { return jsonString(e) }

// EventRotateCandidate is emitted for each package RotateRepo selected for
// deletion, before it is actually deleted (or, in a dry run, instead of
// deleting it).
type EventRotateCandidate struct {
	Repo string `json:"repo"`
	Key  string `json:"key"`
}

func (e EventRotateCandidate) String() string { return jsonString(e) }

// EventRemoveFailed is emitted when deleting packages from one repo fails;
// Remove continues with the rest.
type EventRemoveFailed struct {
	Repo string `json:"repo"`
	Err  string `json:"err"`
}

func (e EventRemoveFailed) String() string { return jsonString(e) }

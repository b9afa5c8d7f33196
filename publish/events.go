package publish

import (
	"encoding/json"
	"fmt"
)

// Listener is a callback that receives progress events as dependent
// publishes are updated.
type Listener func(fmt.Stringer)

func jsonString(v any) string {
	b, _ := json.Marshal(map[string]any{fmt.Sprintf("%T", v): v})
	return string(b)
}

// EventPublishWouldUpdate is emitted instead of an actual update when the
// caller asked for a dry run.
type EventPublishWouldUpdate struct {
	FullPrefix   string `json:"full_prefix"`
	Distribution string `json:"distribution"`
}

func (e EventPublishWouldUpdate) String() string { return jsonString(e) }

// EventPublishUpdated is emitted after a publish is successfully refreshed.
type EventPublishUpdated struct {
	FullPrefix   string `json:"full_prefix"`
	Distribution string `json:"distribution"`
}

func (e EventPublishUpdated) String() string { return jsonString(e) }

// EventPublishUpdateFailed is emitted when refreshing one publish fails.
// Orchestration continues with the rest.
type EventPublishUpdateFailed struct {
	FullPrefix   string `json:"full_prefix"`
	Distribution string `json:"distribution"`
	Err          string `json:"err"`
}

func (e EventPublishUpdateFailed) String() string { return jsonString(e) }

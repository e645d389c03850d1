package action

import (
	"encoding/json"

	"github.com/tidwall/jsonc"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/mapping"
)

// Override holds per-message replacements for base action fields.
// A nil field leaves the base value in place.
type Override struct {
	Kind       *mapping.Kind `json:"action_type"`
	Channel    *uint8        `json:"ch"`
	Note       *uint8        `json:"note"`
	Velocity   *uint8        `json:"vel"`
	DurationMS *uint64       `json:"dur"`
	ControlNum *uint8        `json:"control_num"`
	Value      *uint8        `json:"value"`
}

// IsEmpty reports whether the override replaces nothing.
func (o Override) IsEmpty() bool {
	return o == Override{}
}

// ParseOverride parses payload into an Override. It never fails: any syntax
// error, type mismatch, out-of-range number or unknown action_type yields the
// empty Override. Comments and trailing commas are tolerated.
func ParseOverride(payload string) Override {
	var o Override
	if err := json.Unmarshal(jsonc.ToJSON([]byte(payload)), &o); err != nil {
		return Override{}
	}
	return o
}

// Apply returns base with every present override field substituted.
// base is not modified.
func (o Override) Apply(base mapping.Action) mapping.Action {
	out := base.Clone()
	if o.Kind != nil {
		out.Kind = *o.Kind
	}
	if o.Channel != nil {
		out.Channel = *o.Channel
	}
	if o.Note != nil {
		out.Note = mapping.U8(*o.Note)
	}
	if o.Velocity != nil {
		out.Velocity = mapping.U8(*o.Velocity)
	}
	if o.DurationMS != nil {
		out.DurationMS = mapping.U64(*o.DurationMS)
	}
	if o.ControlNum != nil {
		out.ControlNum = mapping.U8(*o.ControlNum)
	}
	if o.Value != nil {
		out.Value = mapping.U8(*o.Value)
	}
	return out
}

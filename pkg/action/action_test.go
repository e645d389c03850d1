package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/mapping"
)

func TestParseOverride(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		check   func(t *testing.T, o Override)
	}{
		{
			name:    "velocity only",
			payload: `{"vel": 40}`,
			check: func(t *testing.T, o Override) {
				require.NotNil(t, o.Velocity)
				assert.Equal(t, uint8(40), *o.Velocity)
				assert.Nil(t, o.Note)
				assert.Nil(t, o.Kind)
			},
		},
		{
			name:    "all fields",
			payload: `{"action_type":"cc","ch":3,"note":61,"vel":1,"dur":250,"control_num":7,"value":99}`,
			check: func(t *testing.T, o Override) {
				assert.Equal(t, mapping.KindControlChange, *o.Kind)
				assert.Equal(t, uint8(3), *o.Channel)
				assert.Equal(t, uint8(61), *o.Note)
				assert.Equal(t, uint8(1), *o.Velocity)
				assert.Equal(t, uint64(250), *o.DurationMS)
				assert.Equal(t, uint8(7), *o.ControlNum)
				assert.Equal(t, uint8(99), *o.Value)
			},
		},
		{
			name:    "unknown keys ignored",
			payload: `{"vel": 10, "color": "red"}`,
			check: func(t *testing.T, o Override) {
				assert.Equal(t, uint8(10), *o.Velocity)
			},
		},
		{
			name:    "null field is absent",
			payload: `{"note": null}`,
			check: func(t *testing.T, o Override) {
				assert.True(t, o.IsEmpty())
			},
		},
		{
			name:    "trailing comma and comment",
			payload: "{\"note\": 70, // high\n}",
			check: func(t *testing.T, o Override) {
				assert.Equal(t, uint8(70), *o.Note)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, ParseOverride(tt.payload))
		})
	}
}

func TestParseOverrideFailureYieldsEmpty(t *testing.T) {
	payloads := []string{
		"",
		"ping",
		"hit",
		"42",
		`"note"`,
		`[1,2,3]`,
		`{"vel": 300}`,
		`{"vel": -1}`,
		`{"vel": 4.5}`,
		`{"note": 60, "vel": 300}`,
		`{"vel": "40"}`,
		`{"action_type": "NoteOn"}`,
		`{"action_type": 1}`,
		`{"dur": -5}`,
		`{"vel": 40`,
		"\xff\xfe",
	}

	for _, p := range payloads {
		o := ParseOverride(p)
		if !o.IsEmpty() {
			t.Errorf("ParseOverride(%q) = %+v, want empty", p, o)
		}
	}
}

func TestOverrideApplyDoesNotMutateBase(t *testing.T) {
	base := mapping.Action{Kind: mapping.KindNoteOn, Channel: 2, Note: mapping.U8(60), Velocity: mapping.U8(100)}
	o := ParseOverride(`{"note": 72, "ch": 5}`)

	final := o.Apply(base)

	assert.Equal(t, uint8(72), *final.Note)
	assert.Equal(t, uint8(5), final.Channel)
	assert.Equal(t, uint8(100), *final.Velocity)
	assert.Equal(t, uint8(60), *base.Note)
	assert.Equal(t, uint8(2), base.Channel)

	*final.Velocity = 1
	assert.Equal(t, uint8(100), *base.Velocity)
}

func newResolver(entries ...mapping.Entry) (*Resolver, *mapping.Store) {
	store := mapping.NewStore(mapping.NewTable(entries))
	return NewResolver(store), store
}

func TestResolveOverridePrecedence(t *testing.T) {
	r, _ := newResolver(mapping.Entry{
		Topic: "pad",
		Actions: []mapping.Action{
			{Kind: mapping.KindNoteOn, Channel: 0, Note: mapping.U8(60), Velocity: mapping.U8(100)},
		},
	})

	final := r.Resolve("pad", `{"vel": 40}`)
	require.Len(t, final, 1)
	assert.Equal(t, mapping.KindNoteOn, final[0].Kind)
	assert.Equal(t, uint8(60), *final[0].Note)
	assert.Equal(t, uint8(40), *final[0].Velocity)
}

func TestResolveBarePayloadUsesDefaults(t *testing.T) {
	r, _ := newResolver(mapping.Entry{
		Topic: "pad",
		Actions: []mapping.Action{
			{Kind: mapping.KindNoteOnOff, Channel: 9, Note: mapping.U8(36)},
			{Kind: mapping.KindControlChange, Channel: 9, ControlNum: mapping.U8(7), Value: mapping.U8(64)},
		},
	})

	final := r.Resolve("pad", "hit")
	require.Len(t, final, 2)
	assert.Equal(t, mapping.KindNoteOnOff, final[0].Kind)
	assert.Equal(t, uint8(36), *final[0].Note)
	assert.Nil(t, final[0].Velocity)
	assert.Equal(t, mapping.KindControlChange, final[1].Kind)
	assert.Equal(t, uint8(64), *final[1].Value)
}

func TestResolveOverrideAppliesToEveryAction(t *testing.T) {
	r, _ := newResolver(mapping.Entry{
		Topic: "chord",
		Actions: []mapping.Action{
			{Kind: mapping.KindNoteOn, Note: mapping.U8(60)},
			{Kind: mapping.KindNoteOn, Note: mapping.U8(64)},
		},
	})

	final := r.Resolve("chord", `{"ch": 4, "action_type": "note_off"}`)
	require.Len(t, final, 2)
	for i, a := range final {
		assert.Equal(t, mapping.KindNoteOff, a.Kind, "action %d", i)
		assert.Equal(t, uint8(4), a.Channel, "action %d", i)
	}
	assert.Equal(t, uint8(60), *final[0].Note)
	assert.Equal(t, uint8(64), *final[1].Note)
}

func TestResolveUnknownTopic(t *testing.T) {
	r, _ := newResolver(mapping.Entry{Topic: "pad", Actions: []mapping.Action{{Kind: mapping.KindNoteOn}}})

	assert.Empty(t, r.Resolve("other", `{"vel": 1}`))
	assert.Empty(t, r.Resolve("PAD", ""))
}

func TestResolveSeesReloadedTable(t *testing.T) {
	r, store := newResolver()
	assert.Empty(t, r.Resolve("pad", ""))

	store.Reload(mapping.NewTable([]mapping.Entry{
		{Topic: "pad", Actions: []mapping.Action{{Kind: mapping.KindProgramChange, Value: mapping.U8(3)}}},
	}))

	final := r.Resolve("pad", "")
	require.Len(t, final, 1)
	assert.Equal(t, mapping.KindProgramChange, final[0].Kind)
}

func TestResolveDoesNotLeakIntoTable(t *testing.T) {
	r, store := newResolver(mapping.Entry{
		Topic:   "pad",
		Actions: []mapping.Action{{Kind: mapping.KindNoteOn, Velocity: mapping.U8(100)}},
	})

	final := r.Resolve("pad", `{"vel": 5}`)
	*final[0].Velocity = 9

	base, _ := store.Load().Actions("pad")
	assert.Equal(t, uint8(100), *base[0].Velocity)
}

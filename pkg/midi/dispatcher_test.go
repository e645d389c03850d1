package midi

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/action"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/log"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/mapping"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/midi/mocks"
	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/schedule"
)

type captured struct {
	mu     sync.Mutex
	events []log.Event
}

func (c *captured) Log(e log.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captured) all() []log.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]log.Event(nil), c.events...)
}

func resolverFor(entries ...mapping.Entry) *action.Resolver {
	return action.NewResolver(mapping.NewStore(mapping.NewTable(entries)))
}

func TestHandlePublishOverridePrecedence(t *testing.T) {
	sink := mocks.NewMockSink(t)
	sink.EXPECT().Send([]byte{0x90, 0x3C, 0x28}).Return(nil).Once()

	d := NewDispatcher(DispatcherConfig{
		Sink: sink,
		Resolver: resolverFor(mapping.Entry{
			Topic:   "pad",
			Actions: []mapping.Action{{Kind: mapping.KindNoteOn, Note: mapping.U8(60), Velocity: mapping.U8(100)}},
		}),
	})

	n := d.HandlePublish("pad", `{"vel": 40}`)
	assert.Equal(t, 1, n)
}

func TestHandlePublishUnknownTopicSendsNothing(t *testing.T) {
	sink := mocks.NewMockSink(t)
	d := NewDispatcher(DispatcherConfig{Sink: sink, Resolver: resolverFor()})

	assert.Equal(t, 0, d.HandlePublish("nobody", "ping"))
	sink.AssertNotCalled(t, "Send", mock.Anything)
}

func TestHandlePublishActionsInOrder(t *testing.T) {
	sink := mocks.NewMockSink(t)
	var mu sync.Mutex
	var sent [][]byte
	sink.EXPECT().Send(mock.Anything).RunAndReturn(func(msg []byte) error {
		mu.Lock()
		defer mu.Unlock()
		sent = append(sent, append([]byte(nil), msg...))
		return nil
	}).Times(3)

	d := NewDispatcher(DispatcherConfig{
		Sink: sink,
		Resolver: resolverFor(mapping.Entry{
			Topic: "scene",
			Actions: []mapping.Action{
				{Kind: mapping.KindProgramChange, Value: mapping.U8(4)},
				{Kind: mapping.KindControlChange, ControlNum: mapping.U8(7), Value: mapping.U8(90)},
				{Kind: mapping.KindNoteOn, Note: mapping.U8(48)},
			},
		}),
	})

	require.Equal(t, 3, d.HandlePublish("scene", "go"))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, [][]byte{{0xC0, 4}, {0xB0, 7, 90}, {0x90, 48, 127}}, sent)
}

func TestNoteOnOffTiming(t *testing.T) {
	sink := mocks.NewMockSink(t)

	type stamped struct {
		at  time.Time
		msg []byte
	}
	sent := make(chan stamped, 2)
	sink.EXPECT().Send(mock.Anything).RunAndReturn(func(msg []byte) error {
		sent <- stamped{at: time.Now(), msg: append([]byte(nil), msg...)}
		return nil
	}).Times(2)

	sched := schedule.New()
	d := NewDispatcher(DispatcherConfig{Sink: sink, Scheduler: sched})

	require.NoError(t, d.Dispatch("kick", mapping.Action{Kind: mapping.KindNoteOnOff, Channel: 9, Note: mapping.U8(36), Velocity: mapping.U8(110)}))

	var on, off stamped
	select {
	case on = <-sent:
	case <-time.After(time.Second):
		t.Fatal("note on not sent")
	}
	select {
	case off = <-sent:
	case <-time.After(2 * time.Second):
		t.Fatal("note off not sent")
	}

	assert.Equal(t, []byte{0x99, 36, 110}, on.msg)
	assert.Equal(t, []byte{0x89, 36, 0}, off.msg)
	if gap := off.at.Sub(on.at); gap < 45*time.Millisecond {
		t.Errorf("note off sent %v after note on, want >= ~50ms", gap)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, sched.Wait(ctx))
}

func TestDeferredNoteOffSurvivesSendError(t *testing.T) {
	sink := mocks.NewMockSink(t)
	sink.EXPECT().Send([]byte{0x90, 60, 127}).Return(nil).Once()
	sink.EXPECT().Send([]byte{0x80, 60, 0}).Return(errors.New("port gone")).Once()

	sched := schedule.New()
	capture := &captured{}
	d := NewDispatcher(DispatcherConfig{Sink: sink, Scheduler: sched, Capture: capture, RelayID: "r"})

	require.NoError(t, d.Dispatch("t", mapping.Action{Kind: mapping.KindNoteOnOff, DurationMS: mapping.U64(5)}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, sched.Wait(ctx))

	events := capture.all()
	require.Len(t, events, 2)
	assert.Equal(t, log.CategoryMessage, events[0].Category)
	assert.Equal(t, log.CategoryError, events[1].Category)
	assert.Equal(t, "port gone", events[1].Error.Message)
}

func TestDispatchImmediateErrorIsReturned(t *testing.T) {
	sink := mocks.NewMockSink(t)
	sink.EXPECT().Send(mock.Anything).Return(errors.New("boom")).Once()

	d := NewDispatcher(DispatcherConfig{Sink: sink})
	err := d.Dispatch("t", mapping.Action{Kind: mapping.KindNoteOnOff})
	assert.EqualError(t, err, "boom")
}

func TestDispatchUnknownKind(t *testing.T) {
	sink := mocks.NewMockSink(t)
	d := NewDispatcher(DispatcherConfig{Sink: sink})

	err := d.Dispatch("t", mapping.Action{Kind: mapping.Kind(99)})
	assert.ErrorIs(t, err, mapping.ErrUnknownKind)
}

func TestDispatcherWithoutSinkIsNoop(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{
		Resolver: resolverFor(mapping.Entry{Topic: "pad", Actions: []mapping.Action{{Kind: mapping.KindNoteOnOff}}}),
	})

	assert.False(t, d.Enabled())
	assert.Equal(t, 1, d.HandlePublish("pad", ""))
	assert.NoError(t, d.Dispatch("pad", mapping.Action{Kind: mapping.KindNoteOn}))
}

func TestDispatchCapturesMIDIEvents(t *testing.T) {
	sink := mocks.NewMockSink(t)
	sink.EXPECT().Send(mock.Anything).Return(nil)

	capture := &captured{}
	d := NewDispatcher(DispatcherConfig{Sink: sink, Capture: capture, RelayID: "relay-1"})
	require.NoError(t, d.Dispatch("lights", mapping.Action{Kind: mapping.KindControlChange, ControlNum: mapping.U8(1), Value: mapping.U8(2)}))

	events := capture.all()
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, "relay-1", ev.RelayID)
	assert.Equal(t, log.LayerMIDI, ev.Layer)
	assert.Equal(t, "lights", ev.Channel)
	require.NotNil(t, ev.MIDI)
	assert.Equal(t, "cc", ev.MIDI.Kind)
	assert.Equal(t, []byte{0xB0, 1, 2}, ev.MIDI.Bytes)
	assert.False(t, ev.MIDI.Deferred)
}

func TestSchedulerClosedReportsError(t *testing.T) {
	sink := mocks.NewMockSink(t)
	sink.EXPECT().Send(mock.Anything).Return(nil).Once()

	sched := schedule.New()
	sched.Close()
	d := NewDispatcher(DispatcherConfig{Sink: sink, Scheduler: sched})

	err := d.Dispatch("t", mapping.Action{Kind: mapping.KindNoteOnOff})
	assert.ErrorIs(t, err, schedule.ErrClosed)
}

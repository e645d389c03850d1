package midi

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Calvin-Zikakis/music-sounds-better-without-you/pkg/midi/mocks"
)

func TestNewOutputOpensClosedPort(t *testing.T) {
	port := mocks.NewMockOut(t)
	port.EXPECT().IsOpen().Return(false).Once()
	port.EXPECT().Open().Return(nil).Once()
	port.EXPECT().String().Return("Zerver").Maybe()

	out, err := NewOutput(port)
	require.NoError(t, err)
	assert.Equal(t, "Zerver", out.Name())
}

func TestNewOutputOpenFailure(t *testing.T) {
	port := mocks.NewMockOut(t)
	port.EXPECT().IsOpen().Return(false).Once()
	port.EXPECT().Open().Return(errors.New("busy")).Once()
	port.EXPECT().String().Return("Synth").Maybe()

	_, err := NewOutput(port)
	assert.ErrorContains(t, err, "busy")
}

func TestNewOutputNilPort(t *testing.T) {
	_, err := NewOutput(nil)
	assert.Error(t, err)
}

func TestOutputSendAndClose(t *testing.T) {
	port := mocks.NewMockOut(t)
	port.EXPECT().IsOpen().Return(true).Once()
	port.EXPECT().Send([]byte{0x90, 60, 127}).Return(nil).Once()
	port.EXPECT().Close().Return(nil).Once()

	out, err := NewOutput(port)
	require.NoError(t, err)

	require.NoError(t, out.Send([]byte{0x90, 60, 127}))
	require.NoError(t, out.Close())
	require.NoError(t, out.Close())
	assert.ErrorIs(t, out.Send([]byte{0x80, 60, 0}), ErrOutputClosed)
}

func TestOutputSerializesSends(t *testing.T) {
	port := mocks.NewMockOut(t)
	port.EXPECT().IsOpen().Return(true).Once()

	var inFlight, overlaps atomic.Int32
	port.EXPECT().Send(mock.Anything).RunAndReturn(func([]byte) error {
		if inFlight.Add(1) > 1 {
			overlaps.Add(1)
		}
		runtime.Gosched()
		inFlight.Add(-1)
		return nil
	}).Times(100)

	out, err := NewOutput(port)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				_ = out.Send([]byte{0xB0, 1, 1})
			}
		}()
	}
	wg.Wait()
	assert.Zero(t, overlaps.Load())
}

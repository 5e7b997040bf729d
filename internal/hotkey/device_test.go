package hotkey

import (
	"io"
	"testing"

	evdev "github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Mocks --

type mockInputDevice struct {
	name   string
	path   string
	caps   map[evdev.EvType][]evdev.EvCode
	events chan *evdev.InputEvent
	closed bool
}

func (m *mockInputDevice) ReadOne() (*evdev.InputEvent, error) {
	ev, ok := <-m.events
	if !ok {
		return nil, io.EOF
	}
	return ev, nil
}

func (m *mockInputDevice) Close() error {
	m.closed = true
	return nil
}

func (m *mockInputDevice) Name() string                                   { return m.name }
func (m *mockInputDevice) Path() string                                   { return m.path }
func (m *mockInputDevice) Capabilities() map[evdev.EvType][]evdev.EvCode  { return m.caps }

type mockEvdevOps struct {
	devices []InputDevice
}

func (m *mockEvdevOps) ListInputDevices() ([]InputDevice, error) { return m.devices, nil }
func (m *mockEvdevOps) Open(path string) (InputDevice, error) {
	for _, d := range m.devices {
		if d.Path() == path {
			return d, nil
		}
	}
	return nil, io.ErrClosedPipe
}

// -- Tests --

func TestIsKeyboard(t *testing.T) {
	kbd := &mockInputDevice{
		name: "AT Translated Set 2",
		caps: map[evdev.EvType][]evdev.EvCode{
			evdev.EV_KEY: {evdev.KEY_A, evdev.KEY_B},
		},
	}
	assert.True(t, isKeyboard(kbd))

	mouse := &mockInputDevice{
		name: "Logitech Mouse",
		caps: map[evdev.EvType][]evdev.EvCode{
			evdev.EV_KEY: {evdev.BTN_LEFT},
		},
	}
	assert.False(t, isKeyboard(mouse))

	byName := &mockInputDevice{name: "USB Keyboard", caps: nil}
	assert.True(t, isKeyboard(byName))
}

func TestAttachFeedsDetectorFromDevice(t *testing.T) {
	dev := &mockInputDevice{
		name:   "Test Keyboard",
		path:   "/dev/input/event9",
		caps:   map[evdev.EvType][]evdev.EvCode{evdev.EV_KEY: {evdev.KEY_A}},
		events: make(chan *evdev.InputEvent, 8),
	}
	old := evOps
	evOps = &mockEvdevOps{devices: []InputDevice{dev}}
	defer func() { evOps = old }()

	d := NewDetector()
	action := newCountingAction()
	d.Register([]Key{evdev.KEY_LEFTCTRL}, evdev.KEY_SPACE, action)
	require.NoError(t, d.Attach())

	dev.events <- press(evdev.KEY_LEFTCTRL)
	dev.events <- press(evdev.KEY_SPACE)
	action.waitForFire(t)

	close(dev.events)
	d.Close()
	assert.True(t, dev.closed)
}

func TestAttachExplicitDevicePath(t *testing.T) {
	dev := &mockInputDevice{
		name:   "Override",
		path:   "/dev/input/event3",
		events: make(chan *evdev.InputEvent),
	}
	old := evOps
	evOps = &mockEvdevOps{devices: []InputDevice{dev}}
	defer func() { evOps = old }()

	t.Setenv("ORION_DEVICE_PATH", "/dev/input/event3")

	d := NewDetector()
	require.NoError(t, d.Attach())
	close(dev.events)
	d.Close()
}

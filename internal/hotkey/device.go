package hotkey

import (
	"os"
	"strings"

	evdev "github.com/holoplot/go-evdev"

	"github.com/grishmahat/orion/internal/logging"
)

// InputDevice is an interface wrapper around evdev.InputDevice for testing.
type InputDevice interface {
	ReadOne() (*evdev.InputEvent, error)
	Close() error
	Name() string
	Path() string
	Capabilities() map[evdev.EvType][]evdev.EvCode
}

type realInputDevice struct {
	dev *evdev.InputDevice
}

func (r *realInputDevice) ReadOne() (*evdev.InputEvent, error) { return r.dev.ReadOne() }
func (r *realInputDevice) Close() error                        { return r.dev.Close() }
func (r *realInputDevice) Name() string {
	name, _ := r.dev.Name()
	return name
}
func (r *realInputDevice) Path() string { return r.dev.Path() }
func (r *realInputDevice) Capabilities() map[evdev.EvType][]evdev.EvCode {
	caps := make(map[evdev.EvType][]evdev.EvCode)
	for _, t := range r.dev.CapableTypes() {
		caps[t] = r.dev.CapableEvents(t)
	}
	return caps
}

// EvdevOps abstracts device enumeration for testing.
type EvdevOps interface {
	ListInputDevices() ([]InputDevice, error)
	Open(path string) (InputDevice, error)
}

type realEvdevOps struct{}

func (realEvdevOps) ListInputDevices() ([]InputDevice, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, err
	}
	var ret []InputDevice
	for _, p := range paths {
		d, err := evdev.Open(p.Path)
		if err != nil {
			continue // skip unopenable devices
		}
		ret = append(ret, &realInputDevice{dev: d})
	}
	return ret, nil
}

func (realEvdevOps) Open(path string) (InputDevice, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, err
	}
	return &realInputDevice{dev: dev}, nil
}

var evOps EvdevOps = realEvdevOps{}

// Attach hooks the detector onto every keyboard-capable input device
// and starts one reader goroutine per device. The ORION_DEVICE_PATH
// environment variable forces a single explicit device instead.
func (d *Detector) Attach() error {
	if path := os.Getenv("ORION_DEVICE_PATH"); path != "" {
		logging.Infof("hotkey: using explicit device path %s", path)
		if err := d.listenTo(path); err != nil {
			return err
		}
		return nil
	}

	devices, err := evOps.ListInputDevices()
	if err != nil {
		return err
	}

	attached := 0
	for _, dev := range devices {
		if !isKeyboard(dev) {
			dev.Close()
			continue
		}
		logging.Infof("hotkey: attaching to keyboard %s (%s)", dev.Name(), dev.Path())
		d.startReader(dev)
		attached++
	}
	if attached == 0 {
		logging.Warnf("hotkey: no keyboards detected to monitor")
	}
	return nil
}

// Close detaches every device; reader goroutines exit on the next read.
func (d *Detector) Close() {
	d.mu.Lock()
	devices := d.devices
	d.devices = nil
	d.mu.Unlock()

	for _, dev := range devices {
		dev.Close()
	}
}

func (d *Detector) listenTo(path string) error {
	dev, err := evOps.Open(path)
	if err != nil {
		return err
	}
	d.startReader(dev)
	return nil
}

func (d *Detector) startReader(dev InputDevice) {
	d.mu.Lock()
	d.devices = append(d.devices, dev)
	d.mu.Unlock()

	go func() {
		defer dev.Close()
		for {
			ev, err := dev.ReadOne()
			if err != nil {
				// Device closed or disconnected.
				logging.Debugf("hotkey: reader for %s stopped: %v", dev.Name(), err)
				return
			}
			d.HandleEvent(ev)
		}
	}()
}

func isKeyboard(dev InputDevice) bool {
	for capType, codes := range dev.Capabilities() {
		if capType != evdev.EV_KEY {
			continue
		}
		for _, code := range codes {
			if code == evdev.KEY_A {
				return true
			}
		}
	}
	return strings.Contains(strings.ToLower(dev.Name()), "keyboard")
}

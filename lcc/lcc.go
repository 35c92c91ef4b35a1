// Package lcc drives the Thorlabs LCC25 liquid-crystal controller.
//
// Unlike the serial instruments, the LCC25 is controlled through a
// closed-source vendor command library loaded over FFI. The library is
// isolated behind the [Commander] interface so the driver itself is portable
// and testable, and so callers see the same attribute-descriptor surface —
// typed getters/setters, domain validation with [cmdio.ValidationError],
// last-observed-value cache, idempotent Close — as every serial-attached
// instrument. Callers cannot tell which transport underlies a device.
package lcc

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/andncl/go-qolab/cmdio"
	"github.com/andncl/go-qolab/logger"
)

// Vendor-library connection parameters.
const (
	// DefaultBaudRate is the LCC25 line speed behind the vendor library.
	DefaultBaudRate = 115200

	// DefaultTimeoutMs is the vendor-library command timeout.
	DefaultTimeoutMs = 1000
)

// DeviceInfo identifies one connected controller as reported by the vendor
// library's device listing.
type DeviceInfo struct {
	SerialNo string
	Port     string
}

// Commander mirrors the vendor command library's entry points. An FFI-backed
// implementation binds these to the closed-source driver; tests substitute a
// mock. Every call operates on the integer handle returned by Open.
type Commander interface {
	List() ([]DeviceInfo, error)
	Open(serialNo string, baudRate, timeoutMs int) (handle int, err error)
	Close(handle int) error

	GetVoltage1(handle int) (float64, error)
	SetVoltage1(handle int, value float64) error
	GetVoltage2(handle int) (float64, error)
	SetVoltage2(handle int, value float64) error

	GetOutputMode(handle int) (int, error)
	SetOutputMode(handle int, mode int) error

	GetModulationFrequency(handle int) (float64, error)
	SetModulationFrequency(handle int, hz float64) error

	GetOutputEnable(handle int) (bool, error)
	SetOutputEnable(handle int, enable bool) error
}

// OutputMode selects the controller's output waveform source.
type OutputMode int

const (
	ModeModulation OutputMode = 0
	ModeVoltage1   OutputMode = 1
	ModeVoltage2   OutputMode = 2
)

func (m OutputMode) String() string {
	switch m {
	case ModeModulation:
		return "modulation"
	case ModeVoltage1:
		return "voltage1"
	case ModeVoltage2:
		return "voltage2"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// Attribute descriptors; validation shares the cmdio domain machinery so the
// controller rejects values exactly the way the serial instruments do.
var (
	attrVoltage1 = cmdio.Attribute{
		Name:   "voltage1",
		Domain: cmdio.Range{Min: 0, Max: 25},
	}

	attrVoltage2 = cmdio.Attribute{
		Name:   "voltage2",
		Domain: cmdio.Range{Min: 0, Max: 25},
	}

	attrModulationFrequency = cmdio.Attribute{
		Name:   "modulation frequency",
		Domain: cmdio.Range{Min: 5, Max: 150},
	}

	attrOutputMode = cmdio.Attribute{
		Name:    "output mode",
		Domain:  cmdio.Enum{0, 1, 2},
		Integer: true,
	}
)

// Device is one open LCC25 controller.
//
// Like every instrument session, a Device supports exactly one logical
// caller at a time; the last-observed-value cache is safe for concurrent
// diagnostic reads.
type Device struct {
	cmd      Commander
	serialNo string
	handle   int
	logger   logger.Logger

	cache  *xsync.MapOf[string, any]
	closed atomic.Bool
}

// Open connects to the controller attached to the named COM port. The port
// is resolved to a device serial number through the vendor library's device
// listing; opening fails if no listed device matches the port.
func Open(cmd Commander, port string, opts ...Option) (*Device, error) {
	settings := defaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	devices, err := cmd.List()
	if err != nil {
		return nil, &cmdio.CommunicationError{Op: "list devices", Err: err}
	}

	var serialNo string
	for _, dev := range devices {
		if strings.Contains(strings.ToLower(dev.Port), strings.ToLower(port)) {
			serialNo = dev.SerialNo
			break
		}
	}

	if serialNo == "" {
		return nil, fmt.Errorf("lcc: no LCC25 device found on %s (available: %v)", port, devices)
	}

	handle, err := cmd.Open(serialNo, settings.baudRate, settings.timeoutMs)
	if err != nil {
		return nil, &cmdio.CommunicationError{Op: "open " + serialNo, Err: err}
	}

	settings.logger.Debug("lcc: device connected", "serialNo", serialNo, "port", port, "handle", handle)

	return &Device{
		cmd:      cmd,
		serialNo: serialNo,
		handle:   handle,
		logger:   settings.logger,
		cache:    xsync.NewMapOf[string, any](),
	}, nil
}

// Option configures Open.
type Option func(*settings)

type settings struct {
	baudRate  int
	timeoutMs int
	logger    logger.Logger
}

func defaultSettings() settings {
	return settings{
		baudRate:  DefaultBaudRate,
		timeoutMs: DefaultTimeoutMs,
		logger:    logger.GetLogger(),
	}
}

// WithBaudRate overrides the vendor-library baud rate.
func WithBaudRate(baud int) Option {
	return func(s *settings) { s.baudRate = baud }
}

// WithTimeout overrides the vendor-library command timeout in milliseconds.
func WithTimeout(ms int) Option {
	return func(s *settings) { s.timeoutMs = ms }
}

// WithLogger sets the logger for the device.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// SerialNo returns the device serial number resolved at Open.
func (d *Device) SerialNo() string {
	return d.serialNo
}

// Cached returns the last-observed value for the named attribute, if any.
// Diagnostics only; every getter re-queries the hardware.
func (d *Device) Cached(name string) (any, bool) {
	return d.cache.Load(name)
}

// Close releases the vendor-library handle. Idempotent.
func (d *Device) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}

	d.logger.Debug("lcc: closing device", "serialNo", d.serialNo)

	if err := d.cmd.Close(d.handle); err != nil {
		return &cmdio.CommunicationError{Op: "close " + d.serialNo, Err: err}
	}

	return nil
}

// --- Voltages ---

// Voltage1 returns the channel 1 voltage in V.
func (d *Device) Voltage1() (float64, error) {
	return d.getFloat(&attrVoltage1, d.cmd.GetVoltage1)
}

// SetVoltage1 sets the channel 1 voltage (0–25 V).
func (d *Device) SetVoltage1(value float64) error {
	return d.setFloat(&attrVoltage1, d.cmd.SetVoltage1, value)
}

// Voltage2 returns the channel 2 voltage in V.
func (d *Device) Voltage2() (float64, error) {
	return d.getFloat(&attrVoltage2, d.cmd.GetVoltage2)
}

// SetVoltage2 sets the channel 2 voltage (0–25 V).
func (d *Device) SetVoltage2(value float64) error {
	return d.setFloat(&attrVoltage2, d.cmd.SetVoltage2, value)
}

// --- Modulation ---

// ModulationFrequency returns the modulation frequency in Hz.
func (d *Device) ModulationFrequency() (float64, error) {
	return d.getFloat(&attrModulationFrequency, d.cmd.GetModulationFrequency)
}

// SetModulationFrequency sets the modulation frequency (5–150 Hz).
func (d *Device) SetModulationFrequency(hz float64) error {
	return d.setFloat(&attrModulationFrequency, d.cmd.SetModulationFrequency, hz)
}

// --- Output mode and enable ---

// Mode returns the current output mode.
func (d *Device) Mode() (OutputMode, error) {
	if err := d.checkOpen("get output mode"); err != nil {
		return 0, err
	}

	mode, err := d.cmd.GetOutputMode(d.handle)
	if err != nil {
		return 0, &cmdio.CommunicationError{Op: "get output mode", Err: err}
	}

	d.cache.Store(attrOutputMode.Name, OutputMode(mode))

	return OutputMode(mode), nil
}

// SetMode sets the output mode.
func (d *Device) SetMode(mode OutputMode) error {
	if err := attrOutputMode.Validate(float64(mode)); err != nil {
		return err
	}

	if err := d.checkOpen("set output mode"); err != nil {
		return err
	}

	if err := d.cmd.SetOutputMode(d.handle, int(mode)); err != nil {
		return &cmdio.CommunicationError{Op: "set output mode", Err: err}
	}

	d.cache.Store(attrOutputMode.Name, mode)

	return nil
}

// OutputEnabled reports whether the output is enabled.
func (d *Device) OutputEnabled() (bool, error) {
	if err := d.checkOpen("get output enable"); err != nil {
		return false, err
	}

	enabled, err := d.cmd.GetOutputEnable(d.handle)
	if err != nil {
		return false, &cmdio.CommunicationError{Op: "get output enable", Err: err}
	}

	d.cache.Store("output enable", enabled)

	return enabled, nil
}

// SetOutputEnabled enables or disables the output.
func (d *Device) SetOutputEnabled(enable bool) error {
	if err := d.checkOpen("set output enable"); err != nil {
		return err
	}

	if err := d.cmd.SetOutputEnable(d.handle, enable); err != nil {
		return &cmdio.CommunicationError{Op: "set output enable", Err: err}
	}

	d.cache.Store("output enable", enable)

	return nil
}

// --- Helpers ---

func (d *Device) checkOpen(op string) error {
	if d.closed.Load() {
		return &cmdio.CommunicationError{Op: op, Err: cmdio.ErrSessionClosed}
	}

	return nil
}

func (d *Device) getFloat(attr *cmdio.Attribute, get func(int) (float64, error)) (float64, error) {
	if err := d.checkOpen("get " + attr.Name); err != nil {
		return 0, err
	}

	v, err := get(d.handle)
	if err != nil {
		return 0, &cmdio.CommunicationError{Op: "get " + attr.Name, Err: err}
	}

	d.cache.Store(attr.Name, v)

	return v, nil
}

func (d *Device) setFloat(attr *cmdio.Attribute, set func(int, float64) error, value float64) error {
	if err := attr.Validate(value); err != nil {
		return err
	}

	if err := d.checkOpen("set " + attr.Name); err != nil {
		return err
	}

	if err := set(d.handle, value); err != nil {
		return &cmdio.CommunicationError{Op: "set " + attr.Name, Err: err}
	}

	d.cache.Store(attr.Name, value)

	return nil
}

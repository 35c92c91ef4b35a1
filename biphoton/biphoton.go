// Package biphoton drives the Qubitekk QES bi-photon source, the pump-laser
// and crystal-oven controller of the quantum-optics lab kit.
//
// The controller speaks the lab kit's line protocol with a "\r\n" terminator.
// Two firmware revisions exist; see [Profile].
package biphoton

import (
	"strings"

	"github.com/andncl/go-qolab/cmdio"
	"github.com/andncl/go-qolab/serialport"
)

// Temperature-control and laser attributes shared by both profiles.
//
// Note the asymmetric laser command pairs, preserved as the firmware defines
// them: laser power is queried with PLDC? but set with :PLSD, while laser
// diode current is queried with PLCR? but set with :PLDC.
var (
	attrTemperature = cmdio.Attribute{
		Name:      "temperature",
		QueryVerb: "TEMP?",
		Decode:    cmdio.DecodeFloat, // sometimes integer-quantized by the firmware
	}

	attrCurrent = cmdio.Attribute{
		Name:      "current",
		QueryVerb: "CURR?",
		Decode:    cmdio.DecodeFloat,
	}

	attrVoltage = cmdio.Attribute{
		Name:      "voltage",
		QueryVerb: "VOLT?",
		Decode:    cmdio.DecodeFloat,
	}

	attrFaultStatus = cmdio.Attribute{
		Name:      "fault status",
		QueryVerb: "FAUL?",
		Decode:    cmdio.DecodeInt,
	}

	attrHeatingState = cmdio.Attribute{
		Name:      "heating state",
		QueryVerb: "HORC?",
		Decode:    cmdio.DecodeToken,
	}

	attrFirmwareVersion = cmdio.Attribute{
		Name:      "firmware version",
		QueryVerb: "FIRM?",
		Decode:    cmdio.DecodeToken,
	}

	attrLaserPower = cmdio.Attribute{
		Name:      "laser power",
		QueryVerb: "PLDC?",
		SetVerb:   ":PLSD",
		Decode:    cmdio.DecodeInt,
		Domain:    cmdio.Range{Min: 0, Max: 8000},
		Integer:   true,
	}

	attrLaserCurrent = cmdio.Attribute{
		Name:      "laser current",
		QueryVerb: "PLCR?",
		SetVerb:   ":PLDC",
		Decode:    cmdio.DecodeFloat, // readback in mA
		Domain:    cmdio.Range{Min: 20, Max: 120},
		Integer:   true,
	}

	attrLaserStatus = cmdio.Attribute{
		Name:      "laser status",
		QueryVerb: "PLST?",
		Decode:    cmdio.DecodeToken,
	}

	attrLaserID = cmdio.Attribute{
		Name:      "laser id",
		QueryVerb: "PLID?",
		Decode:    cmdio.DecodeToken,
	}

	attrLaserHours = cmdio.Attribute{
		Name:      "laser hours",
		QueryVerb: "PLOH?",
		Decode:    cmdio.DecodeInt,
	}

	attrLaserTurnOns = cmdio.Attribute{
		Name:      "laser turn-ons",
		QueryVerb: "PLTO?",
		Decode:    cmdio.DecodeInt,
	}

	attrLaserInfo = cmdio.Attribute{
		Name:      "laser info",
		QueryVerb: "PLIN?",
		Decode:    cmdio.DecodeToken,
	}

	attrLaserFirmware = cmdio.Attribute{
		Name:      "laser firmware",
		QueryVerb: "PLFM?",
		Decode:    cmdio.DecodeToken,
	}

	attrLaserModel = cmdio.Attribute{
		Name:      "laser model",
		QueryVerb: "PLMD?",
		Decode:    cmdio.DecodeToken,
	}

	attrLaserAccessLevel = cmdio.Attribute{
		Name:      "laser access level",
		QueryVerb: "PLAC?",
		Decode:    cmdio.DecodeInt,
	}
)

// Source is a QES bi-photon source session.
//
// Like every instrument session, a Source supports exactly one logical caller
// at a time; see [cmdio.Session].
type Source struct {
	session  *cmdio.Session
	profile  Profile
	setpoint cmdio.Attribute
}

// New creates a Source over an already-open transport.
//
// The default settle delay is [DefaultCommDelay]; pass cmdio.WithCommDelay to
// override. The source takes ownership of the transport.
func New(transport cmdio.Transport, profile Profile, opts ...cmdio.SessionOption) (*Source, error) {
	opts = append([]cmdio.SessionOption{cmdio.WithCommDelay(DefaultCommDelay)}, opts...)

	cfg, err := cmdio.NewSessionConfig(cmdio.TermCRLF, opts...)
	if err != nil {
		return nil, err
	}

	session, err := cmdio.NewSession(transport, cfg)
	if err != nil {
		return nil, err
	}

	return &Source{
		session: session,
		profile: profile,
		setpoint: cmdio.Attribute{
			Name:      "temperature setpoint",
			QueryVerb: "SETT?",
			SetVerb:   ":SETT",
			Decode:    cmdio.DecodeInt,
			Domain:    profile.SetpointDomain,
			Integer:   true,
		},
	}, nil
}

// Open opens the source on the named serial port with the profile's framing.
func Open(port string, profile Profile, opts ...cmdio.SessionOption) (*Source, error) {
	transport, err := serialport.Open(port, serialport.Config{BaudRate: profile.BaudRate})
	if err != nil {
		return nil, err
	}

	src, err := New(transport, profile, opts...)
	if err != nil {
		_ = transport.Close()

		return nil, err
	}

	return src, nil
}

// Close closes the session and the underlying transport. Idempotent.
func (s *Source) Close() error {
	return s.session.Close()
}

// Profile returns the firmware profile this source was opened with.
func (s *Source) Profile() Profile {
	return s.profile
}

// Session returns the underlying command session, for diagnostics such as
// cached values and metrics.
func (s *Source) Session() *cmdio.Session {
	return s.session
}

// --- Temperature control ---

// Temperature returns the current crystal temperature in °C. Some firmware
// quantizes the readback to integer degrees.
func (s *Source) Temperature() (float64, error) {
	return s.session.GetFloat(&attrTemperature)
}

// TemperatureSetpoint returns the crystal temperature setpoint.
func (s *Source) TemperatureSetpoint() (int, error) {
	return s.session.GetInt(&s.setpoint)
}

// SetTemperatureSetpoint sets the crystal temperature setpoint. The accepted
// domain depends on the profile: [10000, 50000] for QES 2.4, [0, 30000] for
// QES 2.2.
func (s *Source) SetTemperatureSetpoint(value int) error {
	return s.session.SetInt(&s.setpoint, value)
}

// Current returns the current reading from the I/O board in A.
func (s *Source) Current() (float64, error) {
	return s.session.GetFloat(&attrCurrent)
}

// Voltage returns the voltage reading from the I/O board in V.
func (s *Source) Voltage() (float64, error) {
	return s.session.GetFloat(&attrVoltage)
}

// FaultStatus returns 0 (no fault) or 1 (fault in temperature control).
func (s *Source) FaultStatus() (int, error) {
	return s.session.GetInt(&attrFaultStatus)
}

// HeatingState returns "H" (heating) or "C" (cooling).
func (s *Source) HeatingState() (string, error) {
	return s.session.GetToken(&attrHeatingState)
}

// FirmwareVersion returns the controller firmware version.
func (s *Source) FirmwareVersion() (string, error) {
	return s.session.GetToken(&attrFirmwareVersion)
}

// --- Pump laser control ---

// LaserOn reports whether the pump laser is on. The laser is considered on
// when the status reply contains the substring "APC".
func (s *Source) LaserOn() (bool, error) {
	status, err := s.session.GetToken(&attrLaserStatus)
	if err != nil {
		return false, err
	}

	return strings.Contains(strings.ToUpper(status), "APC"), nil
}

// SetLaserOn turns the pump laser on or off.
func (s *Source) SetLaserOn(on bool) error {
	if on {
		return s.session.Exec(":PLON")
	}

	return s.session.Exec(":PLOF")
}

// LaserPower returns the laser optical DAC setting (0–8000).
func (s *Source) LaserPower() (int, error) {
	return s.session.GetInt(&attrLaserPower)
}

// SetLaserPower sets the laser optical power (0–8000).
func (s *Source) SetLaserPower(value int) error {
	return s.session.SetInt(&attrLaserPower, value)
}

// LaserCurrent returns the laser diode current in mA.
func (s *Source) LaserCurrent() (float64, error) {
	return s.session.GetFloat(&attrLaserCurrent)
}

// SetLaserCurrent sets the laser diode current (20–120 mA).
func (s *Source) SetLaserCurrent(value int) error {
	return s.session.SetInt(&attrLaserCurrent, value)
}

// LaserStatus returns the textual laser status (e.g. "APC", "OFF").
func (s *Source) LaserStatus() (string, error) {
	return s.session.GetToken(&attrLaserStatus)
}

// LaserID returns the pump laser ID.
func (s *Source) LaserID() (string, error) {
	return s.session.GetToken(&attrLaserID)
}

// LaserHours returns the operating hours of the pump laser.
func (s *Source) LaserHours() (int, error) {
	return s.session.GetInt(&attrLaserHours)
}

// LaserTurnOns returns the number of times the pump laser has been turned on.
func (s *Source) LaserTurnOns() (int, error) {
	return s.session.GetInt(&attrLaserTurnOns)
}

// LaserInfo returns pump laser information (firmware, serial number, etc.).
func (s *Source) LaserInfo() (string, error) {
	return s.session.GetToken(&attrLaserInfo)
}

// LaserFirmware returns the pump laser firmware version.
func (s *Source) LaserFirmware() (string, error) {
	return s.session.GetToken(&attrLaserFirmware)
}

// LaserModel returns the model number of the pump laser.
func (s *Source) LaserModel() (string, error) {
	return s.session.GetToken(&attrLaserModel)
}

// LaserAccessLevel returns the current laser access level.
func (s *Source) LaserAccessLevel() (int, error) {
	return s.session.GetInt(&attrLaserAccessLevel)
}

// EnableAutostart enables pump laser autostart after power on.
func (s *Source) EnableAutostart() error {
	return s.session.Exec(":PLAO")
}

// DisableAutostart disables pump laser autostart after power on.
func (s *Source) DisableAutostart() error {
	return s.session.Exec(":PLAF")
}

// SaveSettings saves the current pump laser settings.
func (s *Source) SaveSettings() error {
	return s.session.Exec(":PLSV")
}

// ChangeAccessLevel changes the laser access level to 3 (for configuration).
func (s *Source) ChangeAccessLevel() error {
	return s.session.Exec(":PLAC")
}

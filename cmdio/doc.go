// Package cmdio implements the line-oriented request/response command protocol
// shared by the serial-attached instruments of the quantum-optics lab kit
// (bi-photon source, coincidence counter, motor stage).
//
// # Protocol Overview
//
// The protocol is a strictly half-duplex, synchronous exchange of ASCII lines:
// the controller writes a single command line (a verb, an optional argument,
// and a line terminator), pauses for a fixed settle delay to let the firmware
// process it, and — for queries — reads back a single reply line. There is no
// framing beyond the terminator, no length prefix and no checksum; the reply
// shape is trusted per command.
//
// A command line on the wire is:
//
//	<verb>[ <argument>]<terminator>
//
// where the terminator is "\r\n" or "\n" depending on the instrument's
// firmware and must be preserved exactly per instrument.
//
// # Sessions
//
// A [Session] owns one [Transport] (typically a serial port) exclusively and
// exposes the protocol as typed get/set operations driven by declarative
// [Attribute] descriptors: each descriptor names the query verb, the set verb,
// the value domain and the decode rule for one controllable quantity. The
// instrument packages (biphoton, counter, motor) define their command tables
// as Attribute values and share all protocol logic through this package.
//
// Setters validate against the attribute's domain before any bytes are sent;
// a rejected value never reaches the hardware. Getters re-query the hardware
// on every call; the per-session cache of last-observed values exists for
// diagnostics only and is never consulted for correctness.
//
// At most one command may be in flight per session at a time. Sessions are
// not safe for concurrent callers; see the [Session] documentation.
package cmdio

package cmdio

// Line terminators used by the lab-kit instruments. The terminator is fixed
// per instrument firmware and is not negotiated; preserve it exactly.
const (
	// TermCRLF is used by the bi-photon source controllers.
	TermCRLF = "\r\n"

	// TermLF is used by the coincidence counter and the motor stage.
	TermLF = "\n"
)

// encodeCommand builds the wire form of a command line:
//
//	<verb>[ <arg>]<terminator>
//
// The verb is taken literally, including any leading ':' prefix some set
// verbs carry. No validation is performed here; domain checks happen before
// encode. Pure function.
func encodeCommand(verb, arg, terminator string) []byte {
	n := len(verb) + len(terminator)
	if arg != "" {
		n += 1 + len(arg)
	}

	buf := make([]byte, 0, n)
	buf = append(buf, verb...)
	if arg != "" {
		buf = append(buf, ' ')
		buf = append(buf, arg...)
	}
	buf = append(buf, terminator...)

	return buf
}

package biphoton

import (
	"time"

	"github.com/andncl/go-qolab/cmdio"
)

// DefaultCommDelay is the post-write settle delay for the QES controllers.
// The temperature-control firmware needs close to a second to act on a
// command before the reply line is complete.
const DefaultCommDelay = 1 * time.Second

// Profile describes one QES firmware revision. The two shipped revisions
// share most of the command set but differ in baud rate and in the
// temperature setpoint domain, so they are kept as distinct profiles rather
// than unified.
type Profile struct {
	// Name is the model designation, e.g. "QES 2.4".
	Name string

	// BaudRate is the serial line speed for this revision.
	BaudRate int

	// SetpointDomain bounds the crystal temperature setpoint.
	SetpointDomain cmdio.Range
}

// QES24 is the model 2.4 bi-photon source.
var QES24 = Profile{
	Name:           "QES 2.4",
	BaudRate:       115200,
	SetpointDomain: cmdio.Range{Min: 10000, Max: 50000},
}

// QES22 is the model 2.2 bi-photon source. This firmware revision has known
// communication issues; it is kept as its own profile so its differing baud
// rate and setpoint domain are not silently applied to 2.4 hardware.
var QES22 = Profile{
	Name:           "QES 2.2",
	BaudRate:       9600,
	SetpointDomain: cmdio.Range{Min: 0, Max: 30000},
}

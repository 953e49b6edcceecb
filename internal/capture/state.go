package capture

import "fmt"

// State identifies where the controller is in the capture lifecycle.
type State string

const (
	// StateIdle means no capture is active.
	StateIdle State = "idle"
	// StateLiveBarcode means the live feed is up with the barcode decoder
	// attached.
	StateLiveBarcode State = "live-barcode"
	// StateLiveStill means the live feed is up awaiting a manual still
	// trigger.
	StateLiveStill State = "live-still"
	// StateCaptured means a frame or barcode has been acquired but not yet
	// dispatched.
	StateCaptured State = "captured"
	// StateAnalyzing means an analysis request is in flight.
	StateAnalyzing State = "analyzing"
	// StateError means the last capture failed and awaits acknowledgement.
	StateError State = "error"
)

// allowedTransitions enumerates the legal state machine edges.
var allowedTransitions = map[State][]State{
	StateIdle:        {StateLiveBarcode, StateLiveStill, StateCaptured},
	StateLiveBarcode: {StateIdle, StateLiveStill, StateCaptured},
	StateLiveStill:   {StateIdle, StateLiveBarcode, StateCaptured},
	StateCaptured:    {StateAnalyzing, StateIdle},
	StateAnalyzing:   {StateIdle, StateError},
	StateError:       {StateIdle},
}

// CanTransition reports whether moving from one state to another is legal.
func CanTransition(from, to State) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// transitionError describes an illegal state machine edge.
func transitionError(from, to State) error {
	return fmt.Errorf("illegal capture transition %s -> %s", from, to)
}

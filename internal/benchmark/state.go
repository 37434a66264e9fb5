// SPDX-License-Identifier: MPL-2.0

package benchmark

// Session states.
const (
	StateIdle State = iota
	StateWarmingUp
	StateRunning
	StateFinalizing
	StateDone
)

// State is the phase of a benchmark session.
type State int

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWarmingUp:
		return "warming-up"
	case StateRunning:
		return "running"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

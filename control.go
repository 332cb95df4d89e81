package hazel

import "fmt"

// Stop represents the reason for flow control.
type Stop int

// Control flow reasons.
const (
	// NoStop indicates normal execution.
	NoStop Stop = iota
	// ContinueStop should be interpreted by loops as a signal to restart
	// the loop immediately.
	ContinueStop
	// BreakStop should be interpreted by loops as a signal to exit the
	// loop.
	BreakStop
	// ReturnStop should be interpreted by blocks as a signal to exit the
	// current call.
	ReturnStop
	// ExceptionStop should be interpreted by loops, blocks and calls as a
	// signal to exit. The accompanying result is a *Failure.
	ExceptionStop
)

var stopNames = [...]string{"normal", "continue", "break", "return", "exception"}

func (s Stop) String() string {
	if s < NoStop || s > ExceptionStop {
		return fmt.Sprintf("Stop(%d)", int(s))
	}
	return stopNames[s]
}

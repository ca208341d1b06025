package errors

// Action tells the orchestrator what to do after a pipeline stage.
type Action int

const (
	// Proceed continues with the current item
	Proceed Action = iota
	// Skip drops the current item and moves on to the next one
	Skip
	// Stop ends the item loop but keeps and persists what was collected
	Stop
	// Abort ends the run without persisting anything
	Abort
)

func (a Action) String() string {
	switch a {
	case Proceed:
		return "proceed"
	case Skip:
		return "skip"
	case Stop:
		return "stop"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}

// Outcome is the result of one stage (listing, fetch, parse, persist).
// Err is optional context for logging; it never changes Action.
type Outcome struct {
	Action Action
	Err    error
}

// Ok is the outcome of a stage that succeeded
func Ok() Outcome { return Outcome{Action: Proceed} }

// SkipWith drops the item, err may be nil for silent skips
func SkipWith(err error) Outcome { return Outcome{Action: Skip, Err: err} }

// StopWith ends the loop
func StopWith(err error) Outcome { return Outcome{Action: Stop, Err: err} }

// AbortWith ends the run
func AbortWith(err error) Outcome { return Outcome{Action: Abort, Err: err} }

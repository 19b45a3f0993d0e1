package fleet

import "errors"

var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrIslandNotFound    = errors.New("island not found")
	ErrMainGoalNotFound  = errors.New("main goal not found")
	ErrShipNotFound      = errors.New("ship not found")
	ErrCapacityExceeded  = errors.New("maximum resources already deployed for this team")
	ErrInvalidTransition = errors.New("invalid ship state transition")
	ErrRecallDeclined    = errors.New("recall declined")
)

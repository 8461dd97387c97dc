package marstime

// Pulse is one simulation tick as seen by building functions.
// Flags are computed against the previous pulse's time.
type Pulse struct {
	id               int64
	elapsed          float64
	time             MarsTime
	isNewSol         bool
	isNewHalfSol     bool
	isNewIntMillisol bool
}

// NewPulse builds a pulse for tests and replays; the MasterClock is the usual source.
func NewPulse(id int64, elapsed float64, time MarsTime, newSol, newHalfSol, newIntMillisol bool) Pulse {
	return Pulse{
		id:               id,
		elapsed:          elapsed,
		time:             time,
		isNewSol:         newSol,
		isNewHalfSol:     newHalfSol,
		isNewIntMillisol: newIntMillisol,
	}
}

func (p Pulse) ID() int64              { return p.id }
func (p Pulse) Elapsed() float64       { return p.elapsed }
func (p Pulse) MarsTime() MarsTime     { return p.time }
func (p Pulse) IsNewSol() bool         { return p.isNewSol }
func (p Pulse) IsNewHalfSol() bool     { return p.isNewHalfSol }
func (p Pulse) IsNewIntMillisol() bool { return p.isNewIntMillisol }
func (p Pulse) MillisolInt() int       { return p.time.MillisolInt() }

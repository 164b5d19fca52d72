package tasks

// Phase identifies the stage of a migration a progress update refers to.
type Phase string

const (
	PhaseLoad      Phase = "load"
	PhaseFetch     Phase = "fetch"
	PhaseNormalize Phase = "normalize"
	PhaseResolve   Phase = "resolve"
	PhaseWrite     Phase = "write"
	PhasePersist   Phase = "persist"
)

// ProgressUpdate is an observational snapshot emitted while a migration
// runs. Emission is non-blocking, so consumers that fall behind simply
// miss intermediate updates.
type ProgressUpdate struct {
	JobID   string
	Phase   Phase
	Status  string
	Percent float64
	Message string
}

// sendProgress delivers an update without blocking the engine. A nil or
// full channel drops the update.
func sendProgress(ch chan<- ProgressUpdate, update ProgressUpdate) {
	if ch == nil {
		return
	}

	select {
	case ch <- update:
	default:
	}
}

package domain

import "time"

// RunState es el estado del orquestador dentro de una corrida.
type RunState string

const (
	RunIdle              RunState = "idle"
	RunReadingProfile    RunState = "reading_profile"
	RunSynthesizingQuery RunState = "synthesizing_query"
	RunFetching          RunState = "fetching"
	RunDeduplicating     RunState = "deduplicating"
	RunCurating          RunState = "curating"
	RunPersisting        RunState = "persisting"
	RunDone              RunState = "done"
	RunFailed            RunState = "failed"
)

// Terminal indica si el estado cierra la corrida.
func (s RunState) Terminal() bool {
	return s == RunDone || s == RunFailed
}

const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
	TriggerCLI      = "cli"
)

// RunReport resume una corrida del pipeline.
type RunReport struct {
	RunID      string    `json:"run_id"`
	Trigger    string    `json:"trigger"`
	Date       time.Time `json:"date"`
	State      RunState  `json:"state"`
	Tags       []string  `json:"tags,omitempty"`
	Queries    []string  `json:"queries,omitempty"`
	Fetched    int       `json:"fetched"`
	Unique     int       `json:"unique"`
	Selected   int       `json:"selected"`
	Persisted  int       `json:"persisted"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Err        error     `json:"-"`
}

// Duration devuelve cuanto duro la corrida (cero si no termino).
func (r RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

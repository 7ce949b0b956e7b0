package release

// State is where a release operation ended.
type State string

const (
	StateCompleted             State = "completed"
	StateAbortedBeforeMutation State = "aborted"
	StatePartiallyCompleted    State = "partial"
)

// Stage names the phase a release operation reached.
type Stage string

const (
	StageValidate Stage = "validate"
	StageCheck    Stage = "check"
	StageConfirm  Stage = "confirm"
	StageCreate   Stage = "create"
	StageDone     Stage = "done"
)

// Status is the outcome for a single repository.
type Status string

const (
	StatusPlanned Status = "planned"
	StatusCreated Status = "created"
	StatusFailed  Status = "failed"
	// StatusSkipped marks repositories never attempted.
	StatusSkipped Status = "skipped"
)

type Result struct {
	Repo   string  `json:"repo" yaml:"repo"`
	Tag    TagName `json:"tag,omitempty" yaml:"tag,omitempty"`
	Status Status  `json:"status" yaml:"status"`
	Error  string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report describes what a release operation did, one Result per repository
// in scope, in creation order.
type Report struct {
	ID      string   `json:"id" yaml:"id"`
	Version string   `json:"version" yaml:"version"`
	Mode    Mode     `json:"mode" yaml:"mode"`
	State   State    `json:"state" yaml:"state"`
	Stage   Stage    `json:"stage" yaml:"stage"`
	Results []Result `json:"results" yaml:"results"`
}

// WithStatus returns the results carrying status s, in order.
func (r *Report) WithStatus(s Status) []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == s {
			out = append(out, res)
		}
	}
	return out
}

func (r *Report) Created() []Result { return r.WithStatus(StatusCreated) }

func (r *Report) Failed() []Result { return r.WithStatus(StatusFailed) }

// Pending returns results that were planned or skipped but never created.
func (r *Report) Pending() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == StatusPlanned || res.Status == StatusSkipped {
			out = append(out, res)
		}
	}
	return out
}

// Mutated reports whether any tag was written.
func (r *Report) Mutated() bool { return len(r.Created()) > 0 }

func (r *Report) abort(stage Stage) {
	r.State = StateAbortedBeforeMutation
	r.Stage = stage
	for i := range r.Results {
		if r.Results[i].Status == StatusPlanned {
			r.Results[i].Status = StatusSkipped
		}
	}
}

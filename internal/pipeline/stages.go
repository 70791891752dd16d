package pipeline

// State is the processor's position in the run lifecycle. Idle is both the
// resting state before a run and the state an interrupt resets to.
type State int

const (
	StateIdle State = iota
	StateUploading
	StateEnhancing
	StateAnalyzing
	StateSynthesizing
	StateFinalizing
	StateDone
	StateInterrupted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUploading:
		return "uploading"
	case StateEnhancing:
		return "enhancing"
	case StateAnalyzing:
		return "analyzing"
	case StateSynthesizing:
		return "synthesizing"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateInterrupted:
		return "interrupted"
	}
	return "unknown"
}

// stageIndex maps an active state to its slot in the stage array.
func (s State) stageIndex() (int, bool) {
	switch s {
	case StateUploading:
		return 0, true
	case StateEnhancing:
		return 1, true
	case StateAnalyzing:
		return 2, true
	case StateSynthesizing:
		return 3, true
	case StateFinalizing:
		return 4, true
	}
	return 0, false
}

func (s State) terminal() bool {
	return s == StateIdle || s == StateDone || s == StateInterrupted
}

// nextState after a completed stage.
var nextState = map[State]State{
	StateUploading:    StateEnhancing,
	StateEnhancing:    StateAnalyzing,
	StateAnalyzing:    StateSynthesizing,
	StateSynthesizing: StateFinalizing,
}

// Stage is one phase of the run as shown to the client. Progress only
// reaches 100 once the stage's work (including any paired external call)
// has actually resolved.
type Stage struct {
	Name     string `json:"name"`
	Progress int    `json:"progress"`
	Complete bool   `json:"complete"`
	Note     string `json:"note,omitempty"` // diagnostic on degraded stages
}

var stageNames = [5]string{
	"Uploading files",
	"Enhancing transcript",
	"Analyzing content",
	"Generating audio",
	"Finalizing lecture",
}

func freshStages() [5]Stage {
	var stages [5]Stage
	for i := range stages {
		stages[i] = Stage{Name: stageNames[i]}
	}
	return stages
}

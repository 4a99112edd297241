package model

// StepType tells the kind of stage a step is.
type StepType string

const (
	RootStepType     StepType = "root"
	NormalStepType   StepType = "step"
	SplitterStepType StepType = "splitter"
	SinkStepType     StepType = "sink"
)

// StepInfo describes a step independently of the type of data it carries.
type StepInfo struct {
	Type       StepType
	Name       string
	Concurrent int
	BufferSize int
}

var (
	// StartStep is the virtual parent of every root step.
	StartStep = &Step[any]{Details: &StepInfo{Name: "start"}}
	// EndStep is the virtual child of every sink.
	EndStep = &Step[any]{Details: &StepInfo{Name: "end"}}
)

// Step is the output side of a stage. Downstream stages read from Output.
type Step[O any] struct {
	Output  chan O
	Details *StepInfo
}

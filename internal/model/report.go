package model

import "time"

// StepStatus is the terminal state of one generation step.
type StepStatus string

// Step states.
const (
	StepPending StepStatus = "PENDING"
	StepSuccess StepStatus = "SUCCESS"
	StepFailed  StepStatus = "FAILED"
)

// Generation step names.
const (
	StepCategoryAnalysis = "category_analysis"
	StepBrandAnalysis    = "brand_analysis"
	StepFinalAdvice      = "final_advice"
)

// StepOutcome records how a generation step ended.
type StepOutcome struct {
	Step     string     `json:"step"`
	Status   StepStatus `json:"status"`
	Error    string     `json:"error,omitempty"`
	Attempts int        `json:"attempts"`
}

// GraphResult pairs an aggregate view with its explanation.
// Explanation is nil when every attempt failed.
type GraphResult struct {
	Explanation *GraphExplanation `json:"explanation"`
	Graph       Graph             `json:"graph"`
	Outcome     StepOutcome       `json:"outcome"`
}

// Report is everything an advice run produced.
type Report struct {
	GeneratedAt      time.Time             `json:"generated_at"`
	CategoryAnalysis *CategoryDescriptions `json:"category_analysis"`
	BrandAnalysis    *BrandDescriptions    `json:"brand_analysis"`
	FinalAdvice      *FinalAdvice          `json:"final_advice"`
	RunID            string                `json:"run_id"`
	Username         string                `json:"username"`
	Profile          UserProfile           `json:"profile"`
	Purchases        []Purchase            `json:"purchases"`
	Graphs           []GraphResult         `json:"graphs"`
	Steps            []StepOutcome         `json:"steps"`
}

// GraphExplanations returns the explanations that were produced, in graph order.
func (r *Report) GraphExplanations() []GraphExplanation {
	out := make([]GraphExplanation, 0, len(r.Graphs))
	for _, g := range r.Graphs {
		if g.Explanation != nil {
			out = append(out, *g.Explanation)
		}
	}
	return out
}

// FailedSteps returns the steps that exhausted their attempts.
func (r *Report) FailedSteps() []StepOutcome {
	var failed []StepOutcome
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			failed = append(failed, s)
		}
	}
	return failed
}

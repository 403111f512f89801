package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Veraticus/spend-sage/internal/model"
)

// Payload is the machine-readable shape of a finished run. Graph
// explanations keep graph order, with null for those not produced.
type Payload struct {
	CategoryAnalysis  *model.CategoryDescriptions `json:"category_analysis"`
	BrandAnalysis     *model.BrandDescriptions    `json:"brand_analysis"`
	FinalAdvice       *model.FinalAdvice          `json:"final_advice"`
	RunID             string                      `json:"run_id"`
	Username          string                      `json:"username"`
	GraphExplanations []*model.GraphExplanation   `json:"graph_explanations"`
	FailedSteps       []string                    `json:"failed_steps"`
}

// NewPayload builds the payload for report.
func NewPayload(report *model.Report) Payload {
	p := Payload{
		RunID:             report.RunID,
		Username:          report.Username,
		CategoryAnalysis:  report.CategoryAnalysis,
		BrandAnalysis:     report.BrandAnalysis,
		FinalAdvice:       report.FinalAdvice,
		GraphExplanations: make([]*model.GraphExplanation, len(report.Graphs)),
		FailedSteps:       []string{},
	}
	for i, g := range report.Graphs {
		p.GraphExplanations[i] = g.Explanation
	}
	for _, s := range report.FailedSteps() {
		p.FailedSteps = append(p.FailedSteps, s.Step)
	}
	return p
}

// JSONRenderer writes the payload as a single JSON line.
type JSONRenderer struct {
	W io.Writer
}

// Write implements service.ReportWriter.
func (r *JSONRenderer) Write(_ context.Context, report *model.Report) error {
	data, err := json.Marshal(NewPayload(report))
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	data = append(data, '\n')
	_, err = r.W.Write(data)
	return err
}

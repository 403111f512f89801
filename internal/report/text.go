// Package report renders finished advice runs and delivers them to their
// output channels.
package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/spend-sage/internal/cli"
	"github.com/Veraticus/spend-sage/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// Section headings and fallback lines of the text report.
const (
	CategoryHeading = "*** Category-Based Analysis ***"
	BrandHeading    = "*** Brand-Based Analysis ***"
	GraphsHeading   = "*** Graph Explanations ***"
	AdviceHeading   = "*** Final Financial Advice ***"
	ClosingLine     = "Thank you for using our financial advisory service."
)

// TextRenderer writes a report as terminal text. Styled output uses the
// cli palette; plain output is stable for files and tests.
type TextRenderer struct {
	W      io.Writer
	Styled bool
}

// Write implements service.ReportWriter.
func (r *TextRenderer) Write(_ context.Context, report *model.Report) error {
	_, err := io.WriteString(r.W, RenderText(report, r.Styled))
	return err
}

func styleFunc(style lipgloss.Style) func(string) string {
	return func(s string) string { return style.Render(s) }
}

// RenderText renders report in the section order of an advice run.
func RenderText(report *model.Report, styled bool) string {
	plain := func(s string) string { return s }
	heading, name, muted, warn := plain, plain, plain, plain
	if styled {
		heading = styleFunc(cli.TitleStyle.UnsetMargins())
		name = styleFunc(cli.BoldStyle)
		muted = styleFunc(cli.SubtleStyle)
		warn = styleFunc(cli.WarningStyle)
	}

	var b strings.Builder

	b.WriteString(heading(CategoryHeading) + "\n\n")
	if report.CategoryAnalysis != nil {
		for _, c := range report.CategoryAnalysis.Categories {
			b.WriteString(name(c.CategoryName) + "\n")
			writeProducts(&b, c.Products, muted)
		}
	} else {
		b.WriteString(warn("Category-Based Analysis not available due to an error.") + "\n")
	}

	b.WriteString("\n" + heading(BrandHeading) + "\n\n")
	if report.BrandAnalysis != nil {
		for _, br := range report.BrandAnalysis.Brands {
			b.WriteString(name(br.BrandName) + "\n")
			writeProducts(&b, br.Products, muted)
		}
	} else {
		b.WriteString(warn("Brand-Based Analysis not available due to an error.") + "\n")
	}

	b.WriteString("\n" + heading(GraphsHeading) + "\n\n")
	for i, g := range report.Graphs {
		if g.Explanation != nil {
			fmt.Fprintf(&b, "%d. %s\n%s\n\n", i+1, name(g.Explanation.GraphTitle), g.Explanation.Explanation)
		} else {
			fmt.Fprintf(&b, "%d. %s\n\n", i+1, warn("Explanation not available due to an error."))
		}
	}

	b.WriteString(heading(AdviceHeading) + "\n\n")
	if report.FinalAdvice != nil {
		b.WriteString(report.FinalAdvice.Summary + "\n")
		if len(report.FinalAdvice.Recommendations) > 0 {
			b.WriteString("\n" + name("Recommendations") + "\n")
			for i, rec := range report.FinalAdvice.Recommendations {
				fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
			}
		}
	} else {
		b.WriteString(warn("Final Financial Advice not available due to an error.") + "\n")
	}

	b.WriteString("\n" + ClosingLine + "\n")
	return b.String()
}

func writeProducts(b *strings.Builder, products []model.ProductDescription, muted func(string) string) {
	for _, p := range products {
		fmt.Fprintf(b, "  - %s: %s\n", p.ProductName, muted(p.Description))
	}
	b.WriteString("\n")
}

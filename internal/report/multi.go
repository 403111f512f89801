package report

import (
	"context"
	"errors"

	"github.com/Veraticus/spend-sage/internal/model"
	"github.com/Veraticus/spend-sage/internal/service"
)

// MultiWriter delivers a report to every writer, even when some fail.
type MultiWriter []service.ReportWriter

// Write implements service.ReportWriter. Errors from all writers are joined.
func (m MultiWriter) Write(ctx context.Context, report *model.Report) error {
	var errs []error
	for _, w := range m {
		if err := w.Write(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ service.ReportWriter = MultiWriter(nil)

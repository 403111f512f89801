package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spend-sage/internal/advisor"
	"github.com/Veraticus/spend-sage/internal/common"
	"github.com/Veraticus/spend-sage/internal/model"
	"github.com/Veraticus/spend-sage/internal/report"
	"github.com/Veraticus/spend-sage/internal/sheets"
	"github.com/Veraticus/spend-sage/internal/testutil"
)

type failingWriter struct{}

func (failingWriter) Write(context.Context, *model.Report) error {
	return errors.New("disk full")
}

func newTestAdvisor(t *testing.T, summarizer *testutil.FakeSummarizer) *advisor.Advisor {
	t.Helper()
	db := testutil.SetupTestDB(t)
	user := db.SeedUser("alice", []string{"save for a house"}, 1500)
	db.SeedEvents(user,
		testutil.EventSpec{Platform: "Amazon", Title: "Apple AirPods Pro", Price: 249},
		testutil.EventSpec{Platform: "Amazon", Title: "USB-C Cable", Price: 12},
	)

	classifier := testutil.NewFakeClassifier().
		On("Apple AirPods Pro", "Apple", "Electronics").
		On("USB-C Cable", "Anker", "Electronics")

	return advisor.New(db.Storage, classifier, summarizer, advisor.Config{
		Retry: advisor.RetryPolicy{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1},
	}, common.DiscardLogger())
}

func TestExecuteAdvice_WritesReport(t *testing.T) {
	adv := newTestAdvisor(t, testutil.NewFakeSummarizer())

	var out bytes.Buffer
	err := executeAdvice(context.Background(), adv, "alice", &report.TextRenderer{W: &out})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, report.CategoryHeading)
	assert.Contains(t, text, report.AdviceHeading)
	assert.Contains(t, text, report.ClosingLine)
}

func TestExecuteAdvice_FansOutToEveryWriter(t *testing.T) {
	adv := newTestAdvisor(t, testutil.NewFakeSummarizer())

	var out bytes.Buffer
	spreadsheet := sheets.NewMockWriter()
	writers := report.MultiWriter{&report.TextRenderer{W: &out}, spreadsheet}

	require.NoError(t, executeAdvice(context.Background(), adv, "alice", writers))
	spreadsheet.AssertWriteCalled(t, 1)
	calls := spreadsheet.GetWriteCalls()
	require.Len(t, calls, 1)
	assert.NotEmpty(t, out.String())
}

func TestExecuteAdvice_JSONPayload(t *testing.T) {
	adv := newTestAdvisor(t, testutil.NewFakeSummarizer())

	var out bytes.Buffer
	require.NoError(t, executeAdvice(context.Background(), adv, "alice", &report.JSONRenderer{W: &out}))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))
	assert.Equal(t, "alice", payload["username"])
	assert.Contains(t, payload, "category_analysis")
	assert.Contains(t, payload, "final_advice")
}

func TestExecuteAdvice_UnknownUser(t *testing.T) {
	adv := newTestAdvisor(t, testutil.NewFakeSummarizer())

	var out bytes.Buffer
	err := executeAdvice(context.Background(), adv, "bob", &report.TextRenderer{W: &out})
	require.Error(t, err)

	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.UserMessage, `"bob"`)
	assert.ErrorIs(t, err, common.ErrUserNotFound)
	assert.Empty(t, out.String(), "nothing is rendered for a missing user")
}

func TestExecuteAdvice_BlankUsername(t *testing.T) {
	adv := newTestAdvisor(t, testutil.NewFakeSummarizer())

	var out bytes.Buffer
	err := executeAdvice(context.Background(), adv, "  ", &report.TextRenderer{W: &out})

	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.ErrorIs(t, err, common.ErrUserNotFound)
	assert.Empty(t, out.String())
}

func TestExecuteAdvice_PartialReportOnSynthesisFailure(t *testing.T) {
	adv := newTestAdvisor(t, testutil.NewFakeSummarizer().FailAlways(model.StepFinalAdvice))

	var out bytes.Buffer
	err := executeAdvice(context.Background(), adv, "alice", &report.TextRenderer{W: &out})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrGenerationFailed)
	assert.Contains(t, out.String(), report.CategoryHeading, "what exists is still rendered")
}

func TestExecuteAdvice_WriterError(t *testing.T) {
	adv := newTestAdvisor(t, testutil.NewFakeSummarizer())

	err := executeAdvice(context.Background(), adv, "alice", failingWriter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestAdviceConfigFromViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaults()

	viper.Set("advice.max_attempts", 0)
	viper.Set("advice.graph_concurrency", 3)
	viper.Set("advice.max_delay", "10s")
	viper.Set("advice.seed_brands", []string{"Apple, Nike", " "})

	cfg := adviceConfigFromViper()
	assert.Equal(t, 0, cfg.Retry.MaxAttempts, "zero keeps retrying until interrupted")
	assert.Equal(t, 2*time.Second, cfg.Retry.InitialDelay)
	assert.Equal(t, 10*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, 3, cfg.GraphConcurrency)
	assert.Equal(t, []string{"Apple", "Nike"}, cfg.SeedBrands)
	assert.Empty(t, cfg.SeedCategories)
}

func TestReportWriters(t *testing.T) {
	var out bytes.Buffer

	w, err := reportWriters(context.Background(), &out, outputJSON, false, false, common.DiscardLogger())
	require.NoError(t, err)
	multi, ok := w.(report.MultiWriter)
	require.True(t, ok)
	require.Len(t, multi, 1)
	assert.IsType(t, &report.JSONRenderer{}, multi[0])

	w, err = reportWriters(context.Background(), &out, outputText, false, false, common.DiscardLogger())
	require.NoError(t, err)
	assert.IsType(t, &report.TextRenderer{}, w.(report.MultiWriter)[0])
}

func TestReportWriters_ArchiveNeedsConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("ARCHIVE_S3_ENDPOINT", "")

	_, err := reportWriters(context.Background(), &bytes.Buffer{}, outputText, false, true, common.DiscardLogger())
	assert.Error(t, err)
}

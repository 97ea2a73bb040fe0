package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/TeachingLabHQ/tl-form-hub/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeStore struct {
	subs []*models.VendorPaymentSubmission
	err  error
}

func (s *fakeStore) ListSubmissionsInRange(start, end time.Time) ([]*models.VendorPaymentSubmission, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*models.VendorPaymentSubmission
	for _, sub := range s.subs {
		if !sub.SubmissionDate.Before(start) && sub.SubmissionDate.Before(end) {
			out = append(out, sub)
		}
	}
	return out, nil
}

type fakeLogs struct {
	nextID          int64
	rows            []*models.EmailLog
	insertErrFor    map[string]error
	zeroIDFor       map[string]bool
	sentErr         error
	listErr         error
	failedRowsAdded []string
}

func (f *fakeLogs) InsertEmailLog(projectName, email string, month time.Time, status models.EmailLogStatus) (int64, error) {
	key := logKey(projectName, email)
	if err := f.insertErrFor[key]; err != nil {
		return 0, err
	}
	if f.zeroIDFor[key] {
		return 0, nil
	}
	f.nextID++
	f.rows = append(f.rows, &models.EmailLog{
		ID:          f.nextID,
		ProjectName: projectName,
		CFEmail:     email,
		Month:       month,
		Status:      status,
	})
	return f.nextID, nil
}

func (f *fakeLogs) InsertFailedEmailLog(projectName, email string, month time.Time, errorMessage string) error {
	f.nextID++
	f.rows = append(f.rows, &models.EmailLog{
		ID:           f.nextID,
		ProjectName:  projectName,
		CFEmail:      email,
		Month:        month,
		Status:       models.EmailLogFailed,
		ErrorMessage: &errorMessage,
	})
	f.failedRowsAdded = append(f.failedRowsAdded, logKey(projectName, email))
	return nil
}

func (f *fakeLogs) MarkEmailLogSent(id int64, sentAt time.Time) error {
	if f.sentErr != nil {
		return f.sentErr
	}
	for _, r := range f.rows {
		if r.ID == id {
			r.Status = models.EmailLogSent
			t := sentAt
			r.SentAt = &t
		}
	}
	return nil
}

func (f *fakeLogs) MarkEmailLogFailed(id int64, errorMessage string) error {
	for _, r := range f.rows {
		if r.ID == id {
			r.Status = models.EmailLogFailed
			msg := errorMessage
			r.ErrorMessage = &msg
		}
	}
	return nil
}

func (f *fakeLogs) ListSentEmailLogs(month time.Time) ([]*models.EmailLog, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.EmailLog
	for _, r := range f.rows {
		if r.Status == models.EmailLogSent && r.Month.Equal(month) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeLogs) rowsWithStatus(status models.EmailLogStatus) []*models.EmailLog {
	var out []*models.EmailLog
	for _, r := range f.rows {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

type fakeRenderer struct {
	failFor map[string]bool
	calls   []string
}

func (r *fakeRenderer) RenderPDF(projectName string, summary *models.PersonProjectSummary, logID int64) ([]byte, error) {
	key := logKey(projectName, summary.CFEmail)
	r.calls = append(r.calls, key)
	if r.failFor[key] {
		return nil, errors.New("pdf layout engine exploded")
	}
	return []byte("%PDF-1.4 fake"), nil
}

type fakeNotifier struct {
	failFor map[string]bool
	sent    []string
}

func (n *fakeNotifier) SendSummaryEmail(projectName string, summary *models.PersonProjectSummary, pdf []byte) error {
	key := logKey(projectName, summary.CFEmail)
	if n.failFor[key] {
		return errors.New("smtp said no")
	}
	n.sent = append(n.sent, key)
	return nil
}

type fakeTrigger struct {
	calls int
	err   error
}

func (t *fakeTrigger) TriggerNextBatch() error {
	t.calls++
	return t.err
}

type jobHarness struct {
	job      *SummaryJob
	store    *fakeStore
	logs     *fakeLogs
	renderer *fakeRenderer
	notifier *fakeNotifier
	trigger  *fakeTrigger
	sleeps   *int
}

// newJobHarness wires a job with a clock fixed at 2025-02-10, so the
// target month is January 2025.
func newJobHarness(subs []*models.VendorPaymentSubmission) *jobHarness {
	h := &jobHarness{
		store:    &fakeStore{subs: subs},
		logs:     &fakeLogs{},
		renderer: &fakeRenderer{},
		notifier: &fakeNotifier{},
		trigger:  &fakeTrigger{},
		sleeps:   new(int),
	}
	h.job = &SummaryJob{
		Store:      h.store,
		Logs:       h.logs,
		Renderer:   h.renderer,
		Notifier:   h.notifier,
		Trigger:    h.trigger,
		BatchSize:  15,
		EmailDelay: time.Millisecond,
		Now:        func() time.Time { return date("2025-02-10") },
		Sleep:      func(time.Duration) { *h.sleeps += 1 },
	}
	return h
}

func singleEntrySubmissions(n int) []*models.VendorPaymentSubmission {
	var subs []*models.VendorPaymentSubmission
	for i := 0; i < n; i++ {
		subs = append(subs, submission(
			fmt.Sprintf("person%02d@x.org", i), fmt.Sprintf("Person %02d", i), "T1", "2025-01-10",
			entry("Coaching", fmt.Sprintf("Project %02d", i), 2, 50, 100),
		))
	}
	return subs
}

// --- tests ---

func TestPreviousMonthWindow(t *testing.T) {
	t.Run("mid year", func(t *testing.T) {
		start, end := PreviousMonthWindow(time.Date(2025, time.February, 10, 13, 45, 0, 0, time.UTC))
		assert.True(t, start.Equal(date("2025-01-01")))
		assert.True(t, end.Equal(date("2025-02-01")))
	})

	t.Run("january rolls back a year", func(t *testing.T) {
		start, end := PreviousMonthWindow(time.Date(2025, time.January, 6, 2, 5, 0, 0, time.UTC))
		assert.True(t, start.Equal(date("2024-12-01")))
		assert.True(t, end.Equal(date("2025-01-01")))
	})
}

func TestSummaryJob_NoSubmissions(t *testing.T) {
	h := newJobHarness(nil)

	result, err := h.job.Run()
	require.NoError(t, err)
	assert.True(t, result.NoSubmissions)
	assert.Contains(t, result.Message, "No submissions found")
	assert.Empty(t, h.logs.rows)
	assert.Equal(t, 0, h.trigger.calls)
	assert.Empty(t, h.notifier.sent)
}

func TestSummaryJob_SubmissionsOutsideWindowIgnored(t *testing.T) {
	h := newJobHarness([]*models.VendorPaymentSubmission{
		submission("a@x.org", "Alice", "T1", "2025-02-03",
			entry("Coaching", "Alpha", 2, 50, 100)),
	})

	result, err := h.job.Run()
	require.NoError(t, err)
	assert.True(t, result.NoSubmissions)
}

func TestSummaryJob_FetchFailureIsFatal(t *testing.T) {
	h := newJobHarness(nil)
	h.store.err = errors.New("connection refused")

	result, err := h.job.Run()
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch submissions")
}

func TestSummaryJob_HappyPath(t *testing.T) {
	h := newJobHarness(singleEntrySubmissions(3))

	result, err := h.job.Run()
	require.NoError(t, err)

	assert.True(t, result.BatchComplete)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 3, result.TotalAttempted)
	assert.Equal(t, 0, result.Remaining)
	assert.True(t, result.AllComplete)
	assert.False(t, result.NextBatchTriggered)

	assert.Equal(t, 0, h.trigger.calls)
	assert.Len(t, h.notifier.sent, 3)

	sent := h.logs.rowsWithStatus(models.EmailLogSent)
	require.Len(t, sent, 3)
	for _, row := range sent {
		assert.True(t, row.Month.Equal(date("2025-01-01")))
		require.NotNil(t, row.SentAt)
	}

	// Delay runs after every item, success or not.
	assert.Equal(t, 3, *h.sleeps)
}

func TestSummaryJob_BatchBounding(t *testing.T) {
	h := newJobHarness(singleEntrySubmissions(40))

	result, err := h.job.Run()
	require.NoError(t, err)

	assert.Equal(t, 15, result.Processed)
	assert.Equal(t, 15, result.TotalAttempted)
	assert.Equal(t, 25, result.Remaining)
	assert.False(t, result.AllComplete)
	assert.True(t, result.NextBatchTriggered)
	assert.Equal(t, 1, h.trigger.calls)
	assert.Len(t, h.notifier.sent, 15)
	assert.Equal(t, 15, *h.sleeps)
}

func TestSummaryJob_IdempotentAcrossRuns(t *testing.T) {
	h := newJobHarness(singleEntrySubmissions(3))

	first, err := h.job.Run()
	require.NoError(t, err)
	assert.Equal(t, 3, first.Processed)

	second, err := h.job.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)
	assert.Equal(t, 0, second.TotalAttempted)
	assert.Equal(t, 0, second.Remaining)
	assert.True(t, second.AllComplete)
	assert.False(t, second.NextBatchTriggered)

	// Exactly one email and one sent row per (project, person) pair.
	assert.Len(t, h.notifier.sent, 3)
	assert.Len(t, h.logs.rowsWithStatus(models.EmailLogSent), 3)
	assert.Equal(t, 0, h.trigger.calls)
}

func TestSummaryJob_NonResendGuarantee(t *testing.T) {
	h := newJobHarness([]*models.VendorPaymentSubmission{
		submission("a@x.org", "Alice", "T1", "2025-01-05",
			entry("Coaching", "Alpha", 2, 50, 100)),
		submission("a@x.org", "Alice", "T1", "2025-01-20",
			entry("Coaching", "Alpha", 4, 50, 200)),
	})

	// A sent row from an earlier run excludes the pair no matter how many
	// submissions it has this month.
	id, err := h.logs.InsertEmailLog("Alpha", "a@x.org", date("2025-01-01"), models.EmailLogPending)
	require.NoError(t, err)
	require.NoError(t, h.logs.MarkEmailLogSent(id, date("2025-02-06")))

	result, err := h.job.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalAttempted)
	assert.True(t, result.AllComplete)
	assert.Empty(t, h.notifier.sent)
}

func TestSummaryJob_FailedRowDoesNotBlockRetry(t *testing.T) {
	h := newJobHarness(singleEntrySubmissions(1))

	id, err := h.logs.InsertEmailLog("Project 00", "person00@x.org", date("2025-01-01"), models.EmailLogPending)
	require.NoError(t, err)
	require.NoError(t, h.logs.MarkEmailLogFailed(id, "earlier run blew up"))

	result, err := h.job.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Len(t, h.notifier.sent, 1)
}

func TestSummaryJob_PartialFailureIsolation(t *testing.T) {
	h := newJobHarness(singleEntrySubmissions(5))
	h.renderer.failFor = map[string]bool{"Project 02|person02@x.org": true}

	result, err := h.job.Run()
	require.NoError(t, err)

	assert.Equal(t, 4, result.Processed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 5, result.TotalAttempted)

	failedRows := h.logs.rowsWithStatus(models.EmailLogFailed)
	require.Len(t, failedRows, 1)
	assert.Equal(t, "Project 02", failedRows[0].ProjectName)
	require.NotNil(t, failedRows[0].ErrorMessage)
	assert.Contains(t, *failedRows[0].ErrorMessage, "pdf layout engine exploded")

	assert.Len(t, h.logs.rowsWithStatus(models.EmailLogSent), 4)
	// No email goes out with a broken PDF.
	assert.NotContains(t, h.notifier.sent, "Project 02|person02@x.org")
}

func TestSummaryJob_SendFailureMarksRowFailed(t *testing.T) {
	h := newJobHarness(singleEntrySubmissions(2))
	h.notifier.failFor = map[string]bool{"Project 01|person01@x.org": true}

	result, err := h.job.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Failed)

	failedRows := h.logs.rowsWithStatus(models.EmailLogFailed)
	require.Len(t, failedRows, 1)
	assert.Contains(t, *failedRows[0].ErrorMessage, "smtp said no")
}

func TestSummaryJob_PendingInsertFailureSkipsItem(t *testing.T) {
	h := newJobHarness(singleEntrySubmissions(3))
	h.logs.insertErrFor = map[string]error{
		"Project 01|person01@x.org": errors.New("log store down"),
	}

	result, err := h.job.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Failed)

	// Nothing downstream runs for the skipped pair.
	assert.NotContains(t, h.renderer.calls, "Project 01|person01@x.org")
	assert.NotContains(t, h.notifier.sent, "Project 01|person01@x.org")
	// Delay still applies after the failed item.
	assert.Equal(t, 3, *h.sleeps)
}

func TestSummaryJob_SentUpdateFailureStillCountsProcessed(t *testing.T) {
	h := newJobHarness(singleEntrySubmissions(1))
	h.logs.sentErr = errors.New("update timed out")

	result, err := h.job.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Failed)
	assert.Len(t, h.notifier.sent, 1)

	// The row is stuck pending; a later run may resend, which is the
	// accepted trade-off.
	assert.Len(t, h.logs.rowsWithStatus(models.EmailLogPending), 1)
}

func TestSummaryJob_MissingLogIDInsertsFailedRow(t *testing.T) {
	h := newJobHarness(singleEntrySubmissions(1))
	h.logs.zeroIDFor = map[string]bool{"Project 00|person00@x.org": true}
	h.renderer.failFor = map[string]bool{"Project 00|person00@x.org": true}

	result, err := h.job.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, h.logs.failedRowsAdded, "Project 00|person00@x.org")
}

func TestSummaryJob_SentLogFetchFailureProceeds(t *testing.T) {
	h := newJobHarness(singleEntrySubmissions(2))
	h.logs.listErr = errors.New("ledger unreachable")

	result, err := h.job.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Len(t, h.notifier.sent, 2)
}

func TestSummaryJob_TriggerDispatchFailureIsNotFatal(t *testing.T) {
	h := newJobHarness(singleEntrySubmissions(20))
	h.trigger.err = errors.New("missing configuration")

	result, err := h.job.Run()
	require.NoError(t, err)
	assert.Equal(t, 15, result.Processed)
	assert.Equal(t, 5, result.Remaining)
	// The response still reports a pending continuation; the monthly
	// schedule is the fallback.
	assert.True(t, result.NextBatchTriggered)
}

func TestSummaryJob_DefaultBatchSize(t *testing.T) {
	h := newJobHarness(singleEntrySubmissions(20))
	h.job.BatchSize = 0

	result, err := h.job.Run()
	require.NoError(t, err)
	assert.Equal(t, 15, result.TotalAttempted)
	assert.Equal(t, 5, result.Remaining)
}

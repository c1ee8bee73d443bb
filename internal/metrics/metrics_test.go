package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	require.NotNil(t, m.GetCounter())
	return m.GetCounter().GetValue()
}

func histogramCount(t *testing.T, v *prometheus.HistogramVec, labels ...string) uint64 {
	t.Helper()

	metric, ok := v.WithLabelValues(labels...).(prometheus.Metric)
	require.True(t, ok)

	m := &dto.Metric{}
	require.NoError(t, metric.Write(m))
	require.NotNil(t, m.GetHistogram())
	return m.GetHistogram().GetSampleCount()
}

func TestRecordStep(t *testing.T) {
	r, err := NewRecorder()
	require.NoError(t, err)

	r.RecordStep("ingest", nil, 20*time.Millisecond)
	r.RecordStep("ingest", errors.New("boom"), time.Millisecond)
	r.RecordStep("clean", nil, time.Millisecond)

	assert.Equal(t, 1.0, counterValue(t, r.stepCounter.WithLabelValues("ingest", StatusSuccess)))
	assert.Equal(t, 1.0, counterValue(t, r.stepCounter.WithLabelValues("ingest", StatusFailure)))
	assert.Equal(t, uint64(2), histogramCount(t, r.stepDuration, "ingest"))
	assert.Equal(t, uint64(1), histogramCount(t, r.stepDuration, "clean"))
}

func TestStep(t *testing.T) {
	r, err := NewRecorder()
	require.NoError(t, err)

	want := errors.New("write failed")
	got := r.Step("write", func() error { return want })

	assert.ErrorIs(t, got, want)
	assert.Equal(t, 1.0, counterValue(t, r.stepCounter.WithLabelValues("write", StatusFailure)))
}

func TestRecordRowsAndWarnings(t *testing.T) {
	r, err := NewRecorder()
	require.NoError(t, err)

	r.RecordRows(RowsLoaded, 115)
	r.RecordRows(RowsNullDates, 1)
	r.RecordRows(RowsNullRevenue, 0)
	r.RecordWarnings(1)
	r.RecordWarnings(-3)

	assert.Equal(t, 115.0, counterValue(t, r.rowCounter.WithLabelValues(RowsLoaded)))
	assert.Equal(t, 1.0, counterValue(t, r.rowCounter.WithLabelValues(RowsNullDates)))
	assert.Equal(t, 1.0, counterValue(t, r.warnings))
}

func TestRecorders_AreIndependent(t *testing.T) {
	a, err := NewRecorder()
	require.NoError(t, err)
	b, err := NewRecorder()
	require.NoError(t, err)

	a.RecordWarnings(2)
	assert.Equal(t, 0.0, counterValue(t, b.warnings))
}

func TestWriteTextfile(t *testing.T) {
	r, err := NewRecorder()
	require.NoError(t, err)

	r.RecordStep("aggregate", nil, 5*time.Millisecond)
	r.RecordRows(RowsLoaded, 115)
	r.RecordWarnings(1)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `reporter_step_total{status="success",step="aggregate"} 1`)
	assert.Contains(t, text, `reporter_step_duration_seconds_count{step="aggregate"} 1`)
	assert.Contains(t, text, `reporter_rows_total{kind="loaded"} 115`)
	assert.Contains(t, text, "reporter_warnings_total 1")
}

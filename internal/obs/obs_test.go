package obs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerTo_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "json", "info")

	logger.Debug().Msg("hidden")
	logger.Info().Int("items", 2).Msg("cart verified")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, `"items":2`)
	require.Contains(t, out, `"message":"cart verified"`)
}

func TestNewLoggerTo_InvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "json", "loud")

	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics("cartcheck")

	m.ObserveVerification(true)
	m.ObserveVerification(true)
	m.ObserveVerification(false)
	m.ObserveSettlement(300 * time.Millisecond)
	m.ObserveRun("passed")

	require.Equal(t, 2.0, testutil.ToFloat64(m.Verification.WithLabelValues("consistent")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Verification.WithLabelValues("violation")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("passed")))
	require.Equal(t, 1, testutil.CollectAndCount(m.Settlement))
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	a := NewMetrics("cartcheck")
	b := NewMetrics("cartcheck")

	a.ObserveVerification(true)

	require.Equal(t, 0.0, testutil.ToFloat64(b.Verification.WithLabelValues("consistent")))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics("cartcheck")
	m.ObserveVerification(false)
	path := filepath.Join(t.TempDir(), "cartcheck.prom")

	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `cartcheck_cart_verifications_total{result="violation"} 1`)
}

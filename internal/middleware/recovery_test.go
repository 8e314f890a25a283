package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2beens/liftlog/internal/telemetry/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPanicRecovery(t *testing.T) {
	metricsManager := metrics.NewTestManager()

	panickyHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("ouch")
	})

	req := httptest.NewRequest("GET", "/workouts", nil)
	rec := httptest.NewRecorder()

	require.NotPanics(t, func() {
		PanicRecovery(metricsManager)(panickyHandler).ServeHTTP(rec, req)
	})
}

func TestPanicRecovery_NoPanicPassesThrough(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest("GET", "/workouts", nil)
	rec := httptest.NewRecorder()

	PanicRecovery(nil)(handler).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/garment/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.CollectAndCount(RequestDuration)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/garment/abc", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, before+1, testutil.CollectAndCount(RequestDuration))

	out := httptest.NewRecorder()
	Handler().ServeHTTP(out, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := out.Body.String()
	assert.True(t, strings.Contains(body, `route="/garment/{id}"`))
	assert.True(t, strings.Contains(body, `status="404"`))
	assert.Equal(t, float64(0), testutil.ToFloat64(RequestInFlight))
}

func TestDomainCounters(t *testing.T) {
	orders := testutil.ToFloat64(OrdersPlaced)
	sold := testutil.ToFloat64(GarmentsSold)

	OrdersPlaced.Inc()
	GarmentsSold.Add(2)

	assert.Equal(t, orders+1, testutil.ToFloat64(OrdersPlaced))
	assert.Equal(t, sold+2, testutil.ToFloat64(GarmentsSold))
}

func TestTimer(t *testing.T) {
	timer := StartTimer()
	assert.GreaterOrEqual(t, int64(timer.Duration()), int64(0))

	timer.ObserveDB("garment.list")
	assert.GreaterOrEqual(t, testutil.CollectAndCount(DBQueryDuration), 1)
}

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotellisting/hotellisting-api/application/port/outbound"
)

// counterValue returns the value of the counter in family name whose labels
// include all of want.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			matched := true
			for k, v := range want {
				if labels[k] != v {
					matched = false
					break
				}
			}
			if matched {
				return m.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("metric %s %v not found", name, want)
	return 0
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin(true)
	c.RecordLogin(false)
	c.RecordLogin(false)
	c.RecordRegistration("Administrator", true)
	c.RecordRefresh(outbound.RefreshOutcomeIssued)
	c.RecordRefresh(outbound.RefreshOutcomeRaced)

	assert.Equal(t, 1.0, counterValue(t, reg, "hotellisting_account_logins_total", map[string]string{"success": "true"}))
	assert.Equal(t, 2.0, counterValue(t, reg, "hotellisting_account_logins_total", map[string]string{"success": "false"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "hotellisting_account_registrations_total",
		map[string]string{"role": "Administrator", "success": "true"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "hotellisting_account_token_refreshes_total",
		map[string]string{"outcome": "raced"}))
}

func TestCollector_RegistrationRoleLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRegistration("administrator", true)
	c.RecordRegistration("Superuser", false)
	c.RecordRegistration("Root", false)

	assert.Equal(t, 1.0, counterValue(t, reg, "hotellisting_account_registrations_total",
		map[string]string{"role": "Administrator", "success": "true"}))
	assert.Equal(t, 2.0, counterValue(t, reg, "hotellisting_account_registrations_total",
		map[string]string{"role": "invalid", "success": "false"}))

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "hotellisting_account_registrations_total" {
			assert.Len(t, mf.GetMetric(), 2, "unknown role names must not create new series")
		}
	}
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg).RecordLogin(true)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "hotellisting_account_logins_total")
}

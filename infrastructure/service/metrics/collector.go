// Package metrics exposes account outcomes as Prometheus counters.
package metrics

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hotellisting/hotellisting-api/application/port/outbound"
	"github.com/hotellisting/hotellisting-api/domain/entity"
)

// unknownRoleLabel replaces role names the collector was not built with.
const unknownRoleLabel = "invalid"

// Collector implements outbound.AuthMetrics.
type Collector struct {
	logins        *prometheus.CounterVec
	registrations *prometheus.CounterVec
	refreshes     *prometheus.CounterVec

	// roles maps lower-cased role names to their label value.
	roles map[string]string
}

var _ outbound.AuthMetrics = (*Collector)(nil)

// NewCollector registers the account counters with reg. Registrations are
// labelled with one of roles (Administrator and User when none are given).
func NewCollector(reg prometheus.Registerer, roles ...entity.Role) *Collector {
	if len(roles) == 0 {
		roles = []entity.Role{entity.RoleAdministrator, entity.RoleUser}
	}

	c := &Collector{
		roles: make(map[string]string, len(roles)),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hotellisting_account_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"success"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hotellisting_account_registrations_total",
			Help: "Registration attempts by requested role and outcome.",
		}, []string{"role", "success"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hotellisting_account_token_refreshes_total",
			Help: "Refresh token exchanges by outcome.",
		}, []string{"outcome"}),
	}

	for _, r := range roles {
		c.roles[strings.ToLower(r.String())] = r.String()
	}

	reg.MustRegister(c.logins, c.registrations, c.refreshes)
	return c
}

func (c *Collector) RecordLogin(success bool) {
	c.logins.WithLabelValues(strconv.FormatBool(success)).Inc()
}

// RecordRegistration counts a registration. Role is the requested name; names
// outside the known set share the "invalid" label.
func (c *Collector) RecordRegistration(role string, success bool) {
	label, ok := c.roles[strings.ToLower(role)]
	if !ok {
		label = unknownRoleLabel
	}
	c.registrations.WithLabelValues(label, strconv.FormatBool(success)).Inc()
}

func (c *Collector) RecordRefresh(outcome string) {
	c.refreshes.WithLabelValues(outcome).Inc()
}

// Handler serves the scrape endpoint for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

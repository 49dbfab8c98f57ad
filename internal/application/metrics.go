package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maisrole",
		Name:      "auth_attempts_total",
		Help:      "Login attempts by actor kind and outcome.",
	}, []string{"kind", "outcome"})

	guardDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maisrole",
		Name:      "authorization_decisions_total",
		Help:      "Authorization guard decisions by policy and result.",
	}, []string{"policy", "decision"})

	accountWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maisrole",
		Name:      "account_writes_total",
		Help:      "Committed account writes by aggregate and operation.",
	}, []string{"aggregate", "operation"})
)

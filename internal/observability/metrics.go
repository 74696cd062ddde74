package observability

import (
	"expvar"
)

var (
	RequestsTotal          = expvar.NewInt("requests_total")
	RequestErrorsTotal     = expvar.NewInt("request_errors_total")
	BootstrapAttemptsTotal = expvar.NewInt("bootstrap_attempts_total")
	BootstrapFailuresTotal = expvar.NewInt("bootstrap_failures_total")
	CronRunsTotal          = expvar.NewInt("cron_runs_total")
)

func IncRequests() {
	RequestsTotal.Add(1)
}

func IncRequestErrors() {
	RequestErrorsTotal.Add(1)
}

func IncBootstrapAttempts() {
	BootstrapAttemptsTotal.Add(1)
}

func IncBootstrapFailures() {
	BootstrapFailuresTotal.Add(1)
}

func IncCronRuns() {
	CronRunsTotal.Add(1)
}

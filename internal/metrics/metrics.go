package metrics

import (
	"sync"

	"github.com/edumind/auth-service/pkg/telemetry"
)

var (
	// Authentication counters
	LoginsTotal       *telemetry.Counter
	LoginFailures     *telemetry.Counter
	TokenPairsIssued  *telemetry.Counter
	RefreshesTotal    *telemetry.Counter
	RefreshFailures   *telemetry.Counter
	RevocationsTotal  *telemetry.Counter
	VerifyFailures    *telemetry.Counter

	// Histograms
	VerifyDuration *telemetry.Histogram

	initOnce sync.Once
	initErr  error
)

// Init initializes all auth metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	LoginsTotal, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "auth_logins_total",
		Description: "Total number of successful logins",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	LoginFailures, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "auth_login_failures_total",
		Description: "Total number of rejected authentication attempts",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TokenPairsIssued, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "auth_token_pairs_issued_total",
		Description: "Total number of access/refresh token pairs issued",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RefreshesTotal, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "auth_refreshes_total",
		Description: "Total number of successful token refreshes",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RefreshFailures, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "auth_refresh_failures_total",
		Description: "Total number of rejected refresh attempts",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RevocationsTotal, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "auth_revocations_total",
		Description: "Total number of refresh tokens revoked on logout",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	VerifyFailures, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "auth_verify_failures_total",
		Description: "Total number of rejected access token verifications",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	VerifyDuration, err = telemetry.NewHistogram(telemetry.MetricOpts{
		Name:        "auth_verify_duration_ms",
		Description: "Duration of access token verification",
		Unit:        "ms",
	})
	if err != nil {
		return err
	}

	return nil
}

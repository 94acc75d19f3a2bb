package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_RegistersCollectors(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()

	m.CounterRequests.WithLabelValues("GET", "200").Inc()
	m.CounterChallengeResponses.WithLabelValues("active").Inc()
	m.CounterContributions.Add(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterContributions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterRequests.WithLabelValues("GET", "200")))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["duet_test_server_request"])
	assert.True(t, names["duet_test_server_contributions"])
	assert.True(t, names["duet_test_server_challenge_responses"])
}

func TestNewManager_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewManager("duet", "server", reg)
	assert.Panics(t, func() {
		NewManager("duet", "server", reg)
	})
}

func TestNewRegistry_CarriesRuntimeCollectors(t *testing.T) {
	reg := NewRegistry()
	NewManager("duet", "server", reg)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])
	assert.True(t, names["go_build_info"])
}

// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package connect

import (
	"net/http"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/uninett/connect-import-service/internal/domain"
)

// Factory creates one Client per batch. Clients share the HTTP client and the
// circuit breaker but never a session.
type Factory struct {
	config     Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*exchange]
}

// Ensure that Factory implements domain.ConnectClientFactory
var _ domain.ConnectClientFactory = (*Factory)(nil)

// NewFactory creates a client factory.
func NewFactory(config Config, breaker BreakerConfig) *Factory {
	config = withDefaults(config)
	return &Factory{
		config:     config,
		httpClient: newHTTPClient(config),
		breaker:    newBreaker(breaker),
	}
}

// NewClient returns a client that reuses session, or logs in on first use
// when session is empty.
func (f *Factory) NewClient(session string) domain.ConnectClient {
	return newClient(f.config, f.httpClient, f.breaker, session)
}

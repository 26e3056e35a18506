package proxy

import (
	"math/rand"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/williampepple1/classifieds-scraper/internal/config"
)

// Manager handles proxy configuration and rotation
type Manager struct {
	Config *config.ProxyConfig
	last   atomic.Value
}

// NewManager creates a new proxy manager
func NewManager(config *config.ProxyConfig) *Manager {
	return &Manager{
		Config: config,
	}
}

// GetProxyURL returns a proxy URL from the configuration
func (m *Manager) GetProxyURL() (*url.URL, error) {
	if !m.Config.Enabled || len(m.Config.List) == 0 {
		return nil, nil
	}

	// Select a proxy
	proxyStr := m.Config.List[0]
	if m.Config.Rotate && len(m.Config.List) > 1 {
		proxyStr = m.Config.List[rand.Intn(len(m.Config.List))]
	}

	proxyURL, err := url.Parse(proxyStr)
	if err != nil {
		return nil, err
	}

	if m.Config.Auth.Username != "" && m.Config.Auth.Password != "" {
		proxyURL.User = url.UserPassword(m.Config.Auth.Username, m.Config.Auth.Password)
	}

	return proxyURL, nil
}

// ApplyToTransport installs the manager on an HTTP transport. A proxy is picked per request.
func (m *Manager) ApplyToTransport(transport *http.Transport) {
	if !m.Config.Enabled || len(m.Config.List) == 0 {
		return
	}
	transport.Proxy = func(*http.Request) (*url.URL, error) {
		proxyURL, err := m.GetProxyURL()
		if err == nil && proxyURL != nil {
			m.last.Store(proxyURL.Redacted())
		}
		return proxyURL, err
	}
}

// LastUsed returns the proxy picked for the most recent request, if any
func (m *Manager) LastUsed() string {
	if v, ok := m.last.Load().(string); ok {
		return v
	}
	return ""
}

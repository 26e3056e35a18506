package proxy

import (
	"net/http"
	"testing"

	"github.com/williampepple1/classifieds-scraper/internal/config"
)

func TestGetProxyURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ProxyConfig
		want string
	}{
		{"disabled", config.ProxyConfig{Enabled: false, List: []string{"http://p1:8080"}}, ""},
		{"empty list", config.ProxyConfig{Enabled: true}, ""},
		{"single", config.ProxyConfig{Enabled: true, List: []string{"http://p1:8080"}}, "http://p1:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewManager(&tt.cfg).GetProxyURL()
			if err != nil {
				t.Fatalf("GetProxyURL() error = %v", err)
			}
			if tt.want == "" {
				if got != nil {
					t.Errorf("GetProxyURL() = %v, want nil", got)
				}
				return
			}
			if got == nil || got.String() != tt.want {
				t.Errorf("GetProxyURL() = %v, want %s", got, tt.want)
			}
		})
	}
}

func TestGetProxyURLWithAuth(t *testing.T) {
	cfg := config.ProxyConfig{Enabled: true, List: []string{"http://p1:8080"}}
	cfg.Auth.Username = "user"
	cfg.Auth.Password = "secret"

	got, err := NewManager(&cfg).GetProxyURL()
	if err != nil {
		t.Fatal(err)
	}
	if pw, _ := got.User.Password(); got.User.Username() != "user" || pw != "secret" {
		t.Errorf("credentials not applied: %v", got)
	}
}

func TestApplyToTransport(t *testing.T) {
	cfg := config.ProxyConfig{Enabled: true, List: []string{"http://p1:8080"}}
	m := NewManager(&cfg)
	transport := &http.Transport{}
	m.ApplyToTransport(transport)

	if transport.Proxy == nil {
		t.Fatal("proxy func not installed")
	}
	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	u, err := transport.Proxy(req)
	if err != nil || u.Host != "p1:8080" {
		t.Errorf("Proxy() = %v, %v", u, err)
	}
	if m.LastUsed() != "http://p1:8080" {
		t.Errorf("LastUsed() = %q", m.LastUsed())
	}
}

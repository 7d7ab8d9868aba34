package weather

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/yukikurage/growmap/internal/metrics"
)

// Location is a resolved coordinate with the source it came from.
type Location struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city,omitempty"`
	Country string  `json:"country,omitempty"`
	Source  string  `json:"source"`
}

// Location sources
const (
	SourceExplicit = "explicit"
	SourceSession  = "session"
	SourceIP       = "ip"
	SourceFallback = "fallback"
)

// GeoIPProvider resolves a client IP to a coordinate.
type GeoIPProvider interface {
	// Lookup returns the location of ipAddress. An empty or private address
	// asks the provider for the location of the calling server.
	Lookup(ctx context.Context, ipAddress string) (*Location, error)

	// Name returns the provider name for logging and metrics.
	Name() string
}

// IPAPIProvider implements GeoIPProvider using the free ip-api.com service.
type IPAPIProvider struct {
	client  *http.Client
	baseURL string
}

type ipAPIResponse struct {
	Status  string  `json:"status"`  // "success" or "fail"
	Message string  `json:"message"` // set when status is "fail"
	Country string  `json:"country"`
	City    string  `json:"city"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func NewIPAPIProvider(baseURL string, timeout time.Duration) *IPAPIProvider {
	return &IPAPIProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (p *IPAPIProvider) Name() string {
	return "ip-api.com"
}

func (p *IPAPIProvider) Lookup(ctx context.Context, ipAddress string) (*Location, error) {
	result, err := p.query(ctx, ipAddress)
	if err != nil {
		metrics.RecordUpstream(p.Name(), "failure")
		return nil, err
	}

	metrics.RecordUpstream(p.Name(), "success")
	return &Location{
		Lat:     result.Lat,
		Lon:     result.Lon,
		City:    result.City,
		Country: result.Country,
		Source:  SourceIP,
	}, nil
}

func (p *IPAPIProvider) query(ctx context.Context, ipAddress string) (*ipAPIResponse, error) {
	url := p.baseURL
	if ipAddress != "" && !IsPrivateIP(ipAddress) {
		if net.ParseIP(ipAddress) == nil {
			return nil, fmt.Errorf("invalid IP address: %s", ipAddress)
		}
		url += "/" + ipAddress
	}
	url += "?fields=status,message,country,city,lat,lon"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query ip-api.com: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ip-api.com returned status %d", resp.StatusCode)
	}

	var result ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode ip-api.com response: %w", err)
	}

	if result.Status != "success" {
		return nil, fmt.Errorf("ip-api.com lookup failed: %s", result.Message)
	}

	return &result, nil
}

var privateRanges = mustParseCIDRs(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"::1/128",
	"fc00::/7",
	"fe80::/10",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, n, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(err)
		}
		nets = append(nets, n)
	}
	return nets
}

// IsPrivateIP reports whether ipStr is a loopback, link-local or RFC 1918
// address. Such addresses cannot be geolocated.
func IsPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	for _, n := range privateRanges {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

package upstream

import (
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
)

// TransportConfig 는 외부 제공자 호출용 전송 설정이다.
type TransportConfig struct {
	ConnectTimeout time.Duration
	Tracing        bool
}

// NewHTTPClient 는 외부 제공자 호출용 http.Client 를 생성한다.
// 시도별 타임아웃은 Client 가 컨텍스트로 적용하므로 http.Client.Timeout 은 두지 않는다.
func NewHTTPClient(cfg TransportConfig) *http.Client {
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}

	var transport http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if cfg.Tracing {
		transport = otelhttp.NewTransport(transport)
	}

	return &http.Client{Transport: transport}
}

// ProvideHTTPClient 는 설정에서 전송 클라이언트를 구성한다.
func ProvideHTTPClient(cfg *config.Config) *http.Client {
	tracing := false
	if cfg != nil {
		tracing = cfg.Telemetry.Enabled
	}
	return NewHTTPClient(TransportConfig{Tracing: tracing})
}

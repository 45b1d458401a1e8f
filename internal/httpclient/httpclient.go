package httpclient

import (
	"context"
	"net"
	"net/http"
	"time"
)

type Options struct {
	PreferIPv4 bool
	// Timeout bounds the whole exchange. Zero means no deadline.
	Timeout time.Duration
	// ResponseHeaderTimeout bounds the wait for response headers once the
	// request is written. Zero means no limit.
	ResponseHeaderTimeout time.Duration
}

// New builds a client for one upstream. The try-on backend gets a zero
// Timeout since synthesis can take minutes; Telegram gets a bounded one so a
// half-open long poll cannot hang the bot.
func New(opts Options) *http.Client {
	timeout := opts.Timeout
	if timeout < 0 {
		timeout = 0
	}

	dialer := &net.Dialer{
		Timeout:   15 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if opts.PreferIPv4 && network == "tcp" {
				return dialer.DialContext(ctx, "tcp4", addr)
			}
			return dialer.DialContext(ctx, network, addr)
		},
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: max(opts.ResponseHeaderTimeout, 0),
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

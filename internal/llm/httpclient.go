package llm

import (
	"net"
	"net/http"
	"time"
)

// newAPIClient builds an HTTP client tuned for completion APIs, which can
// hold a response open for tens of seconds.
func newAPIClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   5,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Timeout:   120 * time.Second,
		Transport: transport,
	}
}

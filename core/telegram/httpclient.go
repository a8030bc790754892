// Package telegram assembles the bot: transport, middleware chain,
// routing registry and the run loop.
package telegram

import (
	"net"
	"net/http"
	"time"

	coreconfig "github.com/bazumi/promobot/core/config"
)

// newHTTPClient builds the bot API client transport. The overall
// request timeout must exceed the long poll timeout or every poll
// cycle would be cut short.
func newHTTPClient(cfg *coreconfig.Config) *http.Client {
	requestTimeout := time.Duration(cfg.Telegram.RequestTimeoutSeconds) * time.Second
	pollTimeout := time.Duration(cfg.Telegram.LongPollTimeoutSeconds) * time.Second
	if requestTimeout <= pollTimeout {
		requestTimeout = pollTimeout + 5*time.Second
	}

	return &http.Client{
		Timeout: requestTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: requestTimeout,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

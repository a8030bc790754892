// Package netutil classifies Telegram API transport failures for retry
// decisions and log labels.
package netutil

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"strings"
	"syscall"
)

// Class labels a failure category for logging and retry policy.
type Class string

const (
	ClassTimeout   Class = "timeout"
	ClassDNS       Class = "dns"
	ClassDial      Class = "dial"
	ClassTLS       Class = "tls"
	ClassHTTP4xx   Class = "http_4xx"
	ClassHTTP5xx   Class = "http_5xx"
	ClassCancelled Class = "cancelled"
	ClassOther     Class = "other"
)

// Classify maps an error returned by the bot API client to a Class.
func Classify(err error) Class {
	if err == nil {
		return ClassOther
	}
	if errors.Is(err, context.Canceled) {
		return ClassCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ClassDNS
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" {
			return ClassDial
		}
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return ClassDial
	}
	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return ClassTLS
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return ClassTLS
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "tls"), strings.Contains(msg, "certificate"):
		return ClassTLS
	case strings.Contains(msg, "no such host"):
		return ClassDNS
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return ClassTimeout
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "connection reset"):
		return ClassDial
	case strings.Contains(msg, "(500)"), strings.Contains(msg, "(502)"),
		strings.Contains(msg, "(503)"), strings.Contains(msg, "(504)"),
		strings.Contains(msg, "bad gateway"):
		return ClassHTTP5xx
	case strings.Contains(msg, "(400)"), strings.Contains(msg, "(401)"),
		strings.Contains(msg, "(403)"), strings.Contains(msg, "(404)"):
		return ClassHTTP4xx
	}
	return ClassOther
}

// ShouldRetry reports whether a failed API call is worth retrying.
// Client errors (4xx) and context cancellation never are.
func ShouldRetry(err error) bool {
	switch Classify(err) {
	case ClassTimeout, ClassDNS, ClassDial, ClassTLS, ClassHTTP5xx:
		return true
	default:
		return false
	}
}

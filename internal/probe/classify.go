package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/http"
	"os"

	"github.com/hamed0406/pinger/internal/domain"
)

type classification struct {
	errorType domain.ErrorType
	match     func(error) bool
}

// classifications is checked top to bottom; the first match wins and anything
// left over is a network error.
var classifications = []classification{
	{domain.ErrorTimeout, isTimeout},
	{domain.ErrorSSL, isCertificateError},
	{domain.ErrorSSL, isHandshakeError},
}

// Classify maps a transport error onto the network/ssl/timeout taxonomy.
func Classify(err error) domain.ErrorType {
	if err == nil {
		return domain.ErrorNetwork
	}
	for _, c := range classifications {
		if c.match(err) {
			return c.errorType
		}
	}
	return domain.ErrorNetwork
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// isCertificateError covers chain, expiry, hostname and revocation failures
// reported while verifying the peer certificate.
func isCertificateError(err error) bool {
	var (
		verifyErr    *tls.CertificateVerificationError
		unknownAuth  x509.UnknownAuthorityError
		invalidCert  x509.CertificateInvalidError
		hostname     x509.HostnameError
		systemRoots  x509.SystemRootsError
		constraint   x509.ConstraintViolationError
		critical     x509.UnhandledCriticalExtension
		insecureAlgo x509.InsecureAlgorithmError
	)
	switch {
	case errors.As(err, &verifyErr),
		errors.As(err, &unknownAuth),
		errors.As(err, &invalidCert),
		errors.As(err, &hostname),
		errors.As(err, &systemRoots),
		errors.As(err, &constraint),
		errors.As(err, &critical),
		errors.As(err, &insecureAlgo):
		return true
	}
	return false
}

// isHandshakeError covers TLS failures that are not about the certificate:
// alerts from the peer and a peer that does not speak TLS at all.
func isHandshakeError(err error) bool {
	var (
		alert  tls.AlertError
		record tls.RecordHeaderError
	)
	return errors.As(err, &alert) ||
		errors.As(err, &record) ||
		errors.Is(err, http.ErrSchemeMismatch)
}

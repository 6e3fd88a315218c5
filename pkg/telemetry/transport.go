package telemetry

import (
	"crypto/tls"
	"net/http"
)

// newHTTPClient returns the client used to talk to the Pushgateway configured in c.
func newHTTPClient(c Config) *http.Client {
	if !c.Insecure {
		return &http.Client{}
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	// #nosec G402 -- TLS certificate verification is configurable for self-signed Pushgateways.
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}

	return &http.Client{Transport: transport}
}

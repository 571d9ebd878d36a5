package store

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TLSConfig locates the client certificate material for a backend
// connection.
type TLSConfig struct {
	// CertFile and KeyFile hold the client certificate. Both or neither
	// must be set.
	CertFile string
	KeyFile  string

	// CAFile holds the CA bundle used to verify the server. Empty uses the
	// system roots.
	CAFile string

	// ServerName overrides the name used to verify the server certificate.
	ServerName string
}

// clientConfig creates a tls.Config for client connections. A nil receiver
// yields a nil config.
func (c *TLSConfig) clientConfig() (*tls.Config, error) {
	if c == nil {
		return nil, nil
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return nil, fmt.Errorf("TLS cert file and key file must be set together")
	}

	cfg := &tls.Config{
		ServerName: c.ServerName,
		MinVersion: tls.VersionTLS12,
	}

	if c.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	if c.CAFile != "" {
		caData, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caData) {
			return nil, fmt.Errorf("failed to parse CA certificate")
		}
		cfg.RootCAs = pool
	}

	return cfg, nil
}

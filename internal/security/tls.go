// Package security builds TLS settings for the HTTP API.
package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// ServerTLSConfig holds server TLS configuration.
type ServerTLSConfig struct {
	CertFile string // Server certificate file
	KeyFile  string // Server private key file
	// ClientCAFile, when set, requires clients to present a certificate
	// signed by this CA (mTLS).
	ClientCAFile string
}

// LoadServerTLS loads the server certificate and, optionally, the client CA.
func LoadServerTLS(cfg *ServerTLSConfig) (*tls.Config, error) {
	serverCert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load server certificate: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{serverCert},
		MinVersion:   tls.VersionTLS12,
	}

	if cfg.ClientCAFile != "" {
		caCert, err := os.ReadFile(cfg.ClientCAFile)
		if err != nil {
			return nil, fmt.Errorf("read client CA certificate: %w", err)
		}
		caPool := x509.NewCertPool()
		if !caPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to add client CA certificate")
		}
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
		tlsConfig.ClientCAs = caPool
		tlsConfig.MinVersion = tls.VersionTLS13
	}

	return tlsConfig, nil
}

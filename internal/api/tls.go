package api

import (
	"crypto/tls"
	"fmt"
	"os"
)

const (
	EnvTLSCert = "ADVENT_TLS_CERT"
	EnvTLSKey  = "ADVENT_TLS_KEY"
)

// TLSFiles holds TLS certificate paths.
type TLSFiles struct {
	CertFile string
	KeyFile  string
}

// TLSFromEnv returns the configured certificate pair, or nil when either
// variable is unset.
func TLSFromEnv() *TLSFiles {
	certFile := os.Getenv(EnvTLSCert)
	keyFile := os.Getenv(EnvTLSKey)
	if certFile == "" || keyFile == "" {
		return nil
	}
	return &TLSFiles{CertFile: certFile, KeyFile: keyFile}
}

// Enabled returns true if both files are named.
func (t *TLSFiles) Enabled() bool {
	return t != nil && t.CertFile != "" && t.KeyFile != ""
}

// Load reads the key pair. It returns nil, nil when TLS is not enabled.
func (t *TLSFiles) Load() (*tls.Config, error) {
	if !t.Enabled() {
		return nil, nil
	}

	cert, err := tls.LoadX509KeyPair(t.CertFile, t.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load TLS certificate: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

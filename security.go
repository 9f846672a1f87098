// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	"software.sslmate.com/src/go-pkcs12"
)

// Keystore types accepted in SSLKeystoreType.
const (
	KeystorePKCS12 = "PKCS12"
	KeystorePEM    = "PEM"
)

// usesTLS reports whether the security protocol calls for TLS
// (SSL, SASL_SSL).
func usesTLS(protocol string) bool {
	p := strings.ToUpper(protocol)
	return strings.Contains(p, "SSL") || strings.Contains(p, "TLS")
}

// usesSASL reports whether the security protocol calls for SASL
// (SASL_PLAINTEXT, SASL_SSL).
func usesSASL(protocol string) bool {
	return strings.Contains(strings.ToUpper(protocol), "SASL")
}

// tlsConfig builds the TLS configuration for the security protocol, or nil
// when TLS is not in use.
//
// The truststore is applied only when both its location and password are
// set.  The keystore is applied only when the truststore is, and its type,
// location and password are all set.  Without a truststore the system roots
// are used.
func (c *Config) tlsConfig() (*tls.Config, error) {
	if !usesTLS(c.SecurityProtocol) {
		return nil, nil
	}

	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if c.SSLTruststoreLocation == "" || c.SSLTruststorePassword == "" {
		return cfg, nil
	}

	pool, err := loadTruststore(c.SSLTruststoreLocation, c.SSLTruststorePassword)
	if err != nil {
		return nil, err
	}
	cfg.RootCAs = pool

	if c.SSLKeystoreType == "" || c.SSLKeystoreLocation == "" || c.SSLKeystorePassword == "" {
		return cfg, nil
	}

	cert, err := loadKeystore(c.SSLKeystoreType, c.SSLKeystoreLocation, c.SSLKeystorePassword)
	if err != nil {
		return nil, err
	}
	cfg.Certificates = []tls.Certificate{cert}

	return cfg, nil
}

// loadTruststore reads CA certificates from a PEM bundle or a PKCS#12
// truststore.
func loadTruststore(path, password string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrSecurity, fmt.Errorf("reading truststore: %w", err))
	}

	pool := x509.NewCertPool()
	if isPEM(data) {
		if !pool.AppendCertsFromPEM(data) {
			return nil, errors.Join(ErrSecurity, fmt.Errorf("truststore %s holds no PEM certificates", path))
		}
		return pool, nil
	}

	certs, err := pkcs12.DecodeTrustStore(data, password)
	if err != nil {
		return nil, errors.Join(ErrSecurity, fmt.Errorf("decoding truststore %s: %w", path, err))
	}
	for _, cert := range certs {
		pool.AddCert(cert)
	}
	return pool, nil
}

// loadKeystore reads the client certificate chain and private key.
//
// PEM keystores hold the certificates and an unencrypted key in one file;
// the password is not used for them and encrypted keys are rejected.  Use a
// PKCS#12 keystore for a password protected key.
func loadKeystore(typ, path, password string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, errors.Join(ErrSecurity, fmt.Errorf("reading keystore: %w", err))
	}

	switch strings.ToUpper(typ) {
	case KeystorePKCS12, "P12":
		key, leaf, chain, err := pkcs12.DecodeChain(data, password)
		if err != nil {
			return tls.Certificate{}, errors.Join(ErrSecurity, fmt.Errorf("decoding keystore %s: %w", path, err))
		}
		cert := tls.Certificate{
			Certificate: [][]byte{leaf.Raw},
			PrivateKey:  key,
			Leaf:        leaf,
		}
		for _, ca := range chain {
			cert.Certificate = append(cert.Certificate, ca.Raw)
		}
		return cert, nil

	case KeystorePEM:
		if hasEncryptedPEMKey(data) {
			return tls.Certificate{}, errors.Join(ErrSecurity,
				fmt.Errorf("keystore %s holds an encrypted PEM key: use an unencrypted key or a %s keystore", path, KeystorePKCS12))
		}
		cert, err := tls.X509KeyPair(data, data)
		if err != nil {
			return tls.Certificate{}, errors.Join(ErrSecurity, fmt.Errorf("decoding keystore %s: %w", path, err))
		}
		return cert, nil
	}

	return tls.Certificate{}, errors.Join(ErrSecurity,
		fmt.Errorf("keystore type '%s' is not supported: must be '%s' or '%s'", typ, KeystorePKCS12, KeystorePEM))
}

// hasEncryptedPEMKey reports whether data holds a PKCS#8 encrypted key or a
// legacy Proc-Type encrypted key.
func hasEncryptedPEMKey(data []byte) bool {
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return false
		}
		if block.Type == "ENCRYPTED PRIVATE KEY" || strings.Contains(block.Headers["Proc-Type"], "ENCRYPTED") {
			return true
		}
	}
}

func isPEM(data []byte) bool {
	return bytes.Contains(data, []byte("-----BEGIN "))
}

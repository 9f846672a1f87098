// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/jcmturner/gokrb5/v8/client"
	krb5config "github.com/jcmturner/gokrb5/v8/config"
	"github.com/jcmturner/gokrb5/v8/credentials"
	"github.com/jcmturner/gokrb5/v8/keytab"
	"github.com/twmb/franz-go/pkg/sasl"
	"github.com/twmb/franz-go/pkg/sasl/kerberos"
	"github.com/twmb/franz-go/pkg/sasl/plain"
	"github.com/twmb/franz-go/pkg/sasl/scram"
)

// SASL mechanism names accepted in Config.SASLMechanism.
const (
	MechanismGSSAPI      = "GSSAPI"
	MechanismPlain       = "PLAIN"
	MechanismScramSHA256 = "SCRAM-SHA-256"
	MechanismScramSHA512 = "SCRAM-SHA-512"
)

// defaultKrb5ConfPath is read when no Kerberos realm configuration is given.
const defaultKrb5ConfPath = "/etc/krb5.conf"

// SASLOptions carries the SASL related configuration handed to a
// SecurityContext.
type SASLOptions struct {
	// ServiceName is the Kerberos service name of the brokers.
	ServiceName string

	// JAASConfPath is the JAAS configuration holding the KafkaClient login.
	JAASConfPath string

	// Krb5ConfPath is the Kerberos realm configuration.  Optional.
	Krb5ConfPath string

	// Mechanism selects the SASL mechanism.  Optional; by default it
	// follows the login module.
	Mechanism string
}

// SecurityContext turns SASL options into a franz-go SASL mechanism.
// It is consulted once, from Start.
type SecurityContext interface {
	Mechanism(SASLOptions) (sasl.Mechanism, error)
}

// FileSecurityContext reads the JAAS and Kerberos files named in the options
// and builds the mechanism from them.  It does not touch process-wide state.
type FileSecurityContext struct{}

var _ SecurityContext = FileSecurityContext{}

// Mechanism implements SecurityContext.
func (FileSecurityContext) Mechanism(opts SASLOptions) (sasl.Mechanism, error) {
	src, err := os.ReadFile(opts.JAASConfPath)
	if err != nil {
		return nil, errors.Join(ErrSecurity, fmt.Errorf("reading jaas config: %w", err))
	}

	entries, err := parseJAAS(string(src), jaasClientSection)
	if err != nil {
		return nil, errors.Join(ErrSecurity, fmt.Errorf("%s: %w", opts.JAASConfPath, err))
	}

	mech, err := mechanismFor(entries[0], opts)
	if err != nil {
		return nil, errors.Join(ErrSecurity, err)
	}
	return mech, nil
}

// ProcessSecurityContext behaves like FileSecurityContext and additionally
// installs the file paths into process-wide state: KRB5_CONFIG is set in the
// environment and the JAAS path is published through InstalledJAASConfPath.
//
// This mutates state shared by everything in the process, including other
// appenders and Kerberos libraries.  Use it only when another component
// relies on those globals.
type ProcessSecurityContext struct{}

var _ SecurityContext = ProcessSecurityContext{}

var installedJAASConfPath atomic.Value

// InstalledJAASConfPath returns the JAAS path installed by the last
// ProcessSecurityContext, or "".
func InstalledJAASConfPath() string {
	s, _ := installedJAASConfPath.Load().(string)
	return s
}

// Mechanism implements SecurityContext.
func (ProcessSecurityContext) Mechanism(opts SASLOptions) (sasl.Mechanism, error) {
	installedJAASConfPath.Store(opts.JAASConfPath)
	if opts.Krb5ConfPath != "" {
		if err := os.Setenv("KRB5_CONFIG", opts.Krb5ConfPath); err != nil {
			return nil, errors.Join(ErrSecurity, err)
		}
	}
	return FileSecurityContext{}.Mechanism(opts)
}

// mechanismFor builds the SASL mechanism for a JAAS login entry.
func mechanismFor(entry jaasEntry, opts SASLOptions) (sasl.Mechanism, error) {
	mechanism := strings.ToUpper(opts.Mechanism)

	switch entry.moduleName() {
	case "Krb5LoginModule":
		if mechanism != "" && mechanism != MechanismGSSAPI {
			return nil, fmt.Errorf("mechanism %s does not match login module %s", mechanism, entry.Module)
		}
		cl, err := kerberosClient(entry, opts.Krb5ConfPath)
		if err != nil {
			return nil, err
		}
		return kerberos.Auth{
			Client:           cl,
			Service:          opts.ServiceName,
			PersistAfterAuth: true,
		}.AsMechanism(), nil

	case "PlainLoginModule":
		if mechanism != "" && mechanism != MechanismPlain {
			return nil, fmt.Errorf("mechanism %s does not match login module %s", mechanism, entry.Module)
		}
		return plain.Auth{
			User: entry.Options["username"],
			Pass: entry.Options["password"],
		}.AsMechanism(), nil

	case "ScramLoginModule":
		auth := scram.Auth{
			User: entry.Options["username"],
			Pass: entry.Options["password"],
		}
		switch mechanism {
		case MechanismScramSHA256:
			return auth.AsSha256Mechanism(), nil
		case "", MechanismScramSHA512:
			return auth.AsSha512Mechanism(), nil
		}
		return nil, fmt.Errorf("mechanism %s does not match login module %s", mechanism, entry.Module)
	}

	return nil, fmt.Errorf("login module %s is not supported", entry.Module)
}

// kerberosClient logs in with the keytab, ticket cache or password named by
// a Krb5LoginModule entry.
func kerberosClient(entry jaasEntry, krb5ConfPath string) (*client.Client, error) {
	if krb5ConfPath == "" {
		krb5ConfPath = defaultKrb5ConfPath
	}
	cfg, err := krb5config.Load(krb5ConfPath)
	if err != nil {
		return nil, fmt.Errorf("loading kerberos config %s: %w", krb5ConfPath, err)
	}

	principal := entry.Options["principal"]
	user, realm, _ := strings.Cut(principal, "@")
	if realm == "" {
		realm = cfg.LibDefaults.DefaultRealm
	}

	switch {
	case entry.boolOption("useKeyTab"):
		path := entry.Options["keyTab"]
		if path == "" || user == "" {
			return nil, errors.New("useKeyTab requires keyTab and principal")
		}
		kt, err := keytab.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading keytab %s: %w", path, err)
		}
		return client.NewWithKeytab(user, realm, kt, cfg, client.DisablePAFXFAST(true)), nil

	case entry.boolOption("useTicketCache"):
		path := entry.Options["ticketCache"]
		if path == "" {
			path = fmt.Sprintf("/tmp/krb5cc_%d", os.Getuid())
		}
		cc, err := credentials.LoadCCache(path)
		if err != nil {
			return nil, fmt.Errorf("loading ticket cache %s: %w", path, err)
		}
		return client.NewFromCCache(cc, cfg, client.DisablePAFXFAST(true))

	case entry.Options["password"] != "":
		if user == "" {
			return nil, errors.New("password login requires principal")
		}
		return client.NewWithPassword(user, realm, entry.Options["password"], cfg, client.DisablePAFXFAST(true)), nil
	}

	return nil, errors.New("login module Krb5LoginModule needs useKeyTab, useTicketCache or password")
}

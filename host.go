// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
)

// HostResolver resolves the identity of the local host.
type HostResolver interface {
	// Resolve returns the host name and an address of the local host.
	Resolve() (name, address string, err error)
}

// HostResolverFunc adapts a function to the HostResolver interface.
type HostResolverFunc func() (string, string, error)

// Resolve calls f().
func (f HostResolverFunc) Resolve() (string, string, error) {
	return f()
}

// LocalHostResolver resolves the host name from the operating system and the
// address by looking that name up, falling back to the first non-loopback
// interface address.
type LocalHostResolver struct {
	// Testing hooks; nil means the net and os package functions.
	hostname       func() (string, error)
	lookupHost     func(string) ([]string, error)
	interfaceAddrs func() ([]net.Addr, error)
}

var _ HostResolver = (*LocalHostResolver)(nil)

// Resolve implements HostResolver.
func (l *LocalHostResolver) Resolve() (string, string, error) {
	hostname, lookupHost, interfaceAddrs := os.Hostname, net.LookupHost, net.InterfaceAddrs
	if l.hostname != nil {
		hostname = l.hostname
	}
	if l.lookupHost != nil {
		lookupHost = l.lookupHost
	}
	if l.interfaceAddrs != nil {
		interfaceAddrs = l.interfaceAddrs
	}

	name, err := hostname()
	if err != nil {
		return "", "", fmt.Errorf("resolving host name: %w", err)
	}

	addrs, lookupErr := lookupHost(name)
	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && !ip.IsLoopback() {
			return name, ip.String(), nil
		}
	}

	ifaddrs, err := interfaceAddrs()
	if err != nil {
		return "", "", errors.Join(fmt.Errorf("resolving address of %q", name), lookupErr, err)
	}
	for _, a := range ifaddrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			return name, ipnet.IP.String(), nil
		}
	}

	// Only loopback is available; report it rather than failing.
	if len(addrs) > 0 {
		return name, addrs[0], nil
	}

	return "", "", errors.Join(fmt.Errorf("no address found for %q", name), lookupErr)
}

// CachedHostResolver resolves once through Resolver and returns the first
// successful result from then on.  Failures are not cached.
type CachedHostResolver struct {
	Resolver HostResolver

	mu      sync.Mutex
	name    string
	address string
	ok      bool
}

var _ HostResolver = (*CachedHostResolver)(nil)

// Resolve implements HostResolver.
func (c *CachedHostResolver) Resolve() (string, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ok {
		return c.name, c.address, nil
	}

	name, address, err := c.Resolver.Resolve()
	if err != nil {
		return "", "", err
	}

	c.name, c.address, c.ok = name, address, true
	return name, address, nil
}

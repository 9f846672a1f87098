// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalHostResolver(t *testing.T) {
	t.Parallel()

	errNoDNS := errors.New("no such host")
	loopback := &net.IPNet{IP: net.ParseIP("127.0.0.1"), Mask: net.CIDRMask(8, 32)}
	lan := &net.IPNet{IP: net.ParseIP("192.168.1.20"), Mask: net.CIDRMask(24, 32)}

	tests := []struct {
		name       string
		hostname   func() (string, error)
		lookupHost func(string) ([]string, error)
		ifaddrs    func() ([]net.Addr, error)
		wantName   string
		wantAddr   string
		wantErr    bool
	}{
		{
			name:       "resolved by name",
			hostname:   func() (string, error) { return "web-1", nil },
			lookupHost: func(string) ([]string, error) { return []string{"127.0.1.1", "10.0.0.7"}, nil },
			ifaddrs:    func() ([]net.Addr, error) { return nil, errors.New("unused") },
			wantName:   "web-1",
			wantAddr:   "10.0.0.7",
		},
		{
			name:       "falls back to interfaces",
			hostname:   func() (string, error) { return "web-1", nil },
			lookupHost: func(string) ([]string, error) { return nil, errNoDNS },
			ifaddrs:    func() ([]net.Addr, error) { return []net.Addr{loopback, lan}, nil },
			wantName:   "web-1",
			wantAddr:   "192.168.1.20",
		},
		{
			name:       "loopback only",
			hostname:   func() (string, error) { return "web-1", nil },
			lookupHost: func(string) ([]string, error) { return []string{"127.0.0.1"}, nil },
			ifaddrs:    func() ([]net.Addr, error) { return []net.Addr{loopback}, nil },
			wantName:   "web-1",
			wantAddr:   "127.0.0.1",
		},
		{
			name:     "no host name",
			hostname: func() (string, error) { return "", errors.New("uname failed") },
			wantErr:  true,
		},
		{
			name:       "no address",
			hostname:   func() (string, error) { return "web-1", nil },
			lookupHost: func(string) ([]string, error) { return nil, errNoDNS },
			ifaddrs:    func() ([]net.Addr, error) { return []net.Addr{loopback}, nil },
			wantErr:    true,
		},
		{
			name:       "interfaces fail",
			hostname:   func() (string, error) { return "web-1", nil },
			lookupHost: func(string) ([]string, error) { return nil, errNoDNS },
			ifaddrs:    func() ([]net.Addr, error) { return nil, errors.New("netlink") },
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := &LocalHostResolver{
				hostname:       tt.hostname,
				lookupHost:     tt.lookupHost,
				interfaceAddrs: tt.ifaddrs,
			}

			name, addr, err := r.Resolve()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, name)
				assert.Empty(t, addr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantAddr, addr)
		})
	}
}

func TestCachedHostResolver(t *testing.T) {
	t.Parallel()

	calls := 0
	fail := true
	c := &CachedHostResolver{
		Resolver: HostResolverFunc(func() (string, string, error) {
			calls++
			if fail {
				return "", "", errors.New("not yet")
			}
			return "web-1", "10.0.0.7", nil
		}),
	}

	_, _, err := c.Resolve()
	assert.Error(t, err)

	fail = false
	for range 3 {
		name, addr, err := c.Resolve()
		assert.NoError(t, err)
		assert.Equal(t, "web-1", name)
		assert.Equal(t, "10.0.0.7", addr)
	}
	assert.Equal(t, 2, calls)
}

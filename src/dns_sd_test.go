package kissgate

import (
	"net"
	"testing"

	"github.com/brutella/dnssd"
	"github.com/stretchr/testify/assert"
)

func TestBrowseEntryToTNC(t *testing.T) {
	var tnc, ok = browseEntryToTNC(dnssd.BrowseEntry{ //nolint:exhaustruct
		Name: "KISS TNC on shack-pi",
		IPs:  []net.IP{net.ParseIP("fe80::1"), net.ParseIP("192.168.1.20")},
		Port: 8001,
	})

	assert.True(t, ok)
	assert.Equal(t, "KISS TNC on shack-pi", tnc.Name)
	assert.Equal(t, "192.168.1.20:8001", tnc.Addr)
}

func TestBrowseEntryToTNC_IPv6Only(t *testing.T) {
	var tnc, ok = browseEntryToTNC(dnssd.BrowseEntry{ //nolint:exhaustruct
		Name: "v6",
		IPs:  []net.IP{net.ParseIP("2001:db8::5")},
		Port: 8001,
	})

	assert.True(t, ok)
	assert.Equal(t, "[2001:db8::5]:8001", tnc.Addr)
}

func TestBrowseEntryToTNC_Incomplete(t *testing.T) {
	var _, ok = browseEntryToTNC(dnssd.BrowseEntry{Name: "no address", Port: 8001}) //nolint:exhaustruct
	assert.False(t, ok)

	_, ok = browseEntryToTNC(dnssd.BrowseEntry{Name: "no port", IPs: []net.IP{net.ParseIP("10.0.0.1")}}) //nolint:exhaustruct
	assert.False(t, ok)
}

package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:   	Find a KISS over TCP service using DNS-SD
 *
 * Description:
 *
 *     Most people have typed in enough IP addresses and ports by now, and
 *     would rather just select an available TNC that is automatically
 *     discovered on the local network.  Software TNCs announce
 *     themselves as _kiss-tnc._tcp.
 *
 *     This uses the pure-Go github.com/brutella/dnssd package so no
 *     system daemon is needed.
 */

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/brutella/dnssd"
)

const DNS_SD_SERVICE = "_kiss-tnc._tcp"

const DNS_SD_DOMAIN = "local."

var ErrNoKissService = errors.New("no KISS TCP service found")

// DiscoveredTNC is one announced network TNC.
type DiscoveredTNC struct {
	Name string
	Addr string
}

/*-------------------------------------------------------------------
 *
 * Name:        DiscoverKissTCP
 *
 * Purpose:     Browse for network KISS TNCs and return the first one.
 *
 * Inputs:	timeout	- How long to wait for an answer.
 *
 * Returns:	Name and host:port of the first service with an address.
 *
 *--------------------------------------------------------------------*/

func DiscoverKissTCP(ctx context.Context, timeout time.Duration) (DiscoveredTNC, error) {
	var lookupCtx, cancel = context.WithTimeout(ctx, timeout)
	defer cancel()

	var found = make(chan DiscoveredTNC, 1)

	var add = func(e dnssd.BrowseEntry) {
		var tnc, ok = browseEntryToTNC(e)
		if !ok {
			return
		}
		stageLogger("radio").Debug("DNS-SD: found KISS TCP service", "name", tnc.Name, "addr", tnc.Addr)
		select {
		case found <- tnc:
			cancel()
		default:
		}
	}
	var rmv = func(dnssd.BrowseEntry) {}

	var err = dnssd.LookupType(lookupCtx, DNS_SD_SERVICE+"."+DNS_SD_DOMAIN, add, rmv)

	select {
	case tnc := <-found:
		return tnc, nil
	default:
	}

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return DiscoveredTNC{}, err //nolint:exhaustruct
	}
	return DiscoveredTNC{}, ErrNoKissService //nolint:exhaustruct
}

// IPv4 preferred, most TNCs don't listen on IPv6.
func browseEntryToTNC(e dnssd.BrowseEntry) (DiscoveredTNC, bool) {
	var chosen net.IP
	for _, ip := range e.IPs {
		if ip.To4() != nil {
			chosen = ip
			break
		}
		if chosen == nil {
			chosen = ip
		}
	}
	if chosen == nil || e.Port <= 0 {
		return DiscoveredTNC{}, false //nolint:exhaustruct
	}

	return DiscoveredTNC{
		Name: e.Name,
		Addr: net.JoinHostPort(chosen.String(), strconv.Itoa(e.Port)),
	}, true
}

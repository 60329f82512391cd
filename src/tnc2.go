package kissgate

import "strings"

/*------------------------------------------------------------------
 *
 * Name:	FormatTNC2
 *
 * Purpose:	Monitor format used on APRS-IS.
 *
 * Returns:	"SRC>DST,DIGI1,DIGI2*:info"
 *
 *		With no digipeaters there is no trailing comma after the
 *		destination.
 *
 *------------------------------------------------------------------*/

func FormatTNC2(p *Ax25Packet) string {
	var sb strings.Builder

	sb.WriteString(p.Source.String())
	sb.WriteByte('>')
	sb.WriteString(p.Destination.String())
	for _, d := range p.Path() {
		sb.WriteByte(',')
		sb.WriteString(d)
	}
	sb.WriteByte(':')
	sb.WriteString(p.Info())

	return sb.String()
}

// Package discovery lets clients find a relay without knowing its address.
//
// # Multicast Probe
//
// The Responder joins a multicast group (DefaultGroup unless configured) and
// answers the probe
//
//	DISCOVER_SUBPUB_SERVER
//
// with a unicast datagram to the prober:
//
//	SUBPUB_SERVER_AT: <relay-host>:<relay-port>
//
// The probe is compared after trimming surrounding whitespace. Any other
// datagram, including one that is not valid UTF-8, is logged and ignored.
//
// # DNS-SD (_subpub._udp)
//
// The Advertiser optionally registers the relay as an mDNS service so that
// zero-configuration tooling can find it. TXT records:
//
//	id   relay instance ID (a UUID)
//	ver  protocol version, "major.minor"
//
// Browse is the client side of the advertisement.
package discovery

package hive

import (
	"net"
	"strconv"
	"strings"
)

// Address is a node's reachable location, e.g. "10.0.0.12:8080" or
// "http://10.0.0.12:8080". It may or may not carry a scheme.
type Address string

// String returns the Address as a plain string.
func (a Address) String() string {
	return string(a)
}

// HostPort returns the address stripped of any scheme.
func (a Address) HostPort() string {
	return parseAddr(a).hostPort()
}

// WithScheme ensures the returned string carries a scheme, defaulting to
// dflt when the address doesn't already specify one. An empty Address stays
// empty.
func (a Address) WithScheme(dflt string) string {
	if a == "" {
		return ""
	}
	parsed := parseAddr(a)
	if parsed.scheme != "" {
		return a.String()
	}
	return dflt + "://" + parsed.hostPort()
}

type parsedAddr struct {
	scheme string
	host   string
	port   string
}

func (p parsedAddr) hostPort() string {
	if p.port == "" {
		return p.host
	}
	return net.JoinHostPort(p.host, p.port)
}

func parseAddr(a Address) parsedAddr {
	s := string(a)

	var scheme string
	if idx := strings.Index(s, "://"); idx >= 0 {
		scheme = s[:idx]
		s = s[idx+3:]
	}

	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return parsedAddr{scheme: scheme, host: s}
	}
	// Validate port is numeric; if not, treat the whole thing as host.
	if _, err := strconv.Atoi(port); err != nil {
		return parsedAddr{scheme: scheme, host: s}
	}
	return parsedAddr{scheme: scheme, host: host, port: port}
}

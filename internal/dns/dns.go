// Package dns resolves the chat server's hostname with a public-DNS fallback
// for machines whose local resolver is broken or captive.
package dns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// publicDNS are queried in parallel when the system resolver fails.
var publicDNS = []string{
	"1.1.1.1",        // Cloudflare
	"1.0.0.1",        // Cloudflare
	"8.8.8.8",        // Google
	"8.8.4.4",        // Google
	"9.9.9.9",        // Quad9
	"149.112.112.112", // Quad9
}

// Lookup resolves a hostname to an IP address, trying the system resolver
// first and racing public DNS providers as a fallback.
func Lookup(host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return host, nil
	}
	if ip, err := systemLookup(host); err == nil {
		return ip, nil
	}
	return raceLookup(host)
}

func systemLookup(host string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ips, err := new(net.Resolver).LookupHost(ctx, host)
	if err != nil {
		return "", err
	}
	return pick(ips)
}

func raceLookup(host string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	results := make(chan string, len(publicDNS))
	for _, server := range publicDNS {
		go func(server string) {
			ip, err := serverLookup(ctx, host, server)
			if err != nil {
				results <- ""
				return
			}
			results <- ip
		}(server)
	}

	for range publicDNS {
		select {
		case ip := <-results:
			if ip != "" {
				return ip, nil
			}
		case <-ctx.Done():
			return "", fmt.Errorf("dns fallback for %s timed out", host)
		}
	}
	return "", fmt.Errorf("dns fallback for %s: all servers failed", host)
}

func serverLookup(ctx context.Context, host, server string) (string, error) {
	r := &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			d := new(net.Dialer)
			return d.DialContext(ctx, network, net.JoinHostPort(server, "53"))
		},
	}

	ips, err := r.LookupHost(ctx, host)
	if err != nil {
		return "", err
	}
	return pick(ips)
}

// pick prefers IPv4 addresses.
func pick(ips []string) (string, error) {
	if len(ips) == 0 {
		return "", errors.New("no addresses returned")
	}
	for _, ip := range ips {
		if net.ParseIP(ip).To4() != nil {
			return ip, nil
		}
	}
	return ips[0], nil
}

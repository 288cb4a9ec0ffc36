package commands

import (
	"net"
	"testing"
)

func TestListeningURL(t *testing.T) {
	tests := []struct {
		name   string
		addr   net.Addr
		host   string
		secure bool
		want   string
	}{{
		name: "loopback",
		addr: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8080},
		host: "127.0.0.1",
		want: "http://127.0.0.1:8080/mcp",
	}, {
		name: "unspecified host falls back to loopback",
		addr: &net.TCPAddr{IP: net.IPv4zero, Port: 4000},
		host: "0.0.0.0",
		want: "http://127.0.0.1:4000/mcp",
	}, {
		name:   "ipv6 with tls",
		addr:   &net.TCPAddr{IP: net.IPv6loopback, Port: 9443},
		host:   "::1",
		secure: true,
		want:   "https://[::1]:9443/mcp",
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := listeningURL(tt.addr, tt.host, "/mcp", tt.secure); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCommandTree(t *testing.T) {
	root := New()
	for _, name := range []string{"import", "list", "spin", "export", "report", "libraries", "ui", "mcp", "version", "completion"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Fatalf("expected %q command, got %v (%v)", name, c, err)
		}
	}
}

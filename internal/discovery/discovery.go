// Package discovery advertises this server on the local network via mDNS.
// Started only when MUSICSTATION_DISCOVERY_ENABLED is set; a trusted-LAN
// convenience, not auth.
package discovery

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/mdns"
)

// Server wraps an mDNS responder advertising this music-station instance.
type Server struct {
	server *mdns.Server
}

// Info carries the per-instance facts advertised alongside the fixed
// path/version TXT fields, so a browsing client can tell sibling servers
// on the same LAN apart (library size, which optional features are live)
// before ever opening an HTTP connection.
type Info struct {
	TrackCount int
	Features   []string
}

// Start begins advertising the server on the local network via mDNS. The
// service is registered as "_music-station._tcp" with TXT records for
// path, version, and the library snapshot in info.
func Start(port int, serverName string, info Info) (*Server, error) {
	if serverName == "" {
		h, err := os.Hostname()
		if err != nil {
			h = "music-station"
		}
		serverName = h
	}

	txt := []string{
		"path=/",
		"version=0.1.0",
		"tracks=" + strconv.Itoa(info.TrackCount),
	}
	if len(info.Features) > 0 {
		txt = append(txt, "features="+strings.Join(info.Features, ","))
	}

	service, err := mdns.NewMDNSService(
		serverName,
		"_music-station._tcp",
		"",
		"",
		port,
		nil,
		txt,
	)
	if err != nil {
		return nil, fmt.Errorf("mdns service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("mdns server: %w", err)
	}

	slog.Info("mdns advertising", "name", serverName, "service", "_music-station._tcp", "port", port, "tracks", info.TrackCount)
	return &Server{server: server}, nil
}

// Shutdown stops the mDNS responder.
func (s *Server) Shutdown() {
	if s.server != nil {
		s.server.Shutdown()
		slog.Info("mdns stopped")
	}
}

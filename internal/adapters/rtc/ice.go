// Package rtc holds the WebRTC-facing configuration the server hands to
// clients. Media never touches this process; peers connect to each other
// directly using these ICE servers.
package rtc

import (
	"errors"
	"fmt"

	"github.com/pion/stun/v3"
	"github.com/pion/webrtc/v4"
)

const DefaultSTUN = "stun:stun.l.google.com:19302"

var ErrNoURLs = errors.New("ice server without urls")

// ServerConfig is one ICE server entry as it appears in the config file.
type ServerConfig struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

// ICEServers converts and validates the configured servers. An empty list
// falls back to the public Google STUN server.
func ICEServers(cfgs []ServerConfig) ([]webrtc.ICEServer, error) {
	if len(cfgs) == 0 {
		return []webrtc.ICEServer{{URLs: []string{DefaultSTUN}}}, nil
	}
	out := make([]webrtc.ICEServer, 0, len(cfgs))
	for i, c := range cfgs {
		if len(c.URLs) == 0 {
			return nil, fmt.Errorf("ice_servers[%d]: %w", i, ErrNoURLs)
		}
		turn := false
		for _, raw := range c.URLs {
			u, err := stun.ParseURI(raw)
			if err != nil {
				return nil, fmt.Errorf("ice_servers[%d]: %q: %w", i, raw, err)
			}
			if u.Scheme == stun.SchemeTypeTURN || u.Scheme == stun.SchemeTypeTURNS {
				turn = true
			}
		}
		if turn && (c.Username == "" || c.Credential == "") {
			return nil, fmt.Errorf("ice_servers[%d]: turn server needs username and credential", i)
		}
		s := webrtc.ICEServer{URLs: c.URLs, Username: c.Username}
		if c.Credential != "" {
			s.Credential = c.Credential
			s.CredentialType = webrtc.ICECredentialTypePassword
		}
		out = append(out, s)
	}
	return out, nil
}

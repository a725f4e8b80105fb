package backend

import (
	"fmt"
	"net/url"
	"strings"
)

const defaultPath = "/socket.io/"

// ResolveEndpoint turns a host:port, http(s) or ws(s) address into the
// websocket URL of the hub's Engine.IO endpoint.
func ResolveEndpoint(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("empty endpoint")
	}
	switch {
	case strings.HasPrefix(trimmed, "http://"):
		trimmed = "ws://" + strings.TrimPrefix(trimmed, "http://")
	case strings.HasPrefix(trimmed, "https://"):
		trimmed = "wss://" + strings.TrimPrefix(trimmed, "https://")
	case !strings.HasPrefix(trimmed, "ws://") && !strings.HasPrefix(trimmed, "wss://"):
		trimmed = "ws://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse endpoint %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("endpoint %q has no host", raw)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = defaultPath
	}
	q := u.Query()
	q.Set("EIO", "4")
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

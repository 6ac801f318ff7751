package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Destination is a parsed `host:port/remote-path` value.
type Destination struct {
	Host string
	Port int
	Path string
}

// ParseDestination splits raw into host, port and absolute remote path.
func ParseDestination(raw string) (Destination, error) {
	raw = strings.TrimSpace(raw)
	host, rest, ok := strings.Cut(raw, ":")
	if !ok || host == "" {
		return Destination{}, fmt.Errorf("destination %q: expected host:port/path", raw)
	}
	portText, path, ok := strings.Cut(rest, "/")
	if !ok {
		return Destination{}, fmt.Errorf("destination %q: missing remote path", raw)
	}
	port, err := strconv.Atoi(portText)
	if err != nil || port <= 0 || port > 65535 {
		return Destination{}, fmt.Errorf("destination %q: invalid port %q", raw, portText)
	}
	return Destination{Host: host, Port: port, Path: "/" + path}, nil
}

// RemoteDir is the remote directory with a trailing slash so the transfer
// tool copies into it rather than onto it.
func (d Destination) RemoteDir() string {
	if strings.HasSuffix(d.Path, "/") {
		return d.Path
	}
	return d.Path + "/"
}

// Remote is the `host:dir/` argument handed to the transfer tool.
func (d Destination) Remote() string {
	return d.Host + ":" + d.RemoteDir()
}

func (d Destination) String() string {
	return fmt.Sprintf("%s:%d%s", d.Host, d.Port, d.RemoteDir())
}

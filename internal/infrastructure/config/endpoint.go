package config

import (
	"net"
	"strconv"
)

// EndpointConfig is an optional HTTP listener. The Prometheus endpoint and
// the telemetry websocket are both configured this way.
type EndpointConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"` // localhost unless exposed on purpose
	Port    int    `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`
	Path    string `mapstructure:"path" validate:"omitempty,startswith=/"`
}

// Addr is the host:port to listen on
func (e EndpointConfig) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

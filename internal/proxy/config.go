package proxy

import "time"

type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// MaxDimension is the largest width or height accepted in a query
	MaxDimension int
	// CacheMaxAge is advertised to clients and CDNs in Cache-Control
	CacheMaxAge time.Duration
	TLSCertFile string
	TLSKeyFile  string
}

func (c Config) tlsEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/openaegis/darwin-go/session"
)

type fileConfig struct {
	Kind       string `toml:"kind"`
	SocketPath string `toml:"socket_path"`
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	Timeout    string `toml:"timeout"`
	Verbose    bool   `toml:"verbose"`
}

func loadEndpointConfig(path string) (session.Config, error) {
	cfg := session.Config{Kind: session.KindUnix}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return session.Config{}, fmt.Errorf("load endpoint config: %w", err)
	}

	if meta.IsDefined("kind") {
		cfg.Kind = session.Kind(strings.TrimSpace(raw.Kind))
	}

	if meta.IsDefined("socket_path") {
		cfg.SocketPath = strings.TrimSpace(raw.SocketPath)
	}

	if meta.IsDefined("host") {
		cfg.Host = strings.TrimSpace(raw.Host)
	}

	if meta.IsDefined("port") {
		cfg.Port = raw.Port
	}

	if meta.IsDefined("timeout") {
		value := strings.TrimSpace(raw.Timeout)
		if strings.EqualFold(value, "none") {
			cfg.Timeout = session.NoTimeout
		} else {
			d, err := time.ParseDuration(value)
			if err != nil {
				return session.Config{}, fmt.Errorf("parse timeout: %w", err)
			}
			cfg.Timeout = d
		}
	}

	if meta.IsDefined("verbose") {
		cfg.Verbose = raw.Verbose
	}

	if err := cfg.Validate(); err != nil {
		return session.Config{}, err
	}
	return cfg, nil
}

package config

import (
	"strings"
	"testing"
)

func TestNewConfigFile(t *testing.T) {
	for _, cfg := range []*Config{
		nil,
		DefaultConfig(),
		&Config{},
	} {
		s := newConfigFile(cfg)
		if s == "" {
			t.Errorf("newConfigFile(%v) => %q, want non-empty string", cfg, s)
		}
		if !strings.Contains(s, "mailbox_size:") {
			t.Errorf("newConfigFile(%v) is missing the actor section", cfg)
		}
	}
}

package vae

import "testing"

func TestDefaultConf(t *testing.T) {
	if !DefaultConf(784, 20).IsValid() {
		t.Errorf("Expected the default config to be valid")
	}
}

func TestIsValid(t *testing.T) {
	broken := []struct {
		name string
		mod  func(*Config)
	}{
		{"no inputs", func(c *Config) { c.InputDims = 0 }},
		{"no latents", func(c *Config) { c.LatentDims = 0 }},
		{"no recog hidden 1", func(c *Config) { c.RecogHidden1 = 0 }},
		{"no recog hidden 2", func(c *Config) { c.RecogHidden2 = 0 }},
		{"no gener hidden 1", func(c *Config) { c.GenerHidden1 = 0 }},
		{"no gener hidden 2", func(c *Config) { c.GenerHidden2 = 0 }},
		{"no batch", func(c *Config) { c.BatchSize = 0 }},
		{"zero learn rate", func(c *Config) { c.LearnRate = 0 }},
		{"negative learn rate", func(c *Config) { c.LearnRate = -1 }},
	}
	for _, b := range broken {
		conf := DefaultConf(784, 20)
		b.mod(&conf)
		if conf.IsValid() {
			t.Errorf("Expected config with %q to be invalid", b.name)
		}
	}
}

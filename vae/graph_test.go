package vae

import (
	"strings"
	"testing"
)

func TestToDot(t *testing.T) {
	v := New(smallConf())
	if err := v.Init(); err != nil {
		t.Fatalf("%+v", err)
	}
	defer v.Close()

	dot, err := v.ToDot()
	if err != nil {
		t.Fatalf("%+v", err)
	}
	for _, want := range []string{"RecogH1", "RecogH2", "ZMean", "ZLogSigmaSq", "GenerH1", "GenerH2", "XMean", "Epsilon"} {
		if !strings.Contains(dot, want) {
			t.Errorf("dot output is missing %q", want)
		}
	}
}

func TestToDotUninitialized(t *testing.T) {
	v := New(smallConf())
	if _, err := v.ToDot(); err == nil {
		t.Error("ToDot on an uninitialized model should error")
	}
}

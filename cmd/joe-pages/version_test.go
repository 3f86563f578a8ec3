package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/joestump/joe-pages/internal/build"
)

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(out.String(), "joe-pages "+build.Version) {
		t.Errorf("output = %q", out.String())
	}
}

func TestVersionCmd_JSON(t *testing.T) {
	var out bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--json"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	var info build.Info
	if err := json.Unmarshal(out.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Version != build.Version {
		t.Errorf("version = %q, want %q", info.Version, build.Version)
	}
}

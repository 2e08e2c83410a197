package internal

import (
	"context"
	"strings"
	"testing"

	"github.com/starford/scribe/internal/workspace"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestWorkspaceConfig_DefaultsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Workspace.PathPolicy != "strict" {
		t.Errorf("default policy = %q", cfg.Workspace.PathPolicy)
	}
}

func TestWorkspaceConfig_EmptyPolicyDefaultsStrict(t *testing.T) {
	cfg := WorkspaceConfig{Root: "./ws"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty policy should default to strict: %v", err)
	}
	if cfg.PathPolicy != "strict" {
		t.Errorf("policy = %q, want strict", cfg.PathPolicy)
	}
}

func TestWorkspaceConfig_Invalid(t *testing.T) {
	cases := []WorkspaceConfig{
		{Root: ""},
		{Root: "./ws", PathPolicy: "loose"},
		{Root: "./ws", MaxContentBytes: -1},
	}
	for _, c := range cases {
		c := c
		if err := c.Validate(); err == nil {
			t.Errorf("%+v should fail validation", c)
		}
	}
}

func TestWorkspaceConfig_WriterOptions(t *testing.T) {
	cfg := WorkspaceConfig{Root: t.TempDir(), PathPolicy: "legacy", AtomicOverwrite: true, MaxContentBytes: 3}
	opts, err := cfg.WriterOptions()
	if err != nil {
		t.Fatal(err)
	}
	w, err := workspace.NewWriter(cfg.Root, opts...)
	if err != nil {
		t.Fatal(err)
	}
	if w.Policy() != workspace.PolicyLegacy {
		t.Errorf("policy = %q", w.Policy())
	}
	out := w.Save(context.Background(), workspace.Request{FilePath: "a.txt", Content: "four"})
	if out.Kind() != workspace.KindContentTooLarge {
		t.Errorf("kind = %v, want content_too_large", out.Kind())
	}
}

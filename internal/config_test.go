package internal

import (
	"strings"
	"testing"
	"time"
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

func TestContentConfig_DefaultsExtension(t *testing.T) {
	cfg := ContentConfig{Path: "./content"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Extension != ".md" {
		t.Errorf("extension = %q, want .md", cfg.Extension)
	}
}

func TestContentConfig_RequiresPath(t *testing.T) {
	cfg := ContentConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty content path should fail")
	}
}

func TestContentConfig_InvalidExtension(t *testing.T) {
	cfg := ContentConfig{Path: "x", Extension: "md"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("extension without dot should fail")
	}
}

func TestSiteConfig_Defaults(t *testing.T) {
	cfg := SiteConfig{URL: "https://example.com"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.BasePath != "/content" || cfg.PostPath != "/blog" {
		t.Errorf("paths = %q, %q", cfg.BasePath, cfg.PostPath)
	}
}

func TestSiteConfig_InvalidValues(t *testing.T) {
	for _, cfg := range []SiteConfig{
		{URL: "not a url"},
		{BasePath: "content"},
		{PostPath: "/blog?x=1"},
	} {
		if err := cfg.Validate(); err == nil {
			t.Errorf("%+v should fail validation", cfg)
		}
	}
}

func TestWatchConfig_NegativeDebounce(t *testing.T) {
	cfg := WatchConfig{Enabled: true, Debounce: -time.Second}
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative debounce should fail")
	}
}

func TestCacheConfig_Enabled(t *testing.T) {
	if (&CacheConfig{}).Enabled() {
		t.Error("empty path should disable the cache")
	}
	if !(&CacheConfig{Path: "x.db"}).Enabled() {
		t.Error("non-empty path should enable the cache")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}
}

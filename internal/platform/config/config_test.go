package config

import (
	"testing"
	"time"

	kit "hashvault/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	root := New()
	api := root.Prefix("HV_API_")
	if got := api.key("PORT"); got != "HV_API_PORT" {
		t.Fatalf("key() = %q, want %q", got, "HV_API_PORT")
	}
	// nested prefix
	apiLog := api.Prefix("LOG_")
	if got := apiLog.key("LEVEL"); got != "HV_API_LOG_LEVEL" {
		t.Fatalf("nested key() = %q, want %q", got, "HV_API_LOG_LEVEL")
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("APP_")
	t.Setenv("APP_NAME", "  hashvault ")
	got := c.MustString("NAME")
	if got != "hashvault" {
		t.Fatalf("MustString = %q, want %q", got, "hashvault")
	}

	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMustURL(t *testing.T) {
	c := New().Prefix("U_")
	t.Setenv("U_BASE", "https://example.test/v2")
	u := c.MustURL("BASE")
	if u.Host != "example.test" {
		t.Fatalf("MustURL host = %q", u.Host)
	}
	t.Setenv("U_REL", "not-a-url")
	kit.MustPanic(t, func() { _ = c.MustURL("REL") })
	kit.MustPanic(t, func() { _ = c.MustURL("MISSING") })
}

func TestRequire(t *testing.T) {
	c := New().Prefix("R_")
	t.Setenv("R_A", "1")
	t.Setenv("R_B", "2")
	c.Require("A", "B")
	kit.MustPanic(t, func() { c.Require("A", "C") })
}

func TestMayString(t *testing.T) {
	c := New().Prefix("M_")
	if got := c.MayString("MISSING", "fallback"); got != "fallback" {
		t.Fatalf("MayString default = %q", got)
	}
	t.Setenv("M_SET", " value ")
	if got := c.MayString("SET", "fallback"); got != "value" {
		t.Fatalf("MayString = %q", got)
	}
}

func TestMayInt(t *testing.T) {
	c := New().Prefix("I_")
	if got := c.MayInt("MISSING", 7); got != 7 {
		t.Fatalf("MayInt default = %d", got)
	}
	t.Setenv("I_N", " 42 ")
	if got := c.MayInt("N", 7); got != 42 {
		t.Fatalf("MayInt = %d", got)
	}
	// invalid falls back instead of panicking
	t.Setenv("I_BAD", "x")
	if got := c.MayInt("BAD", 7); got != 7 {
		t.Fatalf("MayInt invalid = %d, want default", got)
	}
}

func TestMayBool(t *testing.T) {
	c := New().Prefix("B_")
	if c.MayBool("MISSING", false) {
		t.Fatalf("MayBool default should be false")
	}
	t.Setenv("B_ON", "true")
	if !c.MayBool("ON", false) {
		t.Fatalf("MayBool should read true")
	}
	t.Setenv("B_BAD", "notabool")
	if !c.MayBool("BAD", true) {
		t.Fatalf("MayBool invalid should keep default")
	}
}

func TestMayDuration(t *testing.T) {
	c := New().Prefix("D_")
	if got := c.MayDuration("MISSING", time.Second); got != time.Second {
		t.Fatalf("MayDuration default = %v", got)
	}
	t.Setenv("D_T", "250ms")
	if got := c.MayDuration("T", time.Second); got != 250*time.Millisecond {
		t.Fatalf("MayDuration = %v", got)
	}
	t.Setenv("D_BAD", "soon")
	if got := c.MayDuration("BAD", time.Second); got != time.Second {
		t.Fatalf("MayDuration invalid = %v, want default", got)
	}
}

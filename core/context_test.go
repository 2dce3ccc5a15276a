package core

import (
	"sync"
	"testing"
)

func TestContext_SetGetDelete(t *testing.T) {
	c := NewContext()

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected missing key to report absent")
	}
	if c.GetString("missing") != "" || c.GetInt("missing") != 0 || c.GetBool("missing") {
		t.Fatal("expected zero defaults for missing keys")
	}

	c.Set("name", "alice")
	c.Set("age", 42)
	c.Set("score", 0.5)
	c.Set("flag", true)

	if got := c.GetString("name"); got != "alice" {
		t.Fatalf("GetString: got %q", got)
	}
	if got := c.GetInt("age"); got != 42 {
		t.Fatalf("GetInt: got %d", got)
	}
	if got := c.GetFloat("score"); got != 0.5 {
		t.Fatalf("GetFloat: got %v", got)
	}
	if !c.GetBool("flag") {
		t.Fatal("GetBool: expected true")
	}
	if !c.Contains("name") || c.Len() != 4 {
		t.Fatalf("Contains/Len mismatch: %v", c.Keys())
	}

	c.Delete("name")
	if c.Contains("name") {
		t.Fatal("expected key removed")
	}
	c.Delete("name") // deleting again is a no-op
}

func TestContext_TypedMismatchReturnsZero(t *testing.T) {
	c := NewContext()
	c.Set("age", "not an int")
	if got := c.GetInt("age"); got != 0 {
		t.Fatalf("expected zero on type mismatch, got %d", got)
	}
	if _, ok := Value[int](c, "age"); ok {
		t.Fatal("Value should report false on type mismatch")
	}
	if v, ok := Value[string](c, "age"); !ok || v != "not an int" {
		t.Fatalf("Value[string] failed: %v %v", v, ok)
	}
}

func TestContext_CloneDiverges(t *testing.T) {
	c := NewContext()
	c.Set("k", "v")
	clone := c.Clone()
	clone.Set("k", "other")
	clone.Set("extra", 1)

	if got := c.GetString("k"); got != "v" {
		t.Fatalf("original mutated through clone: %q", got)
	}
	if c.Contains("extra") {
		t.Fatal("original gained key from clone")
	}
}

func TestContext_ConcurrentAccess(t *testing.T) {
	c := NewContext()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("k", n)
				c.Get("k")
				c.Keys()
			}
		}(i)
	}
	wg.Wait()
}

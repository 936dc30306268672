package cache

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestKey_ContentAddressed(t *testing.T) {
	a := Key("AGREEMENT between the parties")
	b := Key("AGREEMENT between the parties")
	c := Key("AGREEMENT between other parties")

	if a != b {
		t.Error("identical content must yield identical keys")
	}
	if a == c {
		t.Error("different content must yield different keys")
	}
	if !strings.HasPrefix(a, "lexmeta:v1:") {
		t.Errorf("key missing version prefix: %s", a)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("expected miss for unknown key")
	}

	if err := c.Set("k", []byte("record"), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "record" {
		t.Errorf("expected hit with stored value, got %q found=%v", val, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expected miss after delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	if _, found := c.Get("k"); found {
		t.Error("expected entry to expire")
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	if err := c.Set("doc-hash", []byte(`{"invocation_id": "abc"}`), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	val, found := c.Get("doc-hash")
	if !found || string(val) != `{"invocation_id": "abc"}` {
		t.Errorf("expected hit, got %q found=%v", val, found)
	}

	// Survives a new instance over the same directory
	c2 := NewDiskCache(dir, time.Minute)
	if _, found := c2.Get("doc-hash"); !found {
		t.Error("expected disk entry to survive reopening")
	}

	if err := c.Delete("doc-hash"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, found := c.Get("doc-hash"); found {
		t.Error("expected miss after delete")
	}
}

func TestDiskCache_ExpiredEntryRemoved(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	_ = c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("expected expired entry to miss")
	}
	// The file itself is removed on the expired read
	if _, err := filepath.Glob(filepath.Join(dir, "*.cache")); err != nil {
		t.Fatal(err)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "*.cache"))
	if len(matches) != 0 {
		t.Errorf("expected expired file removed, found %v", matches)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()

	// Seed the disk layer only
	disk := NewDiskCache(dir, time.Minute)
	_ = disk.Set("k", []byte("v"), time.Minute)

	layered := NewLayeredCache(time.Minute, dir, time.Minute)
	val, found := layered.Get("k")
	if !found || string(val) != "v" {
		t.Fatalf("expected disk hit through the layered cache, got %q found=%v", val, found)
	}

	// After promotion, a memory hit serves even if the disk entry goes
	if err := disk.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, found := layered.Get("k"); !found {
		t.Error("expected promoted entry in the memory layer")
	}
}

func TestLayeredCache_SetWritesBothLayers(t *testing.T) {
	dir := t.TempDir()
	layered := NewLayeredCache(time.Minute, dir, time.Minute)

	if err := layered.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	disk := NewDiskCache(dir, time.Minute)
	if _, found := disk.Get("k"); !found {
		t.Error("expected entry in the disk layer")
	}
}

package collections

import "testing"

func TestDefineAndGet(t *testing.T) {
	registry := NewRegistry()

	registry.Define("avatar").SingleFile().UseDisk("s3").OnlyFor("user")

	def, ok := registry.Get("avatar")
	if !ok {
		t.Fatal("Expected collection to be registered")
	}
	if !def.IsSingleFile {
		t.Error("Expected single file collection")
	}
	if def.Disk != "s3" {
		t.Errorf("Expected disk s3, got %s", def.Disk)
	}
	if def.CuratorType != "user" {
		t.Errorf("Expected curator type user, got %s", def.CuratorType)
	}
	if def.AnonymousAllowed {
		t.Error("Expected anonymous to be disallowed by default")
	}
}

func TestGetUnregistered(t *testing.T) {
	registry := NewRegistry()

	if _, ok := registry.Get("missing"); ok {
		t.Fatal("Expected lookup of unregistered collection to report absence")
	}
	if registry.Has("missing") {
		t.Fatal("Expected Has to report absence")
	}
}

func TestDefineOverwrites(t *testing.T) {
	registry := NewRegistry()

	registry.Define("gallery").SingleFile()
	registry.Define("gallery")

	def, ok := registry.Get("gallery")
	if !ok {
		t.Fatal("Expected collection to be registered")
	}
	if def.IsSingleFile {
		t.Error("Expected redefinition to replace the prior definition entirely")
	}
}

func TestAllReturnsSnapshot(t *testing.T) {
	registry := NewRegistry()
	registry.Define("a")
	registry.Define("b")

	snapshot := registry.All()
	if len(snapshot) != 2 {
		t.Fatalf("Expected 2 definitions, got %d", len(snapshot))
	}

	// Mutating the snapshot must not affect the registry
	delete(snapshot, "a")
	if !registry.Has("a") {
		t.Error("Expected registry to be unaffected by snapshot mutation")
	}
}

func TestClear(t *testing.T) {
	registry := NewRegistry()
	registry.Define("a")

	registry.Clear()

	if registry.Has("a") {
		t.Error("Expected registry to be empty after Clear")
	}
	if len(registry.All()) != 0 {
		t.Error("Expected no definitions after Clear")
	}
}

package events

import (
	"strings"
	"testing"
)

func TestGenerateIDShape(t *testing.T) {
	seen := map[string]bool{}
	for range 500 {
		id := GenerateID()
		if !strings.HasPrefix(id, DefaultIDPrefix) {
			t.Fatalf("expected prefix %q, got %q", DefaultIDPrefix, id)
		}
		if len(id) != DefaultIDLength {
			t.Fatalf("expected length %d, got %d (%q)", DefaultIDLength, len(id), id)
		}
		for _, c := range id[len(DefaultIDPrefix):] {
			if !strings.ContainsRune(idAlphabet, c) {
				t.Fatalf("identifier %q contains %q outside the alphabet", id, c)
			}
		}
		if seen[id] {
			t.Fatalf("identifier %q generated twice", id)
		}
		seen[id] = true
	}
}

func TestGenerateIDWithCustomPrefixAndLength(t *testing.T) {
	id := GenerateIDWith("msg_", 32)
	if !strings.HasPrefix(id, "msg_") {
		t.Fatalf("expected prefix msg_, got %q", id)
	}
	if len(id) != 32 {
		t.Fatalf("expected length 32, got %d", len(id))
	}
}

func TestGenerateIDWithPrefixLongerThanLength(t *testing.T) {
	if id := GenerateIDWith("overlong_", 4); id != "overlong_" {
		t.Fatalf("expected the bare prefix, got %q", id)
	}
}

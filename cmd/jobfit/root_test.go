package main

import (
	"context"
	"testing"

	"github.com/amishk599/jobfit/internal/config"
	"github.com/amishk599/jobfit/internal/store"
)

func TestOpenStore(t *testing.T) {
	st, err := openStore(context.Background(), config.StorageConfig{Backend: "memory"})
	if err != nil {
		t.Fatalf("openStore(memory): %v", err)
	}
	if _, ok := st.(*store.MemoryStore); !ok {
		t.Errorf("got %T, want *store.MemoryStore", st)
	}

	st, err = openStore(context.Background(), config.StorageConfig{Backend: "sqlite", Path: t.TempDir() + "/jobfit.db"})
	if err != nil {
		t.Fatalf("openStore(sqlite): %v", err)
	}
	defer st.Close()
	if _, ok := st.(*store.SQLiteStore); !ok {
		t.Errorf("got %T, want *store.SQLiteStore", st)
	}
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "(not set)"},
		{"abc", "****"},
		{"AIzaSyExample1234", "*************1234"},
	}
	for _, tt := range tests {
		if got := maskKey(tt.in); got != tt.want {
			t.Errorf("maskKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

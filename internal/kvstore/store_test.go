package kvstore

import (
	"context"
	"path/filepath"
	"testing"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("get missing = (%v, %v), want absent", ok, err)
	}

	if err := s.Set(ctx, "formData", []byte(`{"contact":{"name":"Dr. Roe"}}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := s.Get(ctx, "formData")
	if err != nil || !ok {
		t.Fatalf("get = (%v, %v)", ok, err)
	}
	if string(v) != `{"contact":{"name":"Dr. Roe"}}` {
		t.Fatalf("value = %s", v)
	}

	if err := s.Remove(ctx, "formData"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "formData"); ok {
		t.Fatalf("key survived remove")
	}
}

func TestMemoryLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	if err := s.Set(ctx, "k", []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "k", []byte("two")); err != nil {
		t.Fatal(err)
	}
	v, _, _ := s.Get(ctx, "k")
	if string(v) != "two" {
		t.Fatalf("value = %s, want two", v)
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	type snapshot struct {
		Name string `json:"name"`
		URL  string `json:"url,omitempty"`
	}

	if err := PutJSON(ctx, s, "snap", snapshot{Name: "Dr. Roe"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	var got snapshot
	ok, err := GetJSON(ctx, s, "snap", &got)
	if err != nil || !ok {
		t.Fatalf("get = (%v, %v)", ok, err)
	}
	if got.Name != "Dr. Roe" || got.URL != "" {
		t.Fatalf("got %+v", got)
	}

	ok, err = GetJSON(ctx, s, "absent", &got)
	if err != nil || ok {
		t.Fatalf("absent = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLite(ctx, filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if err := s.Set(ctx, "projectInfo", []byte(`{"id":"p1"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "projectInfo", []byte(`{"id":"p2"}`)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	v, ok, err := s.Get(ctx, "projectInfo")
	if err != nil || !ok {
		t.Fatalf("get = (%v, %v)", ok, err)
	}
	if string(v) != `{"id":"p2"}` {
		t.Fatalf("value = %s, want last write", v)
	}

	if err := s.Remove(ctx, "projectInfo"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "projectInfo"); ok {
		t.Fatalf("key survived remove")
	}
}

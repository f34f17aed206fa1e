package tokenstore

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newMiniredisKV(t *testing.T) (*RedisKV, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisKV(client), mr
}

// TestRedisKV_ListGetPutDelete exercises the KV contract against Redis.
func TestRedisKV_ListGetPutDelete(t *testing.T) {
	kv, mr := newMiniredisKV(t)
	ctx := context.Background()

	mr.Set("token:1", "a")
	mr.Set("token:2", "b")
	mr.Set("tokenizer", "not in namespace")
	if err := kv.Put(ctx, "refresh:1", "r", time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}

	keys, err := kv.List(ctx, PrefixToken)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "token:1" || keys[1] != "token:2" {
		t.Errorf("unexpected keys %v", keys)
	}

	if v, ok, err := kv.Get(ctx, "token:1"); err != nil || !ok || v != "a" {
		t.Errorf("Get token:1 = %q, %v, %v", v, ok, err)
	}
	if _, ok, err := kv.Get(ctx, "token:missing"); err != nil || ok {
		t.Errorf("expected clean miss, got ok=%v err=%v", ok, err)
	}
	if ttl := mr.TTL("refresh:1"); ttl != time.Minute {
		t.Errorf("expected 1m ttl, got %v", ttl)
	}

	n, err := kv.Delete(ctx, "token:1", "token:2", "token:missing")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}
	if n, err := kv.Delete(ctx); err != nil || n != 0 {
		t.Errorf("empty Delete = %d, %v", n, err)
	}
}

// TestStore_RedisPurgeAndFind runs the store end to end on Redis.
func TestStore_RedisPurgeAndFind(t *testing.T) {
	kv, mr := newMiniredisKV(t)
	mr.Set("xano_auth_token:42", `{"userId":"42","authToken":"tok"}`)
	mr.Set("token:42", `{"userId":"42","accessToken":"old"}`)
	mr.Set("refresh:abc", `opaque`)

	s := newStore(t, kv)
	rec, err := s.Find(context.Background(), "42")
	if err != nil || rec.Token != "tok" {
		t.Fatalf("Find = %+v, %v", rec, err)
	}

	n, err := s.DeleteAll(context.Background(), "42")
	if err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 deleted, got %d", n)
	}
	if len(mr.Keys()) != 0 {
		t.Errorf("expected empty keyspace, got %v", mr.Keys())
	}
}

// TestRedisKV_Unavailable verifies failures surface once Redis is gone.
func TestRedisKV_Unavailable(t *testing.T) {
	kv, mr := newMiniredisKV(t)
	mr.Close()

	if err := kv.Ping(context.Background()); err == nil {
		t.Fatal("expected ping failure")
	}
	_, err := newStore(t, kv).Find(context.Background(), "42")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

// TestStore_RedisForeignKeyTypes verifies a non-string key in a credential
// namespace is skipped instead of failing lookups and user-scoped purges.
func TestStore_RedisForeignKeyTypes(t *testing.T) {
	kv, mr := newMiniredisKV(t)
	ctx := context.Background()
	mr.HSet("token:aaa-foreign", "field", "value")
	mr.Lpush("xano_auth_token:aaa-list", "x")
	mr.Set("token:zzz", `{"userId":"user-z","accessToken":"tz"}`)

	if _, _, err := kv.Get(ctx, "token:aaa-foreign"); !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("Get on hash key: expected ErrMalformedRecord, got %v", err)
	}

	rec, err := newStore(t, kv).Find(ctx, "user-z")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if rec.Token != "tz" || rec.Key != "token:zzz" {
		t.Errorf("unexpected record %+v", rec)
	}

	n, err := newStore(t, kv, WithPurgeScope(PurgeUser)).DeleteAll(ctx, "user-z")
	if err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}
	if !mr.Exists("token:aaa-foreign") || !mr.Exists("xano_auth_token:aaa-list") {
		t.Error("foreign keys must survive a user-scoped purge")
	}
}

// TestNewRedisClient verifies the connectivity check.
func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	defer mr.Close()

	client, err := NewRedisClient(context.Background(), RedisOptions{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	_ = client.Close()

	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisClient(context.Background(), RedisOptions{Addr: addr, PingTimeout: 200 * time.Millisecond})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

// TestEscapeGlob verifies SCAN pattern metacharacters are quoted.
func TestEscapeGlob(t *testing.T) {
	tests := map[string]string{
		"token:":  "token:",
		"a*:":     `a\*:`,
		"q?[x]\\": `q\?\[x\]\\`,
	}
	for in, want := range tests {
		if got := escapeGlob(in); got != want {
			t.Errorf("escapeGlob(%q) = %q, want %q", in, got, want)
		}
	}
}

package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestOpen(t *testing.T) {
	s := miniredis.RunT(t)
	s.RequireAuth("secret")

	c, err := Open(context.Background(), Options{Addr: s.Addr(), Password: "secret", DB: 3})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if got := c.Options().DB; got != 3 {
		t.Fatalf("DB = %d, want 3", got)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Set(ctx, "idemp:k", "v", time.Minute).Err(); err != nil {
		t.Fatalf("SET: %v", err)
	}
	if ttl := s.TTL("idemp:k"); ttl != time.Minute {
		t.Fatalf("ttl = %v, want 1m", ttl)
	}
}

func TestOpen_Failures(t *testing.T) {
	s := miniredis.RunT(t)
	s.RequireAuth("secret")

	tests := []struct {
		name string
		opts Options
	}{
		{"wrong password", Options{Addr: s.Addr(), Password: "nope"}},
		{"unresolvable host", Options{Addr: "not-a-real-host:6379", PingTimeout: time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), tt.opts)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.opts.Addr) {
				t.Fatalf("error %q does not name the address", err)
			}
		})
	}
}

package proxy

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		raw     string
		want    string // "" means nil
		wantErr bool
	}{
		{"http://127.0.0.1:8080", "http://127.0.0.1:8080", false},
		{"https://proxy.example.com:3128", "https://proxy.example.com:3128", false},
		{"socks5://127.0.0.1:1080", "", false}, // unsupported prefix: no proxy
		{"", "", false},
		{"ftp://127.0.0.1", "", false},
	}

	for _, tc := range cases {
		u, err := Sanitize(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("Sanitize(%q): expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("Sanitize(%q): unexpected error %v", tc.raw, err)
			continue
		}
		got := ""
		if u != nil {
			got = u.String()
		}
		if got != tc.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestPool_Rotation(t *testing.T) {
	p := NewPool(Config{})
	if err := p.Add("http://a:1", "http://b:2"); err != nil {
		t.Fatalf("add: %v", err)
	}

	first := p.Next()
	second := p.Next()
	third := p.Next()

	if first.String() == second.String() {
		t.Error("expected rotation between distinct proxies")
	}
	if third.String() != first.String() {
		t.Errorf("expected rotation to wrap, got %s then %s", first, third)
	}
}

func TestPool_EmptyReturnsNil(t *testing.T) {
	p := NewPool(Config{})
	if p.Next() != nil {
		t.Error("expected nil from empty pool")
	}
}

func TestPool_BenchAndRevive(t *testing.T) {
	p := NewPool(Config{MaxFailures: 2, Cooldown: 30 * time.Millisecond})
	if err := p.Add("http://only:1"); err != nil {
		t.Fatalf("add: %v", err)
	}

	u := p.Next()
	if u == nil {
		t.Fatal("expected a proxy")
	}

	_ = p.MarkFailure(u)
	_ = p.MarkFailure(u)

	if p.Next() != nil {
		t.Error("expected nil while sole proxy is benched")
	}

	time.Sleep(50 * time.Millisecond)

	if p.Next() == nil {
		t.Error("expected proxy to rejoin after cooldown")
	}
}

func TestPool_MarkSuccessDecrementsFailures(t *testing.T) {
	p := NewPool(Config{MaxFailures: 2})
	if err := p.Add("http://only:1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	u := p.Next()

	_ = p.MarkFailure(u)
	if err := p.MarkSuccess(u); err != nil {
		t.Fatalf("mark success: %v", err)
	}
	_ = p.MarkFailure(u)

	// One net failure; the proxy should still be in rotation.
	if p.Next() == nil {
		t.Error("proxy should not be benched after success offset a failure")
	}
}

func TestPool_MarkUnknownProxy(t *testing.T) {
	p := NewPool(Config{})
	u, _ := Sanitize("http://unknown:1")
	if err := p.MarkFailure(u); err == nil {
		t.Error("expected error for proxy not in pool")
	}
}

func TestPool_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxies.txt")
	content := "# comment\nhttp://a:1\n\n127.0.0.1:9000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	p := NewPool(Config{})
	if err := p.LoadFile(path); err != nil {
		t.Fatalf("load file: %v", err)
	}

	seen := map[string]bool{}
	seen[p.Next().String()] = true
	seen[p.Next().String()] = true

	if !seen["http://a:1"] || !seen["http://127.0.0.1:9000"] {
		t.Errorf("expected both file entries loaded, got %v", seen)
	}
}

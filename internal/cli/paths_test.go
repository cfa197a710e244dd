package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/flowlayout/pkg/cache"
	"github.com/matzehuels/flowlayout/pkg/config"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := cacheDir(config.Cache{})
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}

	dir, err = cacheDir(config.Cache{Dir: "/srv/cache"})
	if err != nil || dir != "/srv/cache" {
		t.Errorf("cacheDir(configured) = %q, %v", dir, err)
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	tmp := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.Cache
		noCache bool
		want    string
	}{
		{"no-cache flag", config.Cache{Backend: config.BackendFile, Dir: tmp}, true, "null"},
		{"none backend", config.Cache{Backend: config.BackendNone}, false, "null"},
		{"file backend", config.Cache{Backend: config.BackendFile, Dir: tmp}, false, "file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := newCache(ctx, tt.cfg, tt.noCache)
			if err != nil {
				t.Fatal(err)
			}
			defer c.Close()
			var got string
			switch c.(type) {
			case cache.NullCache:
				got = "null"
			case *cache.FileCache:
				got = "file"
			}
			if got != tt.want {
				t.Errorf("newCache() = %T, want %s", c, tt.want)
			}
		})
	}
}

func TestNewCacheUnusableDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	c, err := newCache(context.Background(), config.Cache{Backend: config.BackendFile, Dir: filepath.Join(blocker, "sub")}, false)
	if err != nil {
		t.Fatalf("newCache() error = %v, want fallback", err)
	}
	if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("newCache() = %T, want NullCache", c)
	}
}

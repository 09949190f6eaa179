package publish

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/kingrea/framecast/internal/config"
	"github.com/kingrea/framecast/internal/rendernode"
)

func TestFileName(t *testing.T) {
	cases := map[string]string{
		"/renders/shot010/beauty/shot010_beauty_v012.$F4.exr": "shot010_beauty_v012.%04d.exr",
		"$HIP/render/$HIPNAME.$f3.exr":                         "$HIPNAME.%03d.exr",
		`C:\renders\shot010.$F5.exr`:                           "shot010.%05d.exr",
	}
	for raw, want := range cases {
		got, err := FileName(raw)
		if err != nil {
			t.Fatalf("FileName(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("FileName(%q) = %q, want %q", raw, got, want)
		}
	}
	if _, err := FileName("/renders/still.exr"); !errors.Is(err, ErrNoFrameToken) {
		t.Fatalf("expected ErrNoFrameToken, got %v", err)
	}
}

func TestFileRegistryRecordAndLookup(t *testing.T) {
	ctx := context.Background()
	reg := NewFileRegistry(filepath.Join(t.TempDir(), "registry", "published.yaml"))
	published, err := reg.IsPublished(ctx, "122", "shot010.%04d.exr")
	if err != nil || published {
		t.Fatalf("empty registry lookup = %v, %v", published, err)
	}
	if err := reg.Record(ctx, "122", "shot010.%04d.exr"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := reg.Record(ctx, "122", "shot010.%04d.exr"); err != nil {
		t.Fatalf("second Record: %v", err)
	}
	published, err = reg.IsPublished(ctx, "122", "shot010.%04d.exr")
	if err != nil || !published {
		t.Fatalf("expected publish found, got %v, %v", published, err)
	}
	published, _ = reg.IsPublished(ctx, "999", "shot010.%04d.exr")
	if published {
		t.Fatalf("publish must be scoped to its project")
	}
	data, err := reg.load()
	if err != nil {
		t.Fatal(err)
	}
	if len(data.Published) != 1 {
		t.Fatalf("expected one entry, got %d", len(data.Published))
	}
}

type countingRegistry struct {
	calls     int
	published map[string]bool
}

func (c *countingRegistry) IsPublished(_ context.Context, projectID, code string) (bool, error) {
	c.calls++
	return c.published[projectID+"/"+code], nil
}

func TestCachedRegistryCachesPositiveAnswers(t *testing.T) {
	ctx := context.Background()
	backing := &countingRegistry{published: map[string]bool{"1/a.%04d.exr": true}}
	cached, err := NewCached(backing, 8)
	if err != nil {
		t.Fatalf("NewCached: %v", err)
	}
	for i := 0; i < 3; i++ {
		ok, err := cached.IsPublished(ctx, "1", "a.%04d.exr")
		if err != nil || !ok {
			t.Fatalf("lookup %d = %v, %v", i, ok, err)
		}
	}
	if backing.calls != 1 {
		t.Fatalf("expected one backing call for cached hit, got %d", backing.calls)
	}
	for i := 0; i < 2; i++ {
		if ok, _ := cached.IsPublished(ctx, "1", "b.%04d.exr"); ok {
			t.Fatalf("unexpected publish for b")
		}
	}
	if backing.calls != 3 {
		t.Fatalf("misses must not be cached, got %d backing calls", backing.calls)
	}
	if err := cached.Record(ctx, "1", "b.%04d.exr"); err == nil {
		t.Fatalf("expected record to fail on a read-only registry")
	}
}

func TestOpenFileRegistryAndStatus(t *testing.T) {
	projectDir := t.TempDir()
	if err := config.InitProjectDir(projectDir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FRAMECAST_PUBLISH_DSN", "")
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		t.Fatal(err)
	}
	reg, closeFn, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeFn()
	cached, ok := reg.(*CachedRegistry)
	if !ok {
		t.Fatalf("expected cached registry, got %T", reg)
	}

	node, err := rendernode.Parse([]byte(`
path: /out/beauty
parms:
  picture_raw: /renders/shot010/shot010_beauty_v012.$F4.exr
`))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	published, code, err := Status(ctx, reg, node, "122")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if published || code != "shot010_beauty_v012.%04d.exr" {
		t.Fatalf("Status = %v, %q", published, code)
	}
	if err := cached.Record(ctx, "122", code); err != nil {
		t.Fatalf("Record: %v", err)
	}
	published, _, err = Status(ctx, reg, node, "122")
	if err != nil || !published {
		t.Fatalf("expected published after record, got %v, %v", published, err)
	}
}

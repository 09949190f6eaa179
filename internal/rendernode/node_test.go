package rendernode

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const ropNodeYAML = `
name: beauty
path: /out/sgtk_ris1
network: rop
scene: /shows/abc/shot010/work/shot010_v012.hip
parms:
  trange: 1
  f1: 1001
  f2: 1010.0
  picture: /renders/shot010/beauty/shot010_beauty_v012.1001.exr
  picture_raw: /renders/shot010/beauty/shot010_beauty_v012.$F4.exr
  denoise: true
  denoise_picture: /renders/shot010/denoise/shot010_denoise_v012.1001.exr
  ri_statistics_xmlfilename: /renders/shot010/stats/shot010_stats_v012.exr
`

func TestLoadNodeDescription(t *testing.T) {
	file := filepath.Join(t.TempDir(), "beauty.yaml")
	if err := os.WriteFile(file, []byte(ropNodeYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	node, err := Load(file)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if node.Name() != "beauty" || node.Network() != NetworkROP {
		t.Fatalf("unexpected node %q %q", node.Name(), node.Network())
	}
	if node.Scene() == "" {
		t.Fatalf("expected scene to be recorded")
	}
	first, last, err := OutputRange(node, 1)
	if err != nil {
		t.Fatalf("OutputRange: %v", err)
	}
	if first != 1001 || last != 1010 {
		t.Fatalf("OutputRange = %d-%d, want 1001-1010", first, last)
	}
	driver, err := OutputDriver(node)
	if err != nil || driver != "/out/sgtk_ris1/ris1" {
		t.Fatalf("OutputDriver = %q, %v", driver, err)
	}
	raw, err := RawPicturePath(node)
	if err != nil || filepath.Base(raw) != "shot010_beauty_v012.$F4.exr" {
		t.Fatalf("RawPicturePath = %q, %v", raw, err)
	}
	dirs, err := OutputDirs(node)
	if err != nil {
		t.Fatalf("OutputDirs: %v", err)
	}
	if len(dirs) != 3 || dirs[1] != "/renders/shot010/denoise" || dirs[2] != "/renders/shot010/stats" {
		t.Fatalf("OutputDirs = %v", dirs)
	}
	paths, err := OutputPaths(node)
	if err != nil {
		t.Fatalf("OutputPaths: %v", err)
	}
	if last := paths[len(paths)-1]; last != "/renders/shot010/stats/shot010_stats_v012.xml" {
		t.Fatalf("statistics path = %q", last)
	}
}

func TestStatisticsPath(t *testing.T) {
	cases := map[string]string{
		"/renders/stats/shot.xml":  "/renders/stats/shot.xml",
		"/renders/stats/shot.exr":  "/renders/stats/shot.xml",
		"/renders/stats/shot_v001": "/renders/stats/shot_v001.xml",
	}
	for parm, want := range cases {
		node, err := Parse([]byte("path: /out/x\nparms:\n  ri_statistics_xmlfilename: " + parm + "\n"))
		if err != nil {
			t.Fatal(err)
		}
		got, ok := StatisticsPath(node)
		if !ok || got != want {
			t.Fatalf("StatisticsPath(%q) = %q, %v, want %q", parm, got, ok, want)
		}
	}
	node, err := Parse([]byte("path: /out/x\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := StatisticsPath(node); ok {
		t.Fatalf("expected no statistics path without the parm")
	}
}

func TestOutputRangeCurrentFrame(t *testing.T) {
	node, err := Parse([]byte("path: /stage/render\nnetwork: LOP\nparms:\n  trange: 0\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	first, last, err := OutputRange(node, 1042)
	if err != nil || first != 1042 || last != 1042 {
		t.Fatalf("OutputRange = %d-%d, %v", first, last, err)
	}
	if node.Name() != "render" {
		t.Fatalf("expected name from path, got %q", node.Name())
	}
	driver, _ := OutputDriver(node)
	if driver != "/stage/render/rop_usdrender" {
		t.Fatalf("OutputDriver = %q", driver)
	}
	if _, err := PicturePath(node); !errors.Is(err, ErrMissingParm) {
		t.Fatalf("expected ErrMissingParm, got %v", err)
	}
}

func TestParseRejectsBadDescriptions(t *testing.T) {
	if _, err := Parse([]byte("path: /out/x\nnetwork: sop\n")); !errors.Is(err, ErrUnknownNetwork) {
		t.Fatalf("expected ErrUnknownNetwork, got %v", err)
	}
	if _, err := Parse([]byte("name: x\n")); err == nil {
		t.Fatalf("expected missing path error")
	}
	node, err := Parse([]byte("path: /out/x\nparms:\n  trange: 1\n  f1: 1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := OutputRange(node, 0); !errors.Is(err, ErrMissingParm) {
		t.Fatalf("expected ErrMissingParm for f2, got %v", err)
	}
}

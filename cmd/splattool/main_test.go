package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vearutop/splat"
)

func TestParseAffine(t *testing.T) {
	m, err := parseAffine("1,0,0,5, 0,2,0,6, 0,0,3,7")
	if err != nil {
		t.Fatal(err)
	}
	want := splat.AffineFromRows([12]float32{1, 0, 0, 5, 0, 2, 0, 6, 0, 0, 3, 7})
	if m != want {
		t.Fatalf("got %v, want %v", m, want)
	}

	if _, err := parseAffine("1,2,3"); err == nil {
		t.Fatal("expected error for short matrix")
	}
	if _, err := parseAffine("1,0,0,x,0,1,0,0,0,0,1,0"); err == nil {
		t.Fatal("expected error for bad value")
	}
}

func TestConvertJobs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.JPG", "a.png", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o700); err != nil {
		t.Fatal(err)
	}

	list, err := convertJobs(dir, "pred", "out")
	if err != nil {
		t.Fatal(err)
	}
	want := []convertJob{
		{image: filepath.Join(dir, "a.png"), tensors: filepath.Join("pred", "a.safetensors"), out: filepath.Join("out", "a.ply")},
		{image: filepath.Join(dir, "b.JPG"), tensors: filepath.Join("pred", "b.safetensors"), out: filepath.Join("out", "b.ply")},
	}
	if diff := cmp.Diff(want, list, cmp.AllowUnexported(convertJob{})); diff != "" {
		t.Fatalf("jobs (-want +got):\n%s", diff)
	}

	single, err := convertJobs(filepath.Join(dir, "a.png"), "a.safetensors", "out")
	if err != nil {
		t.Fatal(err)
	}
	if len(single) != 1 || single[0].tensors != "a.safetensors" || single[0].out != filepath.Join("out", "a.ply") {
		t.Fatalf("unexpected job %+v", single)
	}

	if _, err := convertJobs(t.TempDir(), "pred", "out"); err == nil {
		t.Fatal("expected error for directory without images")
	}
}

func TestLoadConfig(t *testing.T) {
	env := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(env, []byte("SPLAT_WORKERS=3\nSPLAT_COLOR_SPACE=linear\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SPLAT_WORKERS", "")
	t.Setenv("SPLAT_COLOR_SPACE", "")
	t.Setenv("SPLAT_JOBS", "4")
	t.Setenv("SPLAT_DEBUG", "true")
	t.Setenv("SPLAT_LOG_FILE", "")
	os.Unsetenv("SPLAT_WORKERS")
	os.Unsetenv("SPLAT_COLOR_SPACE")

	cfg, err := loadConfig(env)
	if err != nil {
		t.Fatal(err)
	}
	want := config{Workers: 3, Jobs: 4, ColorSpace: "linear", Debug: true}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}

	cfg, err = loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Jobs != 4 {
		t.Fatalf("jobs %d", cfg.Jobs)
	}

	t.Setenv("SPLAT_JOBS", "many")
	if _, err := loadConfig(env); err == nil {
		t.Fatal("expected error for bad SPLAT_JOBS")
	}
}

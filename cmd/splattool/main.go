package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"github.com/vearutop/splat"
	"github.com/vearutop/splat/internal/log"
)

var imageExts = []string{".jpg", ".jpeg", ".png", ".tif", ".tiff", ".webp", ".bmp"}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cfg, err := loadConfig(".env")
	if err != nil {
		fail(err)
	}
	switch os.Args[1] {
	case "convert":
		if err := runConvert(os.Args[2:], cfg); err != nil {
			fail(err)
		}
	case "info":
		if err := runInfo(os.Args[2:]); err != nil {
			fail(err)
		}
	case "transform":
		if err := runTransform(os.Args[2:], cfg); err != nil {
			fail(err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: splattool <command> [args]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  convert   -in image.jpg|dir -tensors pred.safetensors|dir -out dir [-color-space srgb|linear] [-workers N] [-jobs N]")
	fmt.Fprintln(os.Stderr, "  info      -in scene.ply")
	fmt.Fprintln(os.Stderr, "  transform -in scene.ply -out out.ply -matrix m00,m01,m02,t0,m10,m11,m12,t1,m20,m21,m22,t2")
	fmt.Fprintln(os.Stderr, "Environment (.env supported): SPLAT_WORKERS, SPLAT_JOBS, SPLAT_COLOR_SPACE, SPLAT_LOG_FILE, SPLAT_DEBUG")
}

type convertJob struct {
	image   string
	tensors string
	out     string
}

func runConvert(args []string, cfg config) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	inPath := fs.String("in", "", "input image or directory of images")
	tensorsPath := fs.String("tensors", "", "model outputs (.safetensors) or directory of them")
	outDir := fs.String("out", "samples", "output directory")
	colorSpace := fs.String("color-space", cfg.ColorSpace, "color space of stored colors: srgb or linear")
	workers := fs.Int("workers", cfg.Workers, "goroutines per scene, 0 for GOMAXPROCS")
	jobs := fs.Int("jobs", cfg.Jobs, "images processed concurrently")
	logFile := fs.String("log", cfg.LogFile, "log output path")
	debug := fs.Bool("debug", cfg.Debug, "debug logging")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" || *tensorsPath == "" {
		return errors.New("missing required arguments")
	}
	cs, err := splat.ParseColorSpace(*colorSpace)
	if err != nil {
		return err
	}

	logger, err := log.NewLogger(false, *debug, *logFile)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	list, err := convertJobs(*inPath, *tensorsPath, *outDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}
	logger.Infow("converting images", "count", len(list), "out", *outDir)

	var failed atomic.Int32
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(max(*jobs, 1))
	for _, j := range list {
		j := j
		g.Go(func() error {
			gen, err := splat.NewGenerator(splat.TensorFilePredictor{Path: j.tensors}, func(o *splat.GeneratorOptions) {
				o.ColorSpace = cs
				o.Workers = *workers
				o.Logger = logger.SugaredLogger
			})
			if err != nil {
				return err
			}
			if err := gen.Generate(ctx, j.image, j.out); err != nil {
				failed.Add(1)
				logger.Errorw("conversion failed", "image", j.image, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d images failed", n, len(list))
	}
	return nil
}

func convertJobs(inPath, tensorsPath, outDir string) ([]convertJob, error) {
	st, err := os.Stat(inPath)
	if err != nil {
		return nil, err
	}
	outName := func(image string) string {
		base := strings.TrimSuffix(filepath.Base(image), filepath.Ext(image))
		return filepath.Join(outDir, base+".ply")
	}
	if !st.IsDir() {
		return []convertJob{{image: inPath, tensors: tensorsPath, out: outName(inPath)}}, nil
	}

	entries, err := os.ReadDir(inPath)
	if err != nil {
		return nil, err
	}
	var list []convertJob
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(imageExts, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		image := filepath.Join(inPath, e.Name())
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		list = append(list, convertJob{
			image:   image,
			tensors: filepath.Join(tensorsPath, base+".safetensors"),
			out:     outName(image),
		})
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("no images found in %s", inPath)
	}
	slices.SortFunc(list, func(a, b convertJob) int { return strings.Compare(a.image, b.image) })
	return list, nil
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	inPath := fs.String("in", "", "input PLY scene")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" {
		return errors.New("missing required arguments")
	}
	scene, err := splat.LoadPLY(*inPath)
	if err != nil {
		return err
	}
	info, err := scene.Info()
	if err != nil {
		return err
	}
	payload, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(payload))
	return nil
}

func runTransform(args []string, cfg config) error {
	fs := flag.NewFlagSet("transform", flag.ContinueOnError)
	inPath := fs.String("in", "", "input PLY scene")
	outPath := fs.String("out", "", "output PLY scene")
	matrix := fs.String("matrix", "", "12 comma separated row-major values of a 3x4 affine map")
	workers := fs.Int("workers", cfg.Workers, "goroutines, 0 for GOMAXPROCS")
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" || *outPath == "" || *matrix == "" {
		return errors.New("missing required arguments")
	}
	m, err := parseAffine(*matrix)
	if err != nil {
		return err
	}
	scene, err := splat.LoadPLY(*inPath)
	if err != nil {
		return err
	}
	out, err := splat.ApplyAffine(scene.Gaussians, m, func(o *splat.TransformOptions) {
		if *workers > 0 {
			o.Workers = *workers
		}
	})
	if err != nil {
		return err
	}
	return splat.SavePLY(*outPath, out, scene.Metadata, func(o *splat.WriteOptions) {
		o.ColorSpace = scene.ColorSpace
	})
}

func parseAffine(s string) (mgl32.Mat3x4, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 12 {
		return mgl32.Mat3x4{}, fmt.Errorf("matrix needs 12 values, got %d", len(parts))
	}
	var v [12]float32
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return mgl32.Mat3x4{}, fmt.Errorf("matrix value %d: %w", i, err)
		}
		v[i] = float32(f)
	}
	return splat.AffineFromRows(v), nil
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

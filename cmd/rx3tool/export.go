package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/rx3kit/internal/batch"
	"github.com/Faultbox/rx3kit/internal/config"
	"github.com/Faultbox/rx3kit/internal/export/gltfexport"
	"github.com/Faultbox/rx3kit/internal/logger"
	"github.com/Faultbox/rx3kit/pkg/model"
	"github.com/Faultbox/rx3kit/pkg/rx3"
	"github.com/Faultbox/rx3kit/pkg/rx3model"
)

func cmdExport(args []string) {
	flagSet := flag.NewFlagSet("export", flag.ExitOnError)
	cfg := setup(flagSet, args)

	if flagSet.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rx3tool export [options] <file-or-dir>...")
		os.Exit(1)
	}

	inputs, err := collectInputs(flagSet.Args(), cfg.Export.Recursive)
	if err != nil {
		fatal(err)
	}
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "No .rx3 files found")
		os.Exit(1)
	}
	if !cfg.Export.Merge {
		if err := checkOutputs(cfg.Export.OutputDir, inputs, cfg.Export.Format); err != nil {
			fatal(err)
		}
	}
	if err := os.MkdirAll(cfg.Export.OutputDir, 0755); err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.Export.Merge {
		out, err := exportMerged(ctx, cfg, inputs)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("Exported: %s (%d inputs)\n", out, len(inputs))
		return
	}

	results := exportEach(ctx, cfg, inputs)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "Failed: %s: %v\n", r.Job.Path, r.Err)
		}
	}
	failed := batch.Failed(results)
	fmt.Fprintf(os.Stderr, "\nExported %d of %d files\n", len(results)-failed, len(results))
	if failed > 0 {
		logger.Sync()
		os.Exit(1)
	}
}

// input is one container to export. Dir is the container's directory
// relative to the walked argument, and is empty for files named directly.
type input struct {
	Path string
	Dir  string
}

// collectInputs expands directories into the .rx3 files they hold.
func collectInputs(paths []string, recursive bool) ([]input, error) {
	var inputs []input
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.Wrap(err, "input")
		}
		if !info.IsDir() {
			inputs = append(inputs, input{Path: p})
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && !recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), ".rx3") {
				rel, err := filepath.Rel(p, filepath.Dir(path))
				if err != nil {
					return err
				}
				inputs = append(inputs, input{Path: path, Dir: rel})
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walking %s", p)
		}
	}
	return inputs, nil
}

// outputPath names the export of in inside dir, keeping the subdirectory it
// was found in.
func outputPath(dir string, in input, format string) string {
	return filepath.Join(dir, in.Dir, rx3.Stem(in.Path)+"."+format)
}

// checkOutputs rejects input sets where two containers would export to the
// same file.
func checkOutputs(dir string, inputs []input, format string) error {
	seen := make(map[string]string, len(inputs))
	for _, in := range inputs {
		out := outputPath(dir, in, format)
		if prev, ok := seen[out]; ok {
			return errors.Errorf("%s and %s both export to %s", prev, in.Path, out)
		}
		seen[out] = in.Path
	}
	return nil
}

func exportEach(ctx context.Context, cfg *config.Config, inputs []input) []batch.Result[input] {
	log := logger.Named("export")
	return batch.Run(ctx, inputs, cfg.Export.Workers, func(_ context.Context, in input) error {
		m, err := rx3model.DecodeFile(in.Path, cfg.DecodeOptions(logger.Named("rx3model")))
		if err != nil {
			return err
		}
		if m.Empty() {
			log.Info("nothing to export", zap.String("file", in.Path))
			return nil
		}

		out := outputPath(cfg.Export.OutputDir, in, cfg.Export.Format)
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return errors.Wrap(err, "output directory")
		}
		if err := gltfexport.WriteFile(out, m); err != nil {
			return err
		}
		s := m.Stats()
		log.Info("exported",
			zap.String("file", in.Path),
			zap.String("output", out),
			zap.Int("objects", s.Objects),
			zap.Int("triangles", s.Triangles),
			zap.Int("bones", s.Bones),
		)
		return nil
	})
}

func exportMerged(ctx context.Context, cfg *config.Config, inputs []input) (string, error) {
	models := make([]*model.Model, len(inputs))
	jobs := make([]int, len(inputs))
	for i := range jobs {
		jobs[i] = i
	}

	results := batch.Run(ctx, jobs, cfg.Export.Workers, func(_ context.Context, i int) error {
		m, err := rx3model.DecodeFile(inputs[i].Path, cfg.DecodeOptions(logger.Named("rx3model")))
		if err != nil {
			return errors.Wrap(err, inputs[i].Path)
		}
		models[i] = m
		return nil
	})
	if err := batch.Errors(results); err != nil {
		return "", err
	}

	merged := &model.Model{Name: rx3.Stem(inputs[0].Path)}
	for i, m := range models {
		if err := merged.Merge(m); err != nil {
			return "", errors.Wrapf(err, "merging %s", inputs[i].Path)
		}
	}

	// the merged model lands at the top of the output directory
	out := outputPath(cfg.Export.OutputDir, input{Path: inputs[0].Path}, cfg.Export.Format)
	if err := gltfexport.WriteFile(out, merged); err != nil {
		return "", err
	}
	return out, nil
}

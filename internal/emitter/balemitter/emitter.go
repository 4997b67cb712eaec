// Package balemitter renders a client model as a Ballerina HTTP client.
package balemitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/oas2client/internal/client"
)

const (
	DefaultFileName = "client.bal"
	ModelFileName   = "client_model.json"
)

// Options controls how the Ballerina emitter writes a client.
type Options struct {
	OutDir    string // required; target directory
	FileName  string // client source file; defaults to client.bal
	EmitModel bool   // also write the client model as JSON
	Force     bool   // write into a non-empty directory
	DryRun    bool   // don't write, only plan
	Logger    *slog.Logger
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result returns the planned files.
type Result struct {
	FileName string
	Planned  []PlannedFile
}

// Emit renders model and writes the client source under opts.OutDir.
func Emit(ctx context.Context, model *client.ClientModel, opts Options) (*Result, error) {
	if model == nil {
		return nil, fmt.Errorf("balemitter: nil ClientModel")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("balemitter: OutDir is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	fileName, err := cleanFileName(opts.FileName)
	if err != nil {
		return nil, err
	}

	files := map[string][]byte{}
	src, err := Render(model)
	if err != nil {
		return nil, err
	}
	files[fileName] = src
	if opts.EmitModel {
		modelJSON, err := json.MarshalIndent(model, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", ModelFileName, err)
		}
		files[ModelFileName] = append(modelJSON, '\n')
	}

	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, p)
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: 0o644})
		logger.Debug("planned file", "path", rel, "size", len(files[rel]))
	}

	if !opts.DryRun {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := writeFiles(opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
	}
	return &Result{FileName: fileName, Planned: planned}, nil
}

// cleanFileName keeps the client file inside the output directory.
func cleanFileName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultFileName, nil
	}
	clean := filepath.ToSlash(filepath.Clean(name))
	if filepath.IsAbs(name) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("balemitter: file name %q must stay inside the output directory", name)
	}
	if clean == ModelFileName {
		return "", fmt.Errorf("balemitter: file name %q is reserved", name)
	}
	return clean, nil
}

func writeFiles(outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("balemitter: output directory %q is not empty (use --force to overwrite)", abs)
		}
	}
	for rel, content := range files {
		p := filepath.Join(abs, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}

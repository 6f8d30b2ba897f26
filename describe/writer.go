// ABOUTME: The describe step's core loop: enumerate images, skip ledger entries, call the provider per image.
// ABOUTME: Appends the description before the ledger entry so a crash between the two is resumable, never lossy.
package describe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mediascribe/mediascribe/media"
	"github.com/mediascribe/mediascribe/provider"
	"github.com/mediascribe/mediascribe/workflow"
)

// Writer iterates over discovered images and describes each through the
// configured provider. Images already in the progress ledger are never sent
// to the provider again.
type Writer struct {
	Provider provider.Provider
	Model    string
	Style    string
	Prompt   string
	RunDir   *workflow.RunDir
	Retry    provider.RetryPolicy

	// Index, when non-nil, receives each entry best-effort; index failures
	// never fail the run.
	Index *Index

	Stdout io.Writer
	Stderr io.Writer
}

// Run describes every not-yet-done image under inputDir plus the extracted
// frames and converted images in the run directory. It returns the number of
// images described in this invocation. Per-image provider failures are logged
// and skipped; Run fails only when nothing succeeded and work remained.
func (w *Writer) Run(ctx context.Context, inputDir string) (int, error) {
	if w.Stdout == nil {
		w.Stdout = os.Stdout
	}
	if w.Stderr == nil {
		w.Stderr = os.Stderr
	}

	images, err := w.enumerate(inputDir)
	if err != nil {
		return 0, err
	}

	ledger := workflow.NewLedger(w.RunDir)
	done, err := ledger.Load()
	if err != nil {
		return 0, err
	}

	var pending []string
	for _, img := range images {
		if !done[img] {
			pending = append(pending, img)
		}
	}
	fmt.Fprintf(w.Stdout, "%d images found, %d already described, %d to go\n",
		len(images), len(images)-len(pending), len(pending))

	described := 0
	failed := 0
	for i, img := range pending {
		if ctx.Err() != nil {
			return described, ctx.Err()
		}
		fmt.Fprintf(w.Stdout, "[%d/%d] %s\n", i+1, len(pending), filepath.Base(img))

		var result *provider.Result
		callErr := provider.Retry(ctx, w.Retry, func() error {
			var err error
			result, err = w.Provider.Describe(ctx, provider.Request{
				ImagePath: img,
				Model:     w.Model,
				Prompt:    w.Prompt,
			})
			return err
		})
		if callErr != nil {
			failed++
			fmt.Fprintf(w.Stderr, "failed to describe %s: %v\n", img, callErr)
			continue
		}

		entry := NewEntry(img, w.Provider.Name(), result.Model, w.Style, result.Text)
		if err := AppendEntry(w.RunDir.DescriptionsPath(), entry); err != nil {
			return described, err
		}
		if err := ledger.Record(img); err != nil {
			return described, err
		}
		if w.Index != nil {
			if err := w.Index.Put(entry); err != nil {
				fmt.Fprintf(w.Stderr, "warning: index update: %v\n", err)
			}
		}
		described++
	}

	// The step runner parses this exact line for the item count.
	fmt.Fprintf(w.Stdout, "%d images described\n", described)

	if described == 0 && failed > 0 {
		return 0, fmt.Errorf("all %d pending images failed", failed)
	}
	if failed > 0 {
		fmt.Fprintf(w.Stderr, "%d images failed and remain absent from the ledger; re-run with --resume to retry them\n", failed)
	}
	return described, nil
}

// enumerate collects describable images from the input directory, extracted
// frames, and converted images, in that order. Each group is sorted, so the
// overall order is stable across resumes.
func (w *Writer) enumerate(inputDir string) ([]string, error) {
	images, err := media.Images(inputDir)
	if err != nil {
		return nil, fmt.Errorf("scan input directory: %w", err)
	}
	for _, dir := range []string{w.RunDir.FramesDir(), w.RunDir.ConvertedDir()} {
		extra, err := media.Images(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
		images = append(images, extra...)
	}
	return images, nil
}

package analyzer

import (
	"context"
	"errors"

	"github.com/panbanda/bigo/internal/fileproc"
	"github.com/panbanda/bigo/pkg/models"
)

// FileResult pairs a file with its analysis. Result is error-shaped when the
// file was empty, malformed or over the limits.
type FileResult struct {
	Path   string                 `json:"path" toon:"path"`
	Result *models.AnalysisResult `json:"result" toon:"result"`
}

// ReadFunc loads the content of path.
type ReadFunc func(ctx context.Context, path string) ([]byte, error)

// AnalyzeFiles analyzes each file concurrently and returns the results in
// input order. Files that could not be read, or whose analysis failed for a
// reason other than the code itself, are left out and reported in the
// returned error. A tracker on ctx receives one tick per file.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, paths []string, read ReadFunc, workers int) ([]FileResult, error) {
	tracker := TrackerFromContext(ctx)
	if tracker != nil {
		tracker.Add(len(paths))
	}

	var onProgress fileproc.ProgressFunc
	if tracker != nil {
		onProgress = tracker.Tick
	}

	results, errs := fileproc.MapFilesCollectErrors(ctx, paths, workers,
		func(ctx context.Context, path string) (FileResult, error) {
			content, err := read(ctx, path)
			if err != nil {
				return FileResult{}, err
			}
			res, err := a.Analyze(ctx, string(content))
			switch {
			case err == nil:
			case errors.Is(err, ErrEmptyCode):
				res = models.ErrorResult(err)
			case res == nil:
				return FileResult{}, err
			}
			if res.Failed() && tracker != nil {
				tracker.Reject()
			}
			return FileResult{Path: path, Result: res}, nil
		}, onProgress)

	if errs != nil {
		a.logger.Warn("some files could not be analyzed", "failed", len(errs.Errors), "total", len(paths))
		return results, errs
	}
	return results, nil
}

package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/lyra/internal/formatter"
	"github.com/desertthunder/lyra/internal/models"
)

// BulkExportOpts contains configuration for bulk list exports.
type BulkExportOpts struct {
	Format     string // Export format: json, csv, markdown, txt
	OutputDir  string // Base output directory (default: vocab_export_{epoch})
	NumWorkers int    // Concurrent workers (default: 5)
}

// ListExportResult is the outcome of exporting a single list.
type ListExportResult struct {
	ListID  string   `json:"listId"`
	Title   string   `json:"title"`
	Success bool     `json:"success"`
	Files   []string `json:"files,omitempty"`
	Error   error    `json:"-"`
}

// BulkExportResult summarizes a bulk export run.
type BulkExportResult struct {
	TotalLists        int                `json:"totalLists"`
	SuccessfulExports int                `json:"successfulExports"`
	FailedExports     int                `json:"failedExports"`
	OutputDirectory   string             `json:"outputDirectory"`
	ManifestPath      string             `json:"manifestPath,omitempty"`
	Results           []ListExportResult `json:"results"`
}

type listExportJob struct {
	list *models.VocabularyList
}

// BulkExport writes multiple vocabulary lists to disk concurrently with
// progress tracking, then writes a manifest file summarizing the run.
//
// Partial failures are collected per list rather than aborting the run.
func (e *VocabEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	lists []*models.VocabularyList,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("vocab_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalLists:      len(lists),
		OutputDirectory: opts.OutputDir,
		Results:         make([]ListExportResult, 0, len(lists)),
	}

	jobs := make(chan listExportJob, len(lists))
	results := make(chan ListExportResult, len(lists))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		for i, list := range lists {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}

			jobs <- listExportJob{list: list}
			e.sendProgress(prog, exportingListUpdate(i+1, len(lists), list.Title))
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(lists), res.Title, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(lists), res.Title, res.Error))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteExportManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that exports lists from the jobs channel.
func (e *VocabEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan listExportJob,
	results chan<- ListExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- exportSingleList(job.list, opts)
	}
}

// exportSingleList writes a single list in the requested format.
func exportSingleList(list *models.VocabularyList, opts BulkExportOpts) ListExportResult {
	result := ListExportResult{
		ListID:  list.ID,
		Title:   list.Title,
		Success: false,
		Files:   []string{},
	}

	base := filepath.Join(opts.OutputDir, list.ID)

	var (
		path string
		err  error
	)
	switch opts.Format {
	case "csv":
		path, err = formatter.WriteListCSV(list, base+".csv")
	case "markdown":
		path, err = formatter.WriteListMarkdown(list, base+".md")
	case "txt":
		path, err = formatter.WriteListText(list, base+".txt")
	case "json":
		fallthrough
	default:
		path, err = formatter.WriteListJSON(list, base+".json")
	}

	if err != nil {
		result.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return result
	}

	result.Files = []string{path}
	result.Success = true
	return result
}

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/ats-autofill/internal/export"
	"github.com/jonathan/ats-autofill/internal/logging"
	"github.com/jonathan/ats-autofill/internal/observability"
	"github.com/jonathan/ats-autofill/internal/resumeparse"
	"github.com/jonathan/ats-autofill/internal/schemas"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// normalizeConcurrency bounds how many response files are processed at once.
const normalizeConcurrency = 4

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize saved webhook responses into candidate drafts",
	Long: "Normalize one or more saved resume parser responses offline. Each draft is validated " +
		"against the candidate draft schema and written as <name>.draft.json or printed to stdout.",
	RunE: runNormalize,
}

var (
	normalizeInputs     []string
	normalizeOutDir     string
	normalizeXLSXPath   string
	normalizeConfigPath string
)

func init() {
	normalizeCmd.Flags().StringArrayVarP(&normalizeInputs, "in", "i", nil, "Path to a saved webhook response (repeatable, required)")
	normalizeCmd.Flags().StringVarP(&normalizeOutDir, "out", "o", "", "Directory for <name>.draft.json files (default stdout)")
	normalizeCmd.Flags().StringVar(&normalizeXLSXPath, "xlsx", "", "Also export all drafts to this Excel workbook")
	normalizeCmd.Flags().StringVar(&normalizeConfigPath, "config", "", "Path to JSON config file")

	_ = normalizeCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(normalizeConfigPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(verbose || cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	normalizer, err := newNormalizer(cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := normalizeFiles(ctx, normalizer, normalizeInputs)
	if err != nil {
		return err
	}

	if verbose {
		printer := observability.NewPrinter(os.Stderr)
		for _, row := range rows {
			printer.PrintDraft(row.Source, row.Draft)
		}
	}

	if normalizeOutDir != "" {
		paths, err := writeDrafts(rows, normalizeOutDir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", p)
		}
	} else if len(rows) == 1 {
		if err := writeJSON(cmd.OutOrStdout(), rows[0].Draft); err != nil {
			return err
		}
	} else {
		if err := writeJSON(cmd.OutOrStdout(), rows); err != nil {
			return err
		}
	}

	if normalizeXLSXPath != "" {
		path, err := export.ExportDrafts(rows, normalizeXLSXPath)
		if err != nil {
			return err
		}
		logger.Info("exported drafts", zap.String("path", path), zap.Int("count", len(rows)))
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d drafts to %s\n", len(rows), path)
	}

	return nil
}

// normalizeFiles normalizes and validates each file. Results keep the
// input order; the first failure cancels the rest.
func normalizeFiles(ctx context.Context, normalizer *resumeparse.Normalizer, paths []string) ([]export.DraftRow, error) {
	rows := make([]export.DraftRow, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(normalizeConcurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			body, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			draft, err := normalizer.NormalizeResponse(body)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if err := schemas.ValidateDraft(draft); err != nil {
				return fmt.Errorf("%s: draft does not validate against schema: %w", path, err)
			}
			rows[i] = export.DraftRow{Source: filepath.Base(path), Draft: draft}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

// writeDrafts writes each draft to dir as <name>.draft.json.
func writeDrafts(rows []export.DraftRow, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(rows))
	for _, row := range rows {
		path := filepath.Join(dir, draftFileName(row.Source))
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", path, err)
		}
		err = writeJSON(f, row.Draft)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func draftFileName(source string) string {
	name := strings.TrimSuffix(source, filepath.Ext(source))
	return name + ".draft.json"
}

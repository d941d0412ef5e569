package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jonathan/ats-autofill/internal/autofill"
	"github.com/jonathan/ats-autofill/internal/logging"
	"github.com/jonathan/ats-autofill/internal/observability"
	"github.com/jonathan/ats-autofill/internal/server"
	"github.com/jonathan/ats-autofill/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var parseResumeCmd = &cobra.Command{
	Use:   "parse-resume",
	Short: "Send a resume to the parsing webhook and print the candidate draft",
	Long: "Upload a local resume file to the parsing webhook and print the normalized draft as JSON. " +
		"With --candidate-id the draft is merged into the stored candidate and the result is saved.",
	RunE: runParseResume,
}

var (
	parseResumeFile        string
	parseResumeWebhook     string
	parseResumeConfigPath  string
	parseResumeCandidateID string
	parseResumeSQLitePath  string
)

func init() {
	parseResumeCmd.Flags().StringVarP(&parseResumeFile, "file", "f", "", "Path to resume file (required)")
	parseResumeCmd.Flags().StringVar(&parseResumeWebhook, "webhook", "", "Parsing webhook URL (overrides RESUME_WEBHOOK_URL)")
	parseResumeCmd.Flags().StringVar(&parseResumeConfigPath, "config", "", "Path to JSON config file")
	parseResumeCmd.Flags().StringVar(&parseResumeCandidateID, "candidate-id", "", "Merge the draft into this stored candidate")
	parseResumeCmd.Flags().StringVar(&parseResumeSQLitePath, "sqlite", "", "Use a local SQLite file instead of PostgreSQL")

	_ = parseResumeCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(parseResumeCmd)
}

func runParseResume(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(parseResumeConfigPath)
	if err != nil {
		return err
	}
	if parseResumeWebhook != "" {
		cfg.WebhookURL = parseResumeWebhook
	}
	if parseResumeSQLitePath != "" {
		cfg.SQLitePath = parseResumeSQLitePath
		cfg.DatabaseURL = ""
	}

	var candidateID uuid.UUID
	if parseResumeCandidateID != "" {
		candidateID, err = uuid.Parse(parseResumeCandidateID)
		if err != nil {
			return fmt.Errorf("invalid candidate-id: %w", err)
		}
	}

	logger, err := logging.New(verbose || cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	filler, err := newAutofiller(cfg, logger)
	if err != nil {
		return err
	}

	file, err := os.Open(parseResumeFile)
	if err != nil {
		return fmt.Errorf("failed to open resume file: %w", err)
	}
	defer func() { _ = file.Close() }()

	fileName := filepath.Base(parseResumeFile)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if candidateID == uuid.Nil {
		draft, _, err := filler.Draft(ctx, fileName, file)
		if err != nil {
			return err
		}
		if verbose {
			observability.NewPrinter(os.Stderr).PrintDraft(fileName, draft)
		}
		return writeJSON(cmd.OutOrStdout(), draft)
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = store.Close() }()

	return autofillCandidate(ctx, cmd.OutOrStdout(), store, filler, candidateID, fileName, file, logger)
}

// autofillCandidate merges a parsed resume into a stored candidate and
// records the parse.
func autofillCandidate(ctx context.Context, out io.Writer, store server.CandidateStore, filler *autofill.Autofiller, id uuid.UUID, fileName string, file io.Reader, logger *zap.Logger) error {
	candidate, err := store.GetCandidate(ctx, id)
	if err != nil {
		return err
	}
	if candidate == nil {
		return fmt.Errorf("candidate %s: %w", id, types.ErrCandidateNotFound)
	}

	form := autofill.NewForm(filler, candidate.CandidateForm)
	result, err := form.Upload(ctx, fileName, file)
	if err != nil {
		return err
	}
	draft := result.Draft

	updated, err := store.UpdateCandidate(ctx, id, result.Form)
	if err != nil {
		return fmt.Errorf("failed to save candidate: %w", err)
	}

	if err := store.SaveResumeParse(ctx, &types.ResumeParseRecord{
		CandidateID: id,
		FileName:    fileName,
		RawResponse: result.RawResponse,
		Draft:       draft,
	}); err != nil {
		logger.Warn("failed to record resume parse", zap.String("candidate_id", id.String()), zap.Error(err))
	}

	if verbose {
		printer := observability.NewPrinter(os.Stderr)
		printer.PrintDraft(fileName, draft)
		printer.PrintMergeSummary(candidate.CandidateForm, updated.CandidateForm)
	}

	return writeJSON(out, map[string]any{
		"candidate": updated,
		"draft":     draft,
	})
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

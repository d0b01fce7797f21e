package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/haint/paperlens/config"
	"github.com/haint/paperlens/types"
)

// AnalyzeService drives the whole pipeline for one request: stage each
// upload, chunk it, summarize its leading sections, then synthesize one
// cross-document analysis. It is a single sequential worker; events reach
// the sink in strict happens-before order and the sink is never written
// after Analyze returns.
type AnalyzeService struct {
	staging Stager
	loader  DocumentLoader
	ai      Analyzer
	cfg     config.AnalysisConfig
}

func NewAnalyzeService(staging Stager, loader DocumentLoader, ai Analyzer, cfg config.AnalysisConfig) *AnalyzeService {
	return &AnalyzeService{
		staging: staging,
		loader:  loader,
		ai:      ai,
		cfg:     cfg,
	}
}

// Analyze processes files in submission order. A file failure emits one
// error event; by default it aborts the remainder of the batch, with
// ContinueOnError it is skipped and later files still run. Exactly one
// summary event is emitted per successfully processed file, followed by at
// most one unified-analysis event.
func (s *AnalyzeService) Analyze(ctx context.Context, files []types.UploadedFile, emit types.EventSink) {
	results := make([]types.FileResult, 0, len(files))
	for _, file := range files {
		emit(types.ProgressEvent{Kind: types.EventProcessing, File: file.Name})

		res := s.processFile(ctx, file, emit)
		results = append(results, res)
		if res.Err != nil {
			emit(types.ProgressEvent{Kind: types.EventError, File: file.Name, Text: res.Err.Error()})
			if !s.cfg.ContinueOnError {
				return
			}
			continue
		}
		emit(types.ProgressEvent{Kind: types.EventFileSummary, File: file.Name, Text: res.Summary})
	}

	summaries := make([]string, 0, len(results))
	for _, res := range results {
		if res.Err == nil {
			summaries = append(summaries, res.Summary)
		}
	}
	if len(summaries) == 0 {
		emit(types.ProgressEvent{Kind: types.EventError, Text: "no documents could be analyzed"})
		return
	}

	emit(types.ProgressEvent{Kind: types.EventSynthesizing})
	analysis, err := s.ai.Synthesize(ctx, summaries)
	if err != nil {
		emit(types.ProgressEvent{Kind: types.EventError, Text: fmt.Sprintf("synthesis failed: %v", err)})
		return
	}
	emit(types.ProgressEvent{Kind: types.EventUnifiedAnalysis, Text: analysis})
}

// processFile stages one upload, chunks it and summarizes up to MaxSections
// leading chunks. The staging area is removed on every path.
func (s *AnalyzeService) processFile(ctx context.Context, file types.UploadedFile, emit types.EventSink) types.FileResult {
	res := types.FileResult{Name: file.Name}

	src, err := file.Open()
	if err != nil {
		res.Err = fmt.Errorf("open upload %s: %w", file.Name, err)
		return res
	}
	defer src.Close()

	path, cleanup, err := s.staging.Stage(src, file.Name)
	if err != nil {
		res.Err = fmt.Errorf("stage %s: %w", file.Name, err)
		return res
	}
	defer cleanup()

	chunks, err := s.loader.LoadChunks(ctx, path)
	if err != nil {
		res.Err = fmt.Errorf("load %s: %w", file.Name, err)
		return res
	}
	if len(chunks) == 0 {
		res.Err = fmt.Errorf("load %s: document produced no text", file.Name)
		return res
	}

	// Only the leading sections are summarized; anything past the cap is
	// dropped by policy, not by error.
	sections := len(chunks)
	if sections > s.cfg.MaxSections {
		sections = s.cfg.MaxSections
	}

	parts := make([]string, 0, sections)
	for i := 0; i < sections; i++ {
		emit(types.ProgressEvent{
			Kind:          types.EventSection,
			File:          file.Name,
			Section:       i + 1,
			TotalSections: sections,
		})
		summary, err := s.ai.Summarize(ctx, chunks[i].Content)
		if err != nil {
			res.Err = fmt.Errorf("summarize section %d of %s: %w", i+1, file.Name, err)
			return res
		}
		parts = append(parts, summary)
	}

	res.Summary = strings.TrimSpace(strings.Join(parts, " "))
	return res
}

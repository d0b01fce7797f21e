package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haint/paperlens/config"
	"github.com/haint/paperlens/types"
)

type fakeStager struct {
	err    error
	staged int
}

func (f *fakeStager) Stage(r io.Reader, fileName string) (string, func(), error) {
	if f.err != nil {
		return "", nil, f.err
	}
	f.staged++
	io.Copy(io.Discard, r)
	return "/tmp/fake/" + fileName, func() {}, nil
}

type fakeLoader struct {
	chunks int
	err    error
}

func (f *fakeLoader) LoadChunks(ctx context.Context, path string) ([]types.DocumentChunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]types.DocumentChunk, f.chunks)
	for i := range out {
		out[i] = types.DocumentChunk{Content: fmt.Sprintf("chunk %d of %s", i, path), Index: i}
	}
	return out, nil
}

type fakeAnalyzer struct {
	summarizeErr    error
	summarizeErrAt  int // 1-based call number that fails; 0 means summarizeErr applies to all
	synthesizeErr   error
	summarizeCalls  int
	synthesizeCalls int
	gotSummaries    []string
}

func (f *fakeAnalyzer) Summarize(ctx context.Context, text string) (string, error) {
	f.summarizeCalls++
	if f.summarizeErr != nil && (f.summarizeErrAt == 0 || f.summarizeErrAt == f.summarizeCalls) {
		return "", f.summarizeErr
	}
	return fmt.Sprintf("s%d", f.summarizeCalls), nil
}

func (f *fakeAnalyzer) Synthesize(ctx context.Context, summaries []string) (string, error) {
	f.synthesizeCalls++
	f.gotSummaries = summaries
	if f.synthesizeErr != nil {
		return "", f.synthesizeErr
	}
	return "one theme, two hypotheses, two experiments", nil
}

func upload(name string) types.UploadedFile {
	return types.UploadedFile{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("%PDF-1.4 fake")), nil
		},
	}
}

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		MaxSections:    5,
		Temperature:    0.3,
		MaxTokens:      500,
		MinHypotheses:  1,
		MaxHypotheses:  3,
		SynthesisWords: 500,
	}
}

func collectEvents(svc *AnalyzeService, files ...types.UploadedFile) []types.ProgressEvent {
	var events []types.ProgressEvent
	svc.Analyze(context.Background(), files, func(ev types.ProgressEvent) {
		events = append(events, ev)
	})
	return events
}

func kinds(events []types.ProgressEvent) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestAnalyzeEmitsOrderedEvents(t *testing.T) {
	ai := &fakeAnalyzer{}
	svc := NewAnalyzeService(&fakeStager{}, &fakeLoader{chunks: 3}, ai, testAnalysisConfig())

	events := collectEvents(svc, upload("a.pdf"), upload("b.pdf"))

	assert.Equal(t, []string{
		types.EventProcessing,
		types.EventSection, types.EventSection, types.EventSection,
		types.EventFileSummary,
		types.EventProcessing,
		types.EventSection, types.EventSection, types.EventSection,
		types.EventFileSummary,
		types.EventSynthesizing,
		types.EventUnifiedAnalysis,
	}, kinds(events))

	// Summaries come out in submission order.
	assert.Equal(t, "a.pdf", events[4].File)
	assert.Equal(t, "s1 s2 s3", events[4].Text)
	assert.Equal(t, "b.pdf", events[9].File)
	assert.Equal(t, "s4 s5 s6", events[9].Text)

	// Section events carry 1-based indices against the capped total.
	assert.Equal(t, 1, events[1].Section)
	assert.Equal(t, 3, events[1].TotalSections)

	require.Len(t, ai.gotSummaries, 2)
	assert.Equal(t, "one theme, two hypotheses, two experiments", events[11].Text)
}

func TestAnalyzeCapsSummarizedSections(t *testing.T) {
	ai := &fakeAnalyzer{}
	svc := NewAnalyzeService(&fakeStager{}, &fakeLoader{chunks: 8}, ai, testAnalysisConfig())

	events := collectEvents(svc, upload("long.pdf"))

	sections := 0
	for _, ev := range events {
		if ev.Kind == types.EventSection {
			sections++
			assert.Equal(t, 5, ev.TotalSections)
		}
	}
	assert.Equal(t, 5, sections, "chunks beyond the cap must never be summarized")
	assert.Equal(t, 5, ai.summarizeCalls)
}

func TestAnalyzeStagingFailureAbortsBatch(t *testing.T) {
	ai := &fakeAnalyzer{}
	svc := NewAnalyzeService(&fakeStager{err: errors.New("disk full")}, &fakeLoader{chunks: 3}, ai, testAnalysisConfig())

	events := collectEvents(svc, upload("a.pdf"), upload("b.pdf"))

	assert.Equal(t, []string{types.EventProcessing, types.EventError}, kinds(events))
	assert.Contains(t, events[1].Text, "disk full")
	assert.Zero(t, ai.summarizeCalls)
	assert.Zero(t, ai.synthesizeCalls)
}

func TestAnalyzeSummarizeFailureAbortsBatch(t *testing.T) {
	ai := &fakeAnalyzer{summarizeErr: errors.New("rate limited"), summarizeErrAt: 2}
	svc := NewAnalyzeService(&fakeStager{}, &fakeLoader{chunks: 3}, ai, testAnalysisConfig())

	events := collectEvents(svc, upload("a.pdf"), upload("b.pdf"))

	assert.Equal(t, []string{
		types.EventProcessing,
		types.EventSection, types.EventSection,
		types.EventError,
	}, kinds(events))
	assert.Zero(t, ai.synthesizeCalls)
}

func TestAnalyzeSynthesisFailure(t *testing.T) {
	ai := &fakeAnalyzer{synthesizeErr: errors.New("model unavailable")}
	svc := NewAnalyzeService(&fakeStager{}, &fakeLoader{chunks: 2}, ai, testAnalysisConfig())

	events := collectEvents(svc, upload("a.pdf"), upload("b.pdf"))

	got := kinds(events)
	assert.Equal(t, 2, count(got, types.EventFileSummary), "all file summaries precede the failure")
	assert.Equal(t, types.EventError, got[len(got)-1])
	assert.Zero(t, count(got, types.EventUnifiedAnalysis))
}

func TestAnalyzeContinueOnErrorSkipsBadFile(t *testing.T) {
	cfg := testAnalysisConfig()
	cfg.ContinueOnError = true
	ai := &fakeAnalyzer{}
	svc := NewAnalyzeService(&fakeStager{}, &fakeLoader{chunks: 2}, ai, cfg)

	bad := types.UploadedFile{
		Name: "broken.pdf",
		Open: func() (io.ReadCloser, error) { return nil, errors.New("gone") },
	}
	events := collectEvents(svc, bad, upload("ok.pdf"))

	got := kinds(events)
	assert.Equal(t, 1, count(got, types.EventError))
	assert.Equal(t, 1, count(got, types.EventFileSummary))
	assert.Equal(t, 1, count(got, types.EventUnifiedAnalysis))
	require.Len(t, ai.gotSummaries, 1)
}

func TestAnalyzeNoSuccessfulFilesSkipsSynthesis(t *testing.T) {
	cfg := testAnalysisConfig()
	cfg.ContinueOnError = true
	ai := &fakeAnalyzer{}
	svc := NewAnalyzeService(&fakeStager{}, &fakeLoader{err: errors.New("unparseable")}, ai, cfg)

	events := collectEvents(svc, upload("a.pdf"), upload("b.pdf"))

	got := kinds(events)
	assert.Equal(t, 3, count(got, types.EventError), "one per file plus the final one")
	assert.Zero(t, ai.synthesizeCalls)
	assert.Equal(t, "no documents could be analyzed", events[len(events)-1].Text)
}

func count(kinds []string, kind string) int {
	n := 0
	for _, k := range kinds {
		if k == kind {
			n++
		}
	}
	return n
}

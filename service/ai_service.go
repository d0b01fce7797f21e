package service

import "context"

// Analyzer is the LLM capability the analysis pipeline is built on. The
// hard work (summarization, cross-paper reasoning) is delegated entirely
// to the provider behind this interface.
type Analyzer interface {
	// Summarize returns a short summary of one chunk of paper text.
	Summarize(ctx context.Context, text string) (string, error)
	// Synthesize combines per-file summaries into one cross-document
	// analysis: a common theme, hypotheses, and proposed experiments.
	Synthesize(ctx context.Context, summaries []string) (string, error)
}

package types

// Event kinds written to the analysis stream, in emission order.
const (
	EventProcessing      = "processing"
	EventSection         = "section"
	EventFileSummary     = "file_summary"
	EventSynthesizing    = "synthesizing"
	EventUnifiedAnalysis = "unified_analysis"
	EventError           = "error"
)

// ProgressEvent is one unit of progress produced by the analysis pipeline.
// The handler decides how events are framed on the wire; the pipeline only
// guarantees their order.
type ProgressEvent struct {
	Kind          string `json:"kind"`
	File          string `json:"file,omitempty"`
	Section       int    `json:"section,omitempty"`
	TotalSections int    `json:"total_sections,omitempty"`
	Text          string `json:"text,omitempty"`
}

// EventSink receives pipeline events. Implementations must not retain the
// event past the call; the pipeline is the single sequential writer.
type EventSink func(ProgressEvent)

// FileResult is the outcome of processing one uploaded file.
type FileResult struct {
	Name    string
	Summary string
	Err     error
}

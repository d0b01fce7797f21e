package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/haint/paperlens/types"
)

// AnalysisPipeline is what the handler needs from the service layer.
type AnalysisPipeline interface {
	Analyze(ctx context.Context, files []types.UploadedFile, emit types.EventSink)
}

type AnalyzeHandler struct {
	pipeline AnalysisPipeline
}

func NewAnalyzeHandler(pipeline AnalysisPipeline) *AnalyzeHandler {
	return &AnalyzeHandler{
		pipeline: pipeline,
	}
}

// HandleAnalyze accepts a multipart POST with a repeated "files" field and
// streams analysis progress back over the open response. The default wire
// format is the legacy marker-delimited plain text; ?format=ndjson (or an
// application/x-ndjson Accept header) switches to one JSON event per line.
func (h *AnalyzeHandler) HandleAnalyze(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.String(http.StatusBadRequest, "No files uploaded")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.String(http.StatusBadRequest, "No files uploaded")
		return
	}

	files := make([]types.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		files = append(files, types.UploadedFile{
			Name: fh.Filename,
			Open: func() (io.ReadCloser, error) { return openUpload(fh) },
		})
	}

	ndjson := wantsNDJSON(c)
	if ndjson {
		c.Header("Content-Type", "application/x-ndjson")
	} else {
		c.Header("Content-Type", "text/plain; charset=utf-8")
	}
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)

	// A client that closes the connection cancels in-flight work, either
	// through the request context or through the first failed write.
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	enc := json.NewEncoder(c.Writer)
	emit := func(ev types.ProgressEvent) {
		var err error
		if ndjson {
			err = enc.Encode(ev)
		} else {
			_, err = io.WriteString(c.Writer, renderFragment(ev))
		}
		if err != nil {
			// Nobody is listening anymore; stop paying for LLM calls.
			cancel()
			return
		}
		c.Writer.Flush()
	}

	h.pipeline.Analyze(ctx, files, emit)
}

func openUpload(fh *multipart.FileHeader) (io.ReadCloser, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	return f, nil
}

func wantsNDJSON(c *gin.Context) bool {
	if c.Query("format") == "ndjson" {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/x-ndjson")
}

// renderFragment maps one pipeline event to the marker-delimited wire text.
// The "Summary for" and "Unified Analysis:" literals are load-bearing:
// marker-based clients key on them to rebuild the result.
func renderFragment(ev types.ProgressEvent) string {
	switch ev.Kind {
	case types.EventProcessing:
		return fmt.Sprintf("Processing %s...\n", ev.File)
	case types.EventSection:
		return fmt.Sprintf("🧠 Analyzing section %d of %d for %s\n", ev.Section, ev.TotalSections, ev.File)
	case types.EventFileSummary:
		return fmt.Sprintf("Summary for %s:\n%s\n\n", ev.File, ev.Text)
	case types.EventSynthesizing:
		return "🧪 Synthesizing findings...\n"
	case types.EventUnifiedAnalysis:
		return fmt.Sprintf("Unified Analysis:\n%s\n", ev.Text)
	case types.EventError:
		return fmt.Sprintf("Error: %s\n", ev.Text)
	}
	return ""
}

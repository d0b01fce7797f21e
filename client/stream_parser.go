// Package client rebuilds a structured analysis result from the streamed
// response body of the analyze endpoint.
package client

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/haint/paperlens/types"
)

// AnalysisResult is the structured form reconstructed from the stream:
// one summary per uploaded file, in submission order, plus the unified
// cross-document analysis.
type AnalysisResult struct {
	Summaries       []string
	UnifiedAnalysis string
	Errors          []string
}

const (
	summaryMarker  = "Summary for"
	analysisMarker = "Unified Analysis:"
	errorMarker    = "Error:"
)

// ParseStream incrementally consumes the legacy marker-delimited text
// stream and reconstructs the result. Boundary detection is plain
// substring search over whatever fragments the network delivers, exactly
// as the protocol's original consumer does it. That makes two failure
// modes inherent rather than bugs in this parser: a marker split across
// two reads goes undetected, and paper text that itself contains a marker
// shifts the boundaries or records a phantom error. Callers who need
// robust framing should request the NDJSON format and use ParseNDJSON
// instead.
func ParseStream(r io.Reader) (*AnalysisResult, error) {
	var accumulated strings.Builder
	var current strings.Builder
	collecting := false
	res := &AnalysisResult{}

	buf := make([]byte, 4096)
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			fragment := string(buf[:n])
			accumulated.WriteString(fragment)

			if idx := strings.Index(fragment, summaryMarker); idx != -1 {
				if collecting {
					res.Summaries = append(res.Summaries, strings.TrimSpace(current.String()))
					current.Reset()
				}
				collecting = true
				current.WriteString(fragment[idx+len(summaryMarker):])
			} else if collecting {
				current.WriteString(fragment)
			}

			if strings.Contains(fragment, analysisMarker) && collecting {
				res.Summaries = append(res.Summaries, strings.TrimSpace(current.String()))
				current.Reset()
				collecting = false
			}

			if idx := strings.Index(fragment, errorMarker); idx != -1 {
				msg := strings.TrimSpace(fragment[idx+len(errorMarker):])
				res.Errors = append(res.Errors, msg)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read stream: %w", readErr)
		}
	}

	// The stream ended before a Unified Analysis fragment arrived; keep
	// whatever was collected so far.
	if collecting {
		res.Summaries = append(res.Summaries, strings.TrimSpace(current.String()))
	}

	if parts := strings.Split(accumulated.String(), analysisMarker); len(parts) > 1 {
		res.UnifiedAnalysis = strings.TrimSpace(parts[len(parts)-1])
	}
	return res, nil
}

// ParseNDJSON consumes the structured event stream (one JSON event per
// line) and reconstructs the result. Unlike ParseStream it cannot be
// confused by marker text inside summaries.
func ParseNDJSON(r io.Reader) (*AnalysisResult, error) {
	res := &AnalysisResult{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var ev types.ProgressEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		switch ev.Kind {
		case types.EventFileSummary:
			res.Summaries = append(res.Summaries, ev.Text)
		case types.EventUnifiedAnalysis:
			res.UnifiedAnalysis = ev.Text
		case types.EventError:
			res.Errors = append(res.Errors, ev.Text)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	return res, nil
}

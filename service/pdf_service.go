package service

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/haint/paperlens/types"
)

// DocumentLoader converts a staged file path into an ordered sequence of
// bounded, overlapping text chunks.
type DocumentLoader interface {
	LoadChunks(ctx context.Context, path string) ([]types.DocumentChunk, error)
}

// PDFService handles PDF processing operations
type PDFService struct {
	maxChunkSize int // Maximum size of each text chunk
	overlapSize  int // Size of overlap between chunks
}

var DefaultDocumentServiceConfig = types.DocumentServiceConfig{
	MaxChunkSize: 5000,
	OverlapSize:  500,
}

// NewPDFService creates a new PDF service with configurable chunk sizes
func NewPDFService(config types.DocumentServiceConfig) *PDFService {
	return &PDFService{
		maxChunkSize: config.MaxChunkSize,
		overlapSize:  config.OverlapSize,
	}
}

// LoadChunks extracts the document text page by page and splits it into
// ordered overlapping chunks.
func (s *PDFService) LoadChunks(ctx context.Context, path string) ([]types.DocumentChunk, error) {
	pages, err := s.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	meta := types.DocumentMetadata{
		Source:     path,
		TotalPages: len(pages),
	}
	return s.Chunk(pages, meta), nil
}

// Load extracts cleaned text from every page of a PDF, in page order.
// Pages that yield no text are skipped with a warning instead of failing
// the whole document.
func (s *PDFService) Load(ctx context.Context, path string) ([]types.PageText, error) {
	totalPages, err := getNumPages(ctx, path)
	if err != nil {
		return nil, err
	}

	pages := make([]types.PageText, 0, totalPages)
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := extractPageText(ctx, path, pageNum)
		if err != nil {
			log.Printf("Warning: failed to extract text from page %d: %v", pageNum, err)
			continue
		}
		text = cleanText(text)
		if text == "" {
			continue
		}
		pages = append(pages, types.PageText{Page: pageNum, Text: text})
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no extractable text in %s", path)
	}
	return pages, nil
}

// Chunk splits the joined page text into overlapping chunks bounded by
// maxChunkSize, preferring sentence boundaries and falling back to word
// boundaries. Original order is preserved; neighboring chunks share
// overlapSize characters.
func (s *PDFService) Chunk(pages []types.PageText, metadata types.DocumentMetadata) []types.DocumentChunk {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		parts = append(parts, p.Text)
	}
	text := strings.TrimSpace(strings.Join(parts, " "))
	if text == "" {
		return nil
	}

	textLen := len(text)
	if textLen <= s.maxChunkSize {
		return []types.DocumentChunk{{Content: text, Index: 0, Metadata: metadata}}
	}

	var chunks []types.DocumentChunk
	currentPos := 0
	for currentPos < textLen {
		chunkEnd := currentPos + s.maxChunkSize
		if chunkEnd >= textLen {
			chunk := strings.TrimSpace(text[currentPos:])
			if chunk != "" {
				chunks = append(chunks, types.DocumentChunk{
					Content:  chunk,
					Index:    len(chunks),
					Metadata: metadata,
				})
			}
			break
		}

		// Find nearest sentence end
		sentenceEnd := chunkEnd
		for i := chunkEnd; i > currentPos; i-- {
			if text[i] == '.' || text[i] == '?' || text[i] == '!' {
				sentenceEnd = i + 1
				break
			}
		}

		// If no sentence end found, use word boundary
		if sentenceEnd == chunkEnd {
			for i := chunkEnd; i > currentPos; i-- {
				if text[i] == ' ' {
					sentenceEnd = i
					break
				}
			}
		}

		chunk := strings.TrimSpace(text[currentPos:sentenceEnd])
		if chunk != "" {
			chunks = append(chunks, types.DocumentChunk{
				Content:  chunk,
				Index:    len(chunks),
				Metadata: metadata,
			})
		}

		next := sentenceEnd - s.overlapSize
		if next <= currentPos {
			// Ensure we make progress
			next = sentenceEnd
		}
		currentPos = next
	}

	return chunks
}

// extractPageText extracts text from one page using the pdftotext utility.
func extractPageText(ctx context.Context, path string, pageNumber int) (string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext",
		"-f", strconv.Itoa(pageNumber),
		"-l", strconv.Itoa(pageNumber),
		"-enc", "UTF-8", "-nopgbrk",
		path, "-")
	var txtOut bytes.Buffer
	cmd.Stdout = &txtOut

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed for page %d: %w", pageNumber, err)
	}
	if trimmed := strings.TrimSpace(txtOut.String()); len(trimmed) > 0 {
		return trimmed, nil
	}
	return "", fmt.Errorf("got nothing at page %d", pageNumber)
}

// getNumPages uses pdfinfo to get the total number of pages in a PDF file
func getNumPages(ctx context.Context, path string) (int, error) {
	cmd := exec.CommandContext(ctx, "pdfinfo", path)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("error running pdfinfo: %w", err)
	}

	scanner := bufio.NewScanner(&out)
	re := regexp.MustCompile(`Pages:\s+(\d+)`)
	for scanner.Scan() {
		if matches := re.FindStringSubmatch(scanner.Text()); len(matches) == 2 {
			return strconv.Atoi(matches[1])
		}
	}

	return 0, fmt.Errorf("unable to determine page count from pdfinfo")
}

var textReplacer = strings.NewReplacer(
	"\u0000", "", // null character
	"\ufffd", "", // unicode replacement character
	"\u001b", "", // escape character
	"\r", "",
	"\f", "\n", // form feed to newline
	"  ", " ", // collapse double spaces
)

func cleanText(text string) string {
	return strings.TrimSpace(textReplacer.Replace(text))
}

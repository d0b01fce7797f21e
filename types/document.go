package types

import "io"

// UploadedFile is one file from a multipart submission. It lives only for
// the duration of the request that carried it.
type UploadedFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// PageText holds the extracted text of a single PDF page.
type PageText struct {
	Page int    // 1-based page number
	Text string // cleaned text content
}

// DocumentChunk represents an ordered slice of extracted document text
type DocumentChunk struct {
	Content  string           // The actual text content
	Index    int              // Position of the chunk within the document
	Metadata DocumentMetadata // Associated metadata for the chunk
}

// DocumentMetadata contains metadata information for document chunks
type DocumentMetadata struct {
	Title      string // Title of the source document
	Source     string // Source file path
	TotalPages int    // Total number of pages in the document
}

// DocumentServiceConfig contains configuration options for text chunking
type DocumentServiceConfig struct {
	MaxChunkSize int // Maximum size for text chunks
	OverlapSize  int // Size of overlap between chunks
}

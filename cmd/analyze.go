/*
Copyright © 2025 haint
*/
package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/haint/paperlens/client"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [files...]",
	Short: "Send PDFs to a running server and print the analysis",
	Long: `Uploads the given PDF files to a running paperlens server, follows the
streamed progress and prints the reconstructed per-file summaries and the
unified cross-paper analysis.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		serverURL, _ := cmd.Flags().GetString("server")
		ndjson, _ := cmd.Flags().GetBool("ndjson")
		verbose, _ := cmd.Flags().GetBool("verbose")

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		for _, path := range args {
			part, err := writer.CreateFormFile("files", filepath.Base(path))
			if err != nil {
				log.Fatalf("Failed to build request: %v", err)
			}
			f, err := os.Open(path)
			if err != nil {
				log.Fatalf("Failed to open %s: %v", path, err)
			}
			if _, err := io.Copy(part, f); err != nil {
				f.Close()
				log.Fatalf("Failed to read %s: %v", path, err)
			}
			f.Close()
		}
		if err := writer.Close(); err != nil {
			log.Fatalf("Failed to build request: %v", err)
		}

		url := serverURL + "/api/v1/analyze"
		if ndjson {
			url += "?format=ndjson"
		}
		resp, err := http.Post(url, writer.FormDataContentType(), body)
		if err != nil {
			log.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(resp.Body)
			log.Fatalf("Server returned %d: %s", resp.StatusCode, msg)
		}

		var stream io.Reader = resp.Body
		if verbose {
			stream = io.TeeReader(resp.Body, os.Stderr)
		}

		var result *client.AnalysisResult
		if ndjson {
			result, err = client.ParseNDJSON(stream)
		} else {
			result, err = client.ParseStream(stream)
		}
		if err != nil {
			log.Fatalf("Failed to read analysis stream: %v", err)
		}

		for i, summary := range result.Summaries {
			fmt.Printf("--- Summary %d ---\n%s\n\n", i+1, summary)
		}
		if result.UnifiedAnalysis != "" {
			fmt.Printf("--- Unified Analysis ---\n%s\n", result.UnifiedAnalysis)
		}
		for _, msg := range result.Errors {
			fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
		}
		if len(result.Errors) > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringP("server", "s", "http://localhost:8080", "Base URL of the paperlens server")
	analyzeCmd.Flags().Bool("ndjson", false, "Use the structured NDJSON stream format")
	analyzeCmd.Flags().BoolP("verbose", "v", false, "Echo the raw progress stream to stderr")
}

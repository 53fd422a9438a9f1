package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuanying/docx2html/internal/converter"
)

var rootCmd = &cobra.Command{
	Use:   "docx2html <input.docx>",
	Short: "Convert Word documents to HTML",
	Long: `docx2html is a command-line tool that converts Word (.docx)
documents to standalone HTML with a generated stylesheet and
extracted images.

It is a self-contained implementation in Go without external
dependencies like LibreOffice.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputPath := args[0]
		outDir, _ := cmd.Flags().GetString("output")
		maxWidth, _ := cmd.Flags().GetInt("max-image-width")

		if outDir == "" {
			outDir = strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		log.Printf("Converting: %s -> %s/", inputPath, outDir)

		c := converter.New(converter.Options{
			CacheDir:      outDir,
			MaxImageWidth: maxWidth,
		})
		result, err := c.ConvertFile(context.Background(), inputPath)
		if err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}

		for _, d := range result.Diagnostics {
			log.Printf("warning: %s", d)
		}

		page := "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n" +
			"<link rel=\"stylesheet\" href=\"styles.css\">\n</head>\n<body>\n" +
			result.HTML + "</body>\n</html>\n"
		if err := os.WriteFile(filepath.Join(outDir, "document.html"), []byte(page), 0o644); err != nil {
			return fmt.Errorf("writing HTML: %w", err)
		}
		if err := os.WriteFile(filepath.Join(outDir, "styles.css"), []byte(result.CSS), 0o644); err != nil {
			return fmt.Errorf("writing CSS: %w", err)
		}

		log.Printf("Done: %s", filepath.Join(outDir, "document.html"))
		return nil
	},
}

func init() {
	rootCmd.Flags().StringP("output", "o", "", "Output directory (default: input path without extension)")
	rootCmd.Flags().Int("max-image-width", 0, "Downscale extracted images wider than this many pixels (0 = keep original size)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Package export renders generated HTML documents to PDF using a headless
// browser. Requires Chrome/Chromium to be installed on the system.
package export

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultTimeout bounds a single print-to-PDF run, including browser startup.
const DefaultTimeout = 60 * time.Second

// Options configures the PDF rendering behavior.
type Options struct {
	Timeout         time.Duration
	PaperWidth      float64 // inches
	PaperHeight     float64 // inches
	MarginInches    float64 // applied to all four sides
	Landscape       bool
	PrintBackground bool
	Verbose         bool
}

// DefaultOptions returns US Letter portrait with half-inch margins.
func DefaultOptions() *Options {
	return &Options{
		Timeout:         DefaultTimeout,
		PaperWidth:      8.5,
		PaperHeight:     11.0,
		MarginInches:    0.5,
		PrintBackground: true,
	}
}

// RenderPDF renders an HTML document to PDF bytes in a headless browser.
// The document is written to a temp file and loaded via file:// so relative
// inline resources resolve the same way the browser preview would.
func RenderPDF(ctx context.Context, html string, opts *Options) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, fmt.Errorf("cannot render empty HTML document")
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	tmpFile, err := os.CreateTemp("", "docgen-*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp HTML file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmpFile.WriteString(html); err != nil {
		_ = tmpFile.Close()
		return nil, fmt.Errorf("failed to write temp HTML file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp HTML file: %w", err)
	}

	if opts.Verbose {
		log.Printf("[EXPORT] Rendering %d bytes of HTML to PDF", len(html))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, opts.Timeout)
	defer cancel()

	fileURL := "file://" + filepath.ToSlash(tmpPath)

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(fileURL),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var printErr error
			pdf, _, printErr = page.PrintToPDF().
				WithLandscape(opts.Landscape).
				WithPrintBackground(opts.PrintBackground).
				WithPaperWidth(opts.PaperWidth).
				WithPaperHeight(opts.PaperHeight).
				WithMarginTop(opts.MarginInches).
				WithMarginBottom(opts.MarginInches).
				WithMarginLeft(opts.MarginInches).
				WithMarginRight(opts.MarginInches).
				Do(ctx)
			return printErr
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("PDF rendering failed: %w", err)
	}

	if opts.Verbose {
		log.Printf("[EXPORT] Rendered PDF: %d bytes", len(pdf))
	}

	return pdf, nil
}

// WritePDF renders an HTML document and writes the PDF to path.
func WritePDF(ctx context.Context, html, path string, opts *Options) error {
	if path == "" {
		return fmt.Errorf("output path is empty")
	}

	pdf, err := RenderPDF(ctx, html, opts)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, pdf, 0644); err != nil {
		return fmt.Errorf("failed to write PDF file: %w", err)
	}

	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klippa-app/go-pdfium/webassembly"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/ivanvanderbyl/pdfblocks"
)

func main() {
	cmd := &cli.Command{
		Name:  "pdfblocks",
		Usage: "Reconstruct PDF files into structured HTML or markdown",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Input PDF file path",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: stdout)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: html or markdown",
				Value:   "html",
			},
			&cli.IntFlag{
				Name:  "start-page",
				Usage: "Start page number (0-indexed)",
				Value: -1,
			},
			&cli.IntFlag{
				Name:  "end-page",
				Usage: "End page number (0-indexed)",
				Value: -1,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file with converter settings and thresholds",
			},
			&cli.StringFlag{
				Name:  "images-dir",
				Usage: "Write images as PNG files to this directory instead of embedding them (markdown only)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Log processing metrics",
			},
		},
		Action: convertPDF,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func convertPDF(_ context.Context, cmd *cli.Command) error {
	inputPath := cmd.String("input")
	outputPath := cmd.String("output")
	format := cmd.String("format")
	startPage := cmd.Int("start-page")
	endPage := cmd.Int("end-page")
	imagesDir := cmd.String("images-dir")

	if format != "html" && format != "markdown" {
		return fmt.Errorf("unsupported format %q", format)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if cmd.Bool("verbose") {
		logger.SetLevel(logrus.DebugLevel)
	}

	config, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	config.Logger = logger
	config.EnableMetricsLogging = cmd.Bool("metrics")

	// Initialise pdfium
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to initialise pdfium: %w", err)
	}
	defer pool.Close()

	instance, err := pool.GetInstance(time.Second * 30)
	if err != nil {
		return fmt.Errorf("failed to get pdfium instance: %w", err)
	}

	converter := pdfblocks.NewConverterWithConfig(instance, config)

	info, err := converter.GetDocumentInfo(inputPath)
	if err != nil {
		return fmt.Errorf("failed to get document info: %w", err)
	}
	logger.WithField("pages", info.PageCount).Info("processing PDF")

	var doc *pdfblocks.Document
	if startPage >= 0 || endPage >= 0 {
		if startPage < 0 {
			startPage = 0
		}
		if endPage < 0 {
			endPage = info.PageCount - 1
		}
		logger.Infof("converting pages %d to %d", startPage+1, endPage+1)
		doc, err = converter.ConvertPageRange(inputPath, startPage, endPage)
	} else {
		doc, _, err = converter.ConvertFileWithMetrics(inputPath)
	}
	if err != nil {
		return fmt.Errorf("failed to convert PDF: %w", err)
	}

	for _, failure := range doc.Failures {
		logger.WithField("page", failure.Page).Warnf("page skipped: %v", failure.Err)
	}

	var output string
	switch format {
	case "markdown":
		resolver := pdfblocks.ImageResolver(nil)
		if imagesDir != "" {
			resolver = writeImageResolver(imagesDir)
		}
		output, err = doc.ToMarkdownWithImages(resolver)
	default:
		output, err = doc.ToHTML()
	}
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", format, err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(output), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		logger.WithField("path", outputPath).Info("output written")
	} else {
		fmt.Println(output)
	}

	return nil
}

// writeImageResolver writes each image to dir as a uniquely named PNG and links to it.
func writeImageResolver(dir string) pdfblocks.ImageResolver {
	return func(img pdfblocks.Image) (string, error) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create images directory: %w", err)
		}

		data, err := img.Raster.PNG()
		if err != nil {
			return "", err
		}

		path := filepath.Join(dir, uuid.NewString()+".png")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return "", fmt.Errorf("failed to write image: %w", err)
		}
		return path, nil
	}
}

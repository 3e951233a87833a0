package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fennal/squish"
)

var (
	outputPath = flag.String("o", "", "set location of the output file (default: <input>.min.<ext>)")
	quality    = flag.Int("q", 80, "set the compression quality (0 = lossiest, 100 = best)")
	resize     = flag.Float64("r", 1.0, "set the resize factor (1.0 = keep dimensions)")
	workers    = flag.Int("w", 0, "set the number of frame workers for animations (0 = one per CPU)")
	verbose    = flag.Bool("v", false, "log compression stats to stderr")
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	if *quality < 0 || *quality > 100 {
		log.Println("Quality must be between 0 and 100.")
		os.Exit(1)
	}

	if *resize <= 0.0 || *resize > 1.0 {
		log.Println("Resize factor must be greater than 0 and at most 1.")
		os.Exit(1)
	}

	if flag.Arg(0) == "" {
		log.Println("Usage: squish [options] input_image")
		log.Println("")
		log.Println("Squish recompresses a PNG, JPEG, WebP or GIF image by quantizing its")
		log.Println("colors, optionally downscaling it first. PNG input becomes indexed PNG,")
		log.Println("JPEG and WebP become JPEG, and animated GIFs stay animated GIFs.")
		log.Println("The output is never larger than the input.")
		log.Println("")
		log.Println("Options:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	input, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Println("Failed to read input file:", err)
		os.Exit(1)
	}

	opts := squish.Options{
		Quality:       uint8(*quality),
		ResizePercent: float32(*resize),
		Workers:       *workers,
	}
	if *verbose {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	start := time.Now()

	output, err := squish.Compress(input, opts)
	if err != nil {
		log.Println("Failed to compress image:", err)
		os.Exit(1)
	}

	path := *outputPath
	if path == "" {
		ext := filepath.Ext(flag.Arg(0))
		path = strings.TrimSuffix(flag.Arg(0), ext) + ".min" + ext
	}

	err = os.WriteFile(path, output, 0644)
	if err != nil {
		log.Println("Failed to write to output file:", err)
		os.Exit(1)
	}

	log.Printf("Done! %d bytes -> %d bytes (%.1f%%) in %s.\n",
		len(input), len(output),
		float64(len(output))/float64(len(input))*100.0,
		time.Since(start))
	log.Printf("Output written to \"%s\".\n", path)
}

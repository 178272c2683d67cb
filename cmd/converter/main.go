package main

import (
	"fmt"
	"os"
	"strconv"

	converter "github.com/BitBoy14/png-jpg-converter"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <input.png> <output.jpg> [quality 1-100]\n", os.Args[0])
		os.Exit(1)
	}

	inputFile := os.Args[1]
	outputFile := os.Args[2]
	quality := 85
	if len(os.Args) > 3 {
		q, err := strconv.Atoi(os.Args[3])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid quality %q\n", os.Args[3])
			os.Exit(1)
		}
		quality = q
	}
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}

	fmt.Printf("Loading PNG: %s\n", inputFile)

	pngData, err := os.ReadFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read input: %v\n", err)
		os.Exit(1)
	}

	res, err := converter.DecodePNG(pngData)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load PNG file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("PNG loaded: %dx%d\n", res.Width, res.Height)
	fmt.Printf("Encoding JPEG with quality %d...\n", quality)

	jpegData, err := converter.EncodeJPEG(res, quality)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JPEG: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outputFile, jpegData, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully converted to: %s\n", outputFile)
	fmt.Printf("File size: %d bytes\n", len(jpegData))
}

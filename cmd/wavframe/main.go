// This tool converts a 48 kHz mono 24-bit PCM wav file into a classic PCM wav
// file of exactly 1024 samples. The output is written through a temp file and
// an atomic rename unless -direct is passed.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cwbudde/wavframe"
	"github.com/cwbudde/wavframe/internal/atomicfile"
)

const appName = "wavframe"

var errUsage = errors.New("usage error")

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	if err == nil {
		return
	}

	if errors.Is(err, errUsage) {
		os.Exit(1)
	}

	log.Fatal(err)
}

func run(args []string, stdout, stderr io.Writer) error {
	flagSet := flag.NewFlagSet(appName, flag.ContinueOnError)
	flagSet.SetOutput(stderr)

	direct := flagSet.Bool("direct", false, "write the output in place, without the temp file and rename")
	verbose := flagSet.Bool("v", false, "log conversion details to stderr")

	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [flags] <input_24b_48k_mono.wav> <output.wav>\n", appName)
		flagSet.PrintDefaults()
	}

	err := flagSet.Parse(args)
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	if flagSet.NArg() != 2 {
		flagSet.Usage()
		return errUsage
	}

	inPath, outPath := flagSet.Arg(0), flagSet.Arg(1)

	logger := log.New(io.Discard, appName+": ", 0)
	if *verbose {
		logger.SetOutput(stderr)
	}

	strategy := "atomic"
	if *direct {
		strategy = "direct"
	}

	logger.Printf("converting %s -> %s (%s write)", inPath, outPath, strategy)

	res, err := wavframe.Convert(inPath, outPath, atomicfile.New(!*direct))
	if err != nil {
		return err
	}

	logger.Printf("decoded %d samples", res.InputFrames)

	switch {
	case res.InputFrames > res.Frames:
		logger.Printf("trimmed %d trailing samples", res.InputFrames-res.Frames)
	case res.InputFrames < res.Frames:
		logger.Printf("padded %d samples with silence", res.Frames-res.InputFrames)
	}

	if res.Clamped > 0 {
		logger.Printf("clamped %d samples to the 24-bit range", res.Clamped)
	}

	logger.Printf("wrote %d bytes", res.Bytes)

	fmt.Fprintf(stdout, "OK: wrote classic PCM WAV (fmt=16, tag=1), 24-bit/48k/mono, %d samples -> %s\n", res.Frames, outPath)

	return nil
}

package wavframe

import (
	"bytes"
	"errors"
	"fmt"
)

var errNilFileWriter = errors.New("can't convert with a nil file writer")

// FileWriter persists a fully encoded file. See internal/atomicfile for the
// direct and the durable implementations.
type FileWriter interface {
	WriteFile(path string, data []byte) error
}

// Result describes a completed conversion.
type Result struct {
	// InputFrames is the number of frames decoded from the input.
	InputFrames int
	// Frames is the number of frames written, always TargetFrames.
	Frames int
	// Clamped is the number of samples clamped to the 24-bit range.
	Clamped int
	// Bytes is the size of the written file.
	Bytes int
}

// Convert decodes inPath, fits it to TargetFrames and writes the classic PCM
// file to outPath through w. The input is fully decoded and validated before
// w is called, so rejected inputs never touch outPath.
func Convert(inPath, outPath string, w FileWriter) (*Result, error) {
	if w == nil {
		return nil, errNilFileWriter
	}

	in, err := DecodeFile(inPath)
	if err != nil {
		return nil, err
	}

	frames := FitFrames(in, TargetFrames)

	out := bytes.NewBuffer(make([]byte, 0, headerSize+TargetFrames*bytesPerSample(TargetBitDepth)))
	enc := NewEncoder(out)

	err = enc.Write(frames)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", outPath, err)
	}

	err = w.WriteFile(outPath, out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", outPath, err)
	}

	return &Result{
		InputFrames: len(in.Data),
		Frames:      enc.Frames(),
		Clamped:     enc.Clamped,
		Bytes:       out.Len(),
	}, nil
}

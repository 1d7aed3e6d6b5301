package wavframe

import (
	"errors"
	"fmt"
)

// Target profile. Inputs must match it and outputs are always written with it.
const (
	TargetSampleRate = 48000
	TargetChannels   = 1
	TargetBitDepth   = 24
	// TargetFrames is the fixed length of every converted file.
	TargetFrames = 1024
)

const (
	wavFormatPCM        = 1
	wavFormatIEEEFloat  = 3
	wavFormatExtensible = 0xFFFE

	fmtChunkSize = 16
	headerSize   = 44

	minPCMInt24 = -8388608
	maxPCMInt24 = 8388607
)

var (
	// ErrFormatMismatch is wrapped by every error reporting an input whose
	// header differs from the target profile.
	ErrFormatMismatch = errors.New("format mismatch")
	// ErrSampleRateMismatch is returned for inputs not sampled at 48 kHz.
	ErrSampleRateMismatch = fmt.Errorf("%w: sample rate", ErrFormatMismatch)
	// ErrChannelsMismatch is returned for inputs that are not mono.
	ErrChannelsMismatch = fmt.Errorf("%w: channels", ErrFormatMismatch)
	// ErrEncodingMismatch is returned for floating point inputs.
	ErrEncodingMismatch = fmt.Errorf("%w: encoding", ErrFormatMismatch)
	// ErrBitDepthMismatch is returned for inputs that are not 24-bit.
	ErrBitDepthMismatch = fmt.Errorf("%w: bit depth", ErrFormatMismatch)

	// ErrInvalidContainer is wrapped by every error reporting an input that
	// can't be parsed as a WAV file.
	ErrInvalidContainer = errors.New("invalid wav container")
	// ErrNotWavFile indicates the input doesn't start with a RIFF/WAVE header.
	ErrNotWavFile = fmt.Errorf("%w: not a RIFF/WAVE file", ErrInvalidContainer)
	// ErrFmtChunkNotFound indicates no fmt chunk precedes the data chunk.
	ErrFmtChunkNotFound = fmt.Errorf("%w: fmt chunk not found", ErrInvalidContainer)
	// ErrDuplicateFmtChunk indicates more than one fmt chunk before the data.
	ErrDuplicateFmtChunk = fmt.Errorf("%w: duplicate fmt chunk", ErrInvalidContainer)
	// ErrPCMDataNotFound is returned when the data chunk is missing.
	ErrPCMDataNotFound = fmt.Errorf("%w: PCM data not found", ErrInvalidContainer)
	// ErrTruncatedPCMData is returned when the data chunk is shorter than
	// its declared size.
	ErrTruncatedPCMData = fmt.Errorf("%w: truncated PCM data", ErrInvalidContainer)
	// ErrUnsupportedFormat is returned for format tags that are neither
	// integer PCM nor IEEE float.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported format tag", ErrInvalidContainer)
	// ErrInvalidBlockAlign is returned when the block align doesn't match the
	// channel count and bit depth.
	ErrInvalidBlockAlign = fmt.Errorf("%w: inconsistent block align", ErrInvalidContainer)

	// ErrDataTooLarge is returned when the samples don't fit in a RIFF chunk.
	ErrDataTooLarge = errors.New("sample data exceeds the RIFF size limit")
)

func bytesPerSample(bitDepth int) int {
	return (bitDepth + 7) / 8
}

func formatName(tag uint16) string {
	switch tag {
	case wavFormatPCM:
		return "integer PCM"
	case wavFormatIEEEFloat:
		return "IEEE float"
	default:
		return fmt.Sprintf("format tag %d", tag)
	}
}

package wavframe

import (
	"encoding/binary"
	"fmt"

	"github.com/go-audio/riff"
)

// FmtChunk stores the parsed WAV fmt chunk, including extensible metadata.
type FmtChunk struct {
	FormatTag      uint16
	NumChannels    uint16
	SampleRate     uint32
	AvgBytesPerSec uint32
	BlockAlign     uint16
	BitsPerSample  uint16
	Extensible     *FmtExtensible
}

// FmtExtensible stores WAVE_FORMAT_EXTENSIBLE extra fields.
type FmtExtensible struct {
	ValidBitsPerSample uint16
	ChannelMask        uint32
	SubFormat          [16]byte
}

// EffectiveFormatTag resolves the sub-format of extensible chunks.
func (f *FmtChunk) EffectiveFormatTag() uint16 {
	if f == nil {
		return 0
	}

	if f.FormatTag == wavFormatExtensible && f.Extensible != nil {
		return binary.LittleEndian.Uint16(f.Extensible.SubFormat[:2])
	}

	return f.FormatTag
}

func decodeFmtChunk(chunk *riff.Chunk) (*FmtChunk, error) {
	if chunk == nil {
		return nil, errNilChunk
	}

	if chunk.Size < fmtChunkSize {
		return nil, fmt.Errorf("%w: fmt chunk is %d bytes", ErrInvalidContainer, chunk.Size)
	}

	fc := &FmtChunk{}

	err := chunk.ReadLE(&fc.FormatTag)
	if err != nil {
		return nil, fmt.Errorf("failed to read wav format: %w", err)
	}

	err = chunk.ReadLE(&fc.NumChannels)
	if err != nil {
		return nil, fmt.Errorf("failed to read channels: %w", err)
	}

	err = chunk.ReadLE(&fc.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to read sample rate: %w", err)
	}

	err = chunk.ReadLE(&fc.AvgBytesPerSec)
	if err != nil {
		return nil, fmt.Errorf("failed to read avg bytes/sec: %w", err)
	}

	err = chunk.ReadLE(&fc.BlockAlign)
	if err != nil {
		return nil, fmt.Errorf("failed to read block align: %w", err)
	}

	err = chunk.ReadLE(&fc.BitsPerSample)
	if err != nil {
		return nil, fmt.Errorf("failed to read bit depth: %w", err)
	}

	// cbSize + 22 bytes of extensible fields
	if fc.FormatTag != wavFormatExtensible || chunk.Size < fmtChunkSize+2+22 {
		chunk.Drain()

		return fc, nil
	}

	var extraSize uint16

	err = chunk.ReadLE(&extraSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read fmt extension size: %w", err)
	}

	if extraSize < 22 {
		chunk.Drain()

		return fc, nil
	}

	ext := &FmtExtensible{}

	err = chunk.ReadLE(&ext.ValidBitsPerSample)
	if err != nil {
		return nil, fmt.Errorf("failed to read valid bits per sample: %w", err)
	}

	err = chunk.ReadLE(&ext.ChannelMask)
	if err != nil {
		return nil, fmt.Errorf("failed to read channel mask: %w", err)
	}

	err = chunk.ReadLE(&ext.SubFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to read sub format: %w", err)
	}

	fc.Extensible = ext

	chunk.Drain()

	return fc, nil
}

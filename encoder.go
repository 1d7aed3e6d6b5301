package wavframe

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

var (
	errNilBuffer       = errors.New("can't add a nil buffer")
	errAlreadyWroteHdr = errors.New("already wrote header")
	errNilEncoder      = errors.New("can't write a nil encoder")
	errNilWriter       = errors.New("can't write to a nil writer")
)

// Encoder writes samples as a classic 48 kHz mono 24-bit PCM WAV file:
// a RIFF/WAVE header, a 16-byte fmt chunk and a data chunk, nothing else.
//
// All size fields are computed from the buffer before anything is written,
// so the underlying writer doesn't need to seek.
type Encoder struct {
	w io.Writer

	// WrittenBytes counts every byte sent to the underlying writer.
	WrittenBytes int
	// Clamped counts the samples that were outside the 24-bit range.
	Clamped int

	frames      int
	wroteHeader bool
}

// NewEncoder creates an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Frames returns the number of frames written so far.
func (e *Encoder) Frames() int {
	if e == nil {
		return 0
	}

	return e.frames
}

// AddLE serializes and adds the passed value using little endian.
func (e *Encoder) AddLE(src any) error {
	e.WrittenBytes += binary.Size(src)

	err := binary.Write(e.w, binary.LittleEndian, src)
	if err != nil {
		return fmt.Errorf("failed to write little endian: %w", err)
	}

	return nil
}

// AddBE serializes and adds the passed value using big endian.
func (e *Encoder) AddBE(src any) error {
	e.WrittenBytes += binary.Size(src)

	err := binary.Write(e.w, binary.BigEndian, src)
	if err != nil {
		return fmt.Errorf("failed to write big endian: %w", err)
	}

	return nil
}

// Write encodes the whole buffer as one file. It can only be called once.
func (e *Encoder) Write(buf *audio.IntBuffer) error {
	if e == nil {
		return errNilEncoder
	}

	if e.w == nil {
		return errNilWriter
	}

	if buf == nil {
		return errNilBuffer
	}

	if e.wroteHeader {
		return errAlreadyWroteHdr
	}

	blockAlign := TargetChannels * bytesPerSample(TargetBitDepth)

	dataBytes := uint64(len(buf.Data)) * uint64(blockAlign)
	pad := dataBytes % 2
	// "WAVE" + fmt chunk + data chunk header
	riffSize := 4 + (8 + fmtChunkSize) + (8 + dataBytes + pad)

	if riffSize > math.MaxUint32 {
		return fmt.Errorf("%w: %d samples", ErrDataTooLarge, len(buf.Data))
	}

	e.wroteHeader = true

	err := e.writeHeader(uint32(riffSize))
	if err != nil {
		return err
	}

	err = e.AddBE(riff.DataFormatID)
	if err != nil {
		return fmt.Errorf("error encoding sound header %w", err)
	}

	err = e.AddLE(uint32(dataBytes))
	if err != nil {
		return fmt.Errorf("%w when writing wav data chunk size header", err)
	}

	err = e.writeSamples(buf.Data, int(pad))
	if err != nil {
		return err
	}

	return nil
}

// Encode returns the complete file for buf as a single byte slice.
func Encode(buf *audio.IntBuffer) ([]byte, error) {
	if buf == nil {
		return nil, errNilBuffer
	}

	out := bytes.NewBuffer(make([]byte, 0, headerSize+len(buf.Data)*bytesPerSample(TargetBitDepth)+1))

	err := NewEncoder(out).Write(buf)
	if err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

func (e *Encoder) writeHeader(riffSize uint32) error {
	err := e.AddBE(riff.RiffID)
	if err != nil {
		return err
	}

	err = e.AddLE(riffSize)
	if err != nil {
		return err
	}

	err = e.AddBE(riff.WavFormatID)
	if err != nil {
		return err
	}

	err = e.AddBE(riff.FmtID)
	if err != nil {
		return err
	}

	return e.writeFmtChunk()
}

func (e *Encoder) writeFmtChunk() error {
	blockAlign := TargetChannels * bytesPerSample(TargetBitDepth)

	chunk := &FmtChunk{
		FormatTag:      wavFormatPCM,
		NumChannels:    TargetChannels,
		SampleRate:     TargetSampleRate,
		AvgBytesPerSec: uint32(TargetSampleRate * blockAlign),
		BlockAlign:     uint16(blockAlign),
		BitsPerSample:  TargetBitDepth,
	}

	err := e.AddLE(uint32(fmtChunkSize))
	if err != nil {
		return err
	}

	err = e.AddLE(chunk.FormatTag)
	if err != nil {
		return err
	}

	err = e.AddLE(chunk.NumChannels)
	if err != nil {
		return fmt.Errorf("error encoding the number of channels - %w", err)
	}

	err = e.AddLE(chunk.SampleRate)
	if err != nil {
		return fmt.Errorf("error encoding the sample rate - %w", err)
	}

	err = e.AddLE(chunk.AvgBytesPerSec)
	if err != nil {
		return fmt.Errorf("error encoding the avg bytes per sec - %w", err)
	}

	err = e.AddLE(chunk.BlockAlign)
	if err != nil {
		return err
	}

	err = e.AddLE(chunk.BitsPerSample)
	if err != nil {
		return fmt.Errorf("error encoding bits per sample - %w", err)
	}

	return nil
}

func (e *Encoder) writeSamples(samples []int, pad int) error {
	// performance tweak: a single write for the whole data chunk
	data := make([]byte, 0, len(samples)*bytesPerSample(TargetBitDepth)+pad)

	for _, v := range samples {
		clamped := clampInt24(v)
		if int(clamped) != v {
			e.Clamped++
		}

		data = append(data, audio.Int32toInt24LEBytes(clamped)...)
		e.frames++
	}

	if pad > 0 {
		// RIFF chunks are word aligned; the pad isn't part of the data size.
		data = append(data, 0)
	}

	n, err := e.w.Write(data)
	e.WrittenBytes += n

	if err != nil {
		return fmt.Errorf("failed to write PCM data: %w", err)
	}

	return nil
}

func clampInt24(v int) int32 {
	if v > maxPCMInt24 {
		return maxPCMInt24
	}

	if v < minPCMInt24 {
		return minPCMInt24
	}

	return int32(v)
}

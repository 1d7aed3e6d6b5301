package wavframe

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

var (
	errNilChunk   = errors.New("nil chunk pointer")
	errNilDecoder = errors.New("can't decode with a nil decoder")
)

// Decoder reads 48 kHz mono 24-bit PCM WAV content.
//
// Any chunk layout is accepted as long as a single fmt chunk precedes the
// data chunk. Chunks other than fmt and data are skipped.
type Decoder struct {
	r      io.Reader
	parser *riff.Parser

	NumChans   uint16
	BitDepth   uint16
	SampleRate uint32
	// WavAudioFormat is the effective format tag, resolved through the
	// sub-format of extensible fmt chunks.
	WavAudioFormat uint16
	FmtChunk       *FmtChunk

	PCMSize  int
	PCMChunk *riff.Chunk

	err        error
	readHeader bool
}

// NewDecoder creates a decoder for the passed wav reader.
// The reader is consumed sequentially and never rewound.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:      r,
		parser: riff.New(r),
	}
}

// ReadInfo parses the container up to the start of the PCM data.
// It is safe to call multiple times; the first error is sticky.
func (d *Decoder) ReadInfo() error {
	if d == nil {
		return errNilDecoder
	}

	if d.readHeader {
		return d.err
	}

	d.readHeader = true
	d.err = d.readHeaders()

	return d.err
}

// Validate checks the parsed header against the target profile.
func (d *Decoder) Validate() error {
	err := d.ReadInfo()
	if err != nil {
		return err
	}

	if d.SampleRate != TargetSampleRate {
		return fmt.Errorf("%w: expected %d Hz, got %d (no resample)", ErrSampleRateMismatch, TargetSampleRate, d.SampleRate)
	}

	if d.NumChans != TargetChannels {
		return fmt.Errorf("%w: expected mono (%d channel), got %d", ErrChannelsMismatch, TargetChannels, d.NumChans)
	}

	if d.WavAudioFormat != wavFormatPCM {
		return fmt.Errorf("%w: expected %s, got %s", ErrEncodingMismatch, formatName(wavFormatPCM), formatName(d.WavAudioFormat))
	}

	if d.BitDepth != TargetBitDepth {
		return fmt.Errorf("%w: expected %d-bit PCM, got %d-bit", ErrBitDepthMismatch, TargetBitDepth, d.BitDepth)
	}

	return nil
}

// Format returns the audio format of the decoded content.
func (d *Decoder) Format() *audio.Format {
	if d == nil {
		return nil
	}

	return &audio.Format{
		NumChannels: int(d.NumChans),
		SampleRate:  int(d.SampleRate),
	}
}

// String implements the Stringer interface.
func (d *Decoder) String() string {
	if d == nil || d.FmtChunk == nil {
		return "Format: unknown"
	}

	return fmt.Sprintf("Format: %s - %d channel(s) @ %d / %d bits (%s)",
		d.parser.Format[:], d.NumChans, d.SampleRate, d.BitDepth, formatName(d.WavAudioFormat))
}

// FullPCMBuffer validates the input and returns all of its samples,
// sign-extended. The entire PCM data is held in memory.
func (d *Decoder) FullPCMBuffer() (*audio.IntBuffer, error) {
	err := d.Validate()
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(d.PCMChunk)
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}

	if len(data) < d.PCMSize {
		return nil, fmt.Errorf("%w: got %d of %d bytes", ErrTruncatedPCMData, len(data), d.PCMSize)
	}

	bPerSample := bytesPerSample(int(d.BitDepth))

	// a trailing partial sample is dropped
	buf := &audio.IntBuffer{
		Data:           make([]int, len(data)/bPerSample),
		Format:         d.Format(),
		SourceBitDepth: int(d.BitDepth),
	}

	for i := range buf.Data {
		buf.Data[i] = int(audio.Int24LETo32(data[i*bPerSample : i*bPerSample+bPerSample]))
	}

	return buf, nil
}

// DecodeFile opens, validates and fully decodes the file at path.
// The file is closed before returning.
func DecodeFile(path string) (*audio.IntBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf, err := NewDecoder(f).FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return buf, nil
}

func (d *Decoder) readHeaders() error {
	id, size, err := d.parser.IDnSize()
	if err != nil {
		return fmt.Errorf("%w: failed to read RIFF header: %v", ErrNotWavFile, err)
	}

	if id != riff.RiffID {
		return fmt.Errorf("%w: got %q", ErrNotWavFile, id[:])
	}

	d.parser.ID = id
	d.parser.Size = size

	err = binary.Read(d.r, binary.BigEndian, &d.parser.Format)
	if err != nil {
		return fmt.Errorf("%w: failed to read format: %v", ErrNotWavFile, err)
	}

	if d.parser.Format != riff.WavFormatID {
		return fmt.Errorf("%w: got form type %q", ErrNotWavFile, d.parser.Format[:])
	}

	for {
		chunk, err := d.nextChunk()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				if d.FmtChunk == nil {
					return ErrFmtChunkNotFound
				}

				return ErrPCMDataNotFound
			}

			return err
		}

		switch chunk.ID {
		case riff.FmtID:
			err = d.processFmtChunk(chunk)
			if err != nil {
				return err
			}

			d.skipPad(chunk)
		case riff.DataFormatID:
			if d.FmtChunk == nil {
				return ErrFmtChunkNotFound
			}

			d.PCMSize = chunk.Size
			d.PCMChunk = chunk

			return nil
		default:
			chunk.Drain()
			d.skipPad(chunk)
		}
	}
}

// nextChunk reads the next chunk header. Unlike riff.Parser.NextChunk the
// returned size excludes the word-alignment pad byte.
func (d *Decoder) nextChunk() (*riff.Chunk, error) {
	id, size, err := d.parser.IDnSize()
	if err != nil {
		return nil, fmt.Errorf("error reading chunk header - %w", err)
	}

	return &riff.Chunk{
		ID:   id,
		Size: int(size),
		R:    io.LimitReader(d.r, int64(size)),
	}, nil
}

// skipPad consumes the zero byte that follows odd-sized chunks. A missing
// pad at the end of the stream is tolerated.
func (d *Decoder) skipPad(chunk *riff.Chunk) {
	if chunk.Size%2 == 0 {
		return
	}

	var pad [1]byte

	_, _ = io.ReadFull(d.r, pad[:])
}

func (d *Decoder) processFmtChunk(chunk *riff.Chunk) error {
	if d.FmtChunk != nil {
		return ErrDuplicateFmtChunk
	}

	fc, err := decodeFmtChunk(chunk)
	if err != nil {
		if errors.Is(err, ErrInvalidContainer) {
			return err
		}

		return fmt.Errorf("%w: failed to decode fmt chunk: %v", ErrInvalidContainer, err)
	}

	d.FmtChunk = fc
	d.NumChans = fc.NumChannels
	d.BitDepth = fc.BitsPerSample
	d.SampleRate = fc.SampleRate
	d.WavAudioFormat = fc.EffectiveFormatTag()

	if d.WavAudioFormat != wavFormatPCM && d.WavAudioFormat != wavFormatIEEEFloat {
		return fmt.Errorf("%w: %d", ErrUnsupportedFormat, d.WavAudioFormat)
	}

	want := int(fc.NumChannels) * bytesPerSample(int(fc.BitsPerSample))
	if int(fc.BlockAlign) != want {
		return fmt.Errorf("%w: got %d, want %d for %d channel(s) @ %d bits",
			ErrInvalidBlockAlign, fc.BlockAlign, want, fc.NumChannels, fc.BitsPerSample)
	}

	return nil
}

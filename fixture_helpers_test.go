package wavframe

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

type testChunk struct {
	id   string
	data []byte
}

// wavFixture describes an input file built byte by byte so every header
// field can be set to an invalid value.
type wavFixture struct {
	formatTag  uint16
	channels   uint16
	sampleRate uint32
	bitDepth   uint16
	blockAlign uint16 // zero means computed
	// extensible wraps formatTag in a WAVE_FORMAT_EXTENSIBLE fmt chunk.
	extensible bool

	beforeFmt  []testChunk
	beforeData []testChunk
	afterData  []testChunk

	noFmt  bool
	noData bool
	// dataSize overrides the declared data chunk size when non zero.
	dataSize uint32
}

func pcm24Fixture() wavFixture {
	return wavFixture{
		formatTag:  wavFormatPCM,
		channels:   1,
		sampleRate: 48000,
		bitDepth:   24,
	}
}

func (f wavFixture) build(samples []int) []byte {
	body := new(bytes.Buffer)
	body.WriteString("WAVE")

	for _, ch := range f.beforeFmt {
		writeTestChunk(body, ch)
	}

	if !f.noFmt {
		writeTestChunk(body, testChunk{id: "fmt ", data: f.fmtPayload()})
	}

	for _, ch := range f.beforeData {
		writeTestChunk(body, ch)
	}

	if !f.noData {
		data := f.samplePayload(samples)

		size := uint32(len(data))
		if f.dataSize != 0 {
			size = f.dataSize
		}

		body.WriteString("data")
		binary.Write(body, binary.LittleEndian, size)
		body.Write(data)

		if len(data)%2 == 1 && len(f.afterData) > 0 {
			body.WriteByte(0)
		}
	}

	for _, ch := range f.afterData {
		writeTestChunk(body, ch)
	}

	out := new(bytes.Buffer)
	out.WriteString("RIFF")
	binary.Write(out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())

	return out.Bytes()
}

func (f wavFixture) fmtPayload() []byte {
	blockAlign := f.blockAlign
	if blockAlign == 0 {
		blockAlign = f.channels * uint16(bytesPerSample(int(f.bitDepth)))
	}

	tag := f.formatTag
	if f.extensible {
		tag = wavFormatExtensible
	}

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, tag)
	binary.Write(buf, binary.LittleEndian, f.channels)
	binary.Write(buf, binary.LittleEndian, f.sampleRate)
	binary.Write(buf, binary.LittleEndian, f.sampleRate*uint32(blockAlign))
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, f.bitDepth)

	if f.extensible {
		subFormat := [16]byte{0, 0, 0, 0, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}
		binary.LittleEndian.PutUint32(subFormat[:4], uint32(f.formatTag))

		binary.Write(buf, binary.LittleEndian, uint16(22))
		binary.Write(buf, binary.LittleEndian, f.bitDepth)
		binary.Write(buf, binary.LittleEndian, uint32(0x4)) // front center
		buf.Write(subFormat[:])
	}

	return buf.Bytes()
}

// samplePayload stores the low bytes of each sample, little endian.
func (f wavFixture) samplePayload(samples []int) []byte {
	n := bytesPerSample(int(f.bitDepth))
	out := make([]byte, 0, len(samples)*n)

	for _, s := range samples {
		u := uint32(int32(s))
		for b := 0; b < n; b++ {
			out = append(out, byte(u>>(8*b)))
		}
	}

	return out
}

func writeTestChunk(buf *bytes.Buffer, ch testChunk) {
	buf.WriteString(ch.id)
	binary.Write(buf, binary.LittleEndian, uint32(len(ch.data)))
	buf.Write(ch.data)

	if len(ch.data)%2 == 1 {
		buf.WriteByte(0)
	}
}

func writeFixtureFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)

	err := os.WriteFile(path, data, 0o644)
	if err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}

	return path
}

func rampSamples(n int) []int {
	out := make([]int, n)
	for i := range out {
		// spread over the full 24-bit range, both signs
		out[i] = (i*7919)%(maxPCMInt24*2+1) + minPCMInt24
	}

	return out
}

package wavframe

import "github.com/go-audio/audio"

// FitFrames returns a copy of buf holding exactly frames samples.
// Extra samples are dropped from the end, missing samples are zero-padded.
// The input buffer is never modified and the result never shares its
// backing array.
func FitFrames(buf *audio.IntBuffer, frames int) *audio.IntBuffer {
	frames = max(frames, 0)

	out := &audio.IntBuffer{
		Data: make([]int, frames),
		Format: &audio.Format{
			NumChannels: TargetChannels,
			SampleRate:  TargetSampleRate,
		},
		SourceBitDepth: TargetBitDepth,
	}

	if buf == nil {
		return out
	}

	if buf.Format != nil {
		format := *buf.Format
		out.Format = &format
	}

	if buf.SourceBitDepth > 0 {
		out.SourceBitDepth = buf.SourceBitDepth
	}

	copy(out.Data, buf.Data)

	return out
}

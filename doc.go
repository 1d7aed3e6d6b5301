// Package wavframe converts 48 kHz mono 24-bit PCM WAV files into fixed-length
// classic PCM WAV files.
//
// The pipeline has three steps, each usable on its own:
//
//   - Decoder / DecodeFile strictly validates the input header and returns
//     its samples sign-extended in an audio.IntBuffer.
//   - FitFrames trims or zero-pads the samples to an exact frame count.
//   - Encoder / Encode writes the canonical 44-byte header followed by the
//     samples, clamped to the 24-bit range.
//
// Convert chains them and hands the encoded bytes to a FileWriter, typically
// one of the writers from internal/atomicfile.
package wavframe

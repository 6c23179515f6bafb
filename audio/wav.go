// Package audio moves rendered buffers in and out of the process: WAV files
// and the system speaker.
package audio

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"go-abcsynth/debug"
	"go-abcsynth/synth"
)

const (
	bitDepth      = 16
	pcmFormat     = 1
	fullScale16   = 32767.0
	unsignedShift = 128 // 8-bit WAV samples are unsigned
)

// WriteWAV saves a buffer as 16-bit mono PCM at synth.SampleRate
func WriteWAV(path string, buf synth.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, synth.SampleRate, bitDepth, 1, pcmFormat)
	intBuf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: 1,
			SampleRate:  synth.SampleRate,
		},
		Data:           synth.Quantize(buf),
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(intBuf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	debug.Log("wav", "wrote %s samples=%d seconds=%.2f", path, len(buf), buf.Seconds())
	return nil
}

// ReadWAV decodes a PCM WAV file into mono floats in [-1, 1].
// Channels are averaged; the file's own sample rate is reported, not converted.
func ReadWAV(path string) (synth.Buffer, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", synth.ErrLoadFailure, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: invalid WAV file: %s", synth.ErrLoadFailure, path)
	}
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: decode %s: %w", synth.ErrLoadFailure, path, err)
	}

	depth := int(dec.BitDepth)
	channels := int(dec.NumChans)
	if depth == 0 || channels == 0 {
		return nil, 0, fmt.Errorf("%w: unknown format in %s", synth.ErrLoadFailure, path)
	}

	scale := float64(int(1)<<(depth-1)) - 1
	if depth == 16 {
		scale = fullScale16
	}
	offset := 0
	if depth == 8 {
		offset = unsignedShift
	}

	frames := len(pcm.Data) / channels
	out := make(synth.Buffer, frames)
	for i := range out {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += float64(pcm.Data[i*channels+c]-offset) / scale
		}
		out[i] = sum / float64(channels)
	}

	rate := int(dec.SampleRate)
	debug.Log("wav", "read %s rate=%d channels=%d depth=%d frames=%d", path, rate, channels, depth, frames)
	return out, rate, nil
}

// Package audioconv turns audio files into the 16 kHz mono float32 PCM that
// whisper expects, and writes captured PCM back out as WAV.
package audioconv

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

const TargetRate = 16000

type Format string

const (
	FormatUnknown Format = ""
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatOgg     Format = "ogg"
)

type Options struct {
	MaxSamples int // 0 = no limit
}

// pcm is decoded audio before it is brought to TargetRate mono.
type pcm struct {
	samples  []float32 // interleaved
	rate     int
	channels int
}

func (p pcm) mono16k(opt Options) []float32 {
	x := Downmix(p.samples, p.channels)
	x = Resample(x, p.rate, TargetRate)
	if opt.MaxSamples > 0 && len(x) > opt.MaxSamples {
		x = x[:opt.MaxSamples]
	}
	return x
}

// ConvertFileToPCM16k decodes a wav, mp3 or ogg (vorbis or opus) file. The
// extension picks the decoder; anything else is sniffed by its magic bytes.
func ConvertFileToPCM16k(ctx context.Context, path string, opt Options) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	format := formatFromExt(path)
	if format == FormatUnknown {
		if format, err = Sniff(f); err != nil {
			return nil, err
		}
	}

	var p pcm
	switch format {
	case FormatWAV:
		p, err = decodeWAV(f)
	case FormatMP3:
		p, err = decodeMP3(f)
	case FormatOgg:
		p, err = decodeOgg(f)
	default:
		return nil, fmt.Errorf("unsupported audio format %q (want wav, mp3 or ogg)", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}

	return p.mono16k(opt), nil
}

func formatFromExt(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return FormatWAV
	case ".mp3":
		return FormatMP3
	case ".ogg", ".oga", ".opus":
		return FormatOgg
	}
	return FormatUnknown
}

// Sniff identifies the container from its first bytes and rewinds r.
func Sniff(r io.ReadSeeker) (Format, error) {
	magic, _ := bufio.NewReader(r).Peek(4)
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return FormatUnknown, err
	}

	switch {
	case bytes.Equal(magic, []byte("RIFF")):
		return FormatWAV, nil
	case bytes.Equal(magic, []byte("OggS")):
		return FormatOgg, nil
	case bytes.HasPrefix(magic, []byte("ID3")),
		len(magic) >= 2 && magic[0] == 0xFF && magic[1]&0xE0 == 0xE0:
		return FormatMP3, nil
	}
	return FormatUnknown, nil
}

func decodeWAV(r io.ReadSeeker) (pcm, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return pcm{}, errors.New("invalid wav")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return pcm{}, err
	}
	if buf == nil || len(buf.Data) == 0 {
		return pcm{}, errors.New("empty wav")
	}

	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = 16
	}

	p := pcm{samples: intToFloat32(buf.Data, depth), rate: 44100, channels: 1}
	if buf.Format != nil {
		if buf.Format.NumChannels > 0 {
			p.channels = buf.Format.NumChannels
		}
		if buf.Format.SampleRate > 0 {
			p.rate = buf.Format.SampleRate
		}
	}
	return p, nil
}

// go-mp3 always yields 16-bit little-endian stereo.
func decodeMP3(r io.Reader) (pcm, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return pcm{}, err
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return pcm{}, err
	}

	ints := make([]int16, len(raw)/2)
	if err := binary.Read(bytes.NewReader(raw[:len(ints)*2]), binary.LittleEndian, ints); err != nil {
		return pcm{}, err
	}

	rate := dec.SampleRate()
	if rate <= 0 {
		rate = 44100
	}
	return pcm{samples: int16ToFloat32(ints), rate: rate, channels: 2}, nil
}

// decodeOgg tries vorbis first, then opus.
func decodeOgg(r io.ReadSeeker) (pcm, error) {
	samples, format, verr := oggvorbis.ReadAll(r)
	if verr == nil && format != nil && format.Channels > 0 && format.SampleRate > 0 {
		return pcm{samples: samples, rate: format.SampleRate, channels: format.Channels}, nil
	}
	if verr == nil {
		verr = errors.New("invalid vorbis stream")
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return pcm{}, err
	}
	p, oerr := decodeOpus(r)
	if oerr != nil {
		return pcm{}, fmt.Errorf("neither vorbis (%v) nor opus (%w)", verr, oerr)
	}
	return p, nil
}

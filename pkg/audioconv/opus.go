package audioconv

import (
	"errors"
	"io"

	popus "github.com/pekim/opus"
)

const opusRate = 48000

func decodeOpus(r io.ReadSeeker) (pcm, error) {
	dec, err := popus.NewDecoder(r)
	if err != nil {
		return pcm{}, err
	}
	defer dec.Destroy()

	ch := dec.ChannelCount()
	if ch <= 0 {
		ch = 1
	}

	var (
		out []float32
		buf = make([]int16, opusRate/2*ch)
	)
	for {
		n, err := dec.Read(buf) // samples per channel
		if n > 0 {
			out = append(out, int16ToFloat32(buf[:n*ch])...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return pcm{}, err
		}
	}

	if len(out) == 0 {
		return pcm{}, errors.New("empty opus stream")
	}
	return pcm{samples: out, rate: opusRate, channels: ch}, nil
}

package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	formatPCM        = 1
	formatIEEEFloat  = 3
	formatExtensible = 0xFFFE
)

var ErrInvalidWAV = errors.New("invalid WAV data")

// Waveform is mono 16-bit PCM audio.
type Waveform struct {
	Samples    []int16
	SampleRate int
}

func (w *Waveform) Duration() float64 {
	if w.SampleRate <= 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

// EncodeWAV wraps the waveform in a 16-bit PCM mono RIFF container.
func EncodeWAV(w *Waveform) ([]byte, error) {
	if w.SampleRate <= 0 {
		return nil, fmt.Errorf("encoding WAV: sample rate %d", w.SampleRate)
	}

	var buf bytes.Buffer

	dataSize := len(w.Samples) * 2
	fileSize := 36 + dataSize

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(fileSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(formatPCM))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(w.SampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(w.SampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	binary.Write(&buf, binary.LittleEndian, w.Samples)

	return buf.Bytes(), nil
}

type fmtChunk struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// DecodeWAV reads 16-bit PCM or 32-bit float WAV data. Multi-channel input is
// downmixed to mono by averaging.
func DecodeWAV(data []byte) (*Waveform, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: missing RIFF/WAVE header", ErrInvalidWAV)
	}

	var (
		format  *fmtChunk
		payload []byte
	)

	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		start := offset + 8
		end := start + size
		if end > len(data) {
			// Streaming writers leave the data size unset; take the rest.
			if id != "data" {
				return nil, fmt.Errorf("%w: truncated %q chunk", ErrInvalidWAV, id)
			}
			end = len(data)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("%w: short fmt chunk", ErrInvalidWAV)
			}
			var f fmtChunk
			if err := binary.Read(bytes.NewReader(data[start:start+16]), binary.LittleEndian, &f); err != nil {
				return nil, fmt.Errorf("reading fmt chunk: %w", err)
			}
			format = &f
		case "data":
			payload = data[start:end]
		}

		offset = end + size%2
	}

	if format == nil {
		return nil, fmt.Errorf("%w: missing fmt chunk", ErrInvalidWAV)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: missing data chunk", ErrInvalidWAV)
	}
	if format.Channels == 0 {
		return nil, fmt.Errorf("%w: zero channels", ErrInvalidWAV)
	}

	samples, err := decodeSamples(format, payload)
	if err != nil {
		return nil, err
	}

	return &Waveform{
		Samples:    downmix(samples, int(format.Channels)),
		SampleRate: int(format.SampleRate),
	}, nil
}

func decodeSamples(f *fmtChunk, payload []byte) ([]int16, error) {
	switch {
	case (f.AudioFormat == formatPCM || f.AudioFormat == formatExtensible) && f.BitsPerSample == 16:
		out := make([]int16, len(payload)/2)
		for i := range out {
			out[i] = int16(binary.LittleEndian.Uint16(payload[i*2:]))
		}
		return out, nil
	case (f.AudioFormat == formatIEEEFloat || f.AudioFormat == formatExtensible) && f.BitsPerSample == 32:
		floats := make([]float32, len(payload)/4)
		for i := range floats {
			floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
		}
		return FloatToPCM16(floats), nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %d with %d bits", ErrInvalidWAV, f.AudioFormat, f.BitsPerSample)
	}
}

func downmix(samples []int16, channels int) []int16 {
	if channels == 1 {
		return samples
	}
	out := make([]int16, len(samples)/channels)
	for i := range out {
		var sum int
		for c := 0; c < channels; c++ {
			sum += int(samples[i*channels+c])
		}
		out[i] = int16(sum / channels)
	}
	return out
}

// FloatToPCM16 converts normalized samples, clipping anything outside [-1, 1].
func FloatToPCM16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		out[i] = int16(s * math.MaxInt16)
	}
	return out
}

func PCM16ToFloat(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / math.MaxInt16
	}
	return out
}

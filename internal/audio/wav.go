// Package audio inspects extracted WAV files: stream parameters, duration
// and signal level. The pipeline uses it to log what was extracted and to
// skip transcribing audio that is effectively silent.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"
)

var (
	ErrInvalidWAV     = errors.New("invalid wav file")
	ErrUnsupportedWAV = errors.New("unsupported wav format")
)

// Info summarizes one WAV file.
type Info struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	Duration      time.Duration
	RMSdBFS       float64
	PeakdBFS      float64
	Samples       int64
}

// IsSilent reports whether the signal level sits below the threshold. The
// peak is allowed 6 dB of headroom above the RMS threshold so a single click
// does not defeat the gate.
func (i Info) IsSilent(thresholdDBFS float64) bool {
	if i.Samples == 0 {
		return true
	}
	return i.RMSdBFS <= thresholdDBFS && i.PeakdBFS <= thresholdDBFS+6
}

// ReadInfo parses the WAV at path and measures its signal.
func ReadInfo(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	header := make([]byte, 12)
	if _, err := io.ReadFull(f, header); err != nil {
		return Info{}, fmt.Errorf("%w: short header", ErrInvalidWAV)
	}
	if string(header[:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return Info{}, ErrInvalidWAV
	}

	var (
		format     uint16
		channels   uint16
		sampleRate uint32
		bits       uint16
		data       []byte
		hasFmt     bool
	)

	for {
		chunkHeader := make([]byte, 8)
		if _, err := io.ReadFull(f, chunkHeader); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return Info{}, fmt.Errorf("read wav chunk header: %w", err)
		}

		chunkID := string(chunkHeader[:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		payload := make([]byte, chunkSize)
		if _, err := io.ReadFull(f, payload); err != nil {
			return Info{}, fmt.Errorf("read wav chunk %s: %w", chunkID, err)
		}
		if chunkSize%2 != 0 {
			if _, err := f.Seek(1, io.SeekCurrent); err != nil {
				return Info{}, fmt.Errorf("seek wav chunk padding: %w", err)
			}
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return Info{}, ErrInvalidWAV
			}
			format = binary.LittleEndian.Uint16(payload[0:2])
			channels = binary.LittleEndian.Uint16(payload[2:4])
			sampleRate = binary.LittleEndian.Uint32(payload[4:8])
			bits = binary.LittleEndian.Uint16(payload[14:16])
			hasFmt = true
		case "data":
			data = payload
		}
	}

	if !hasFmt || data == nil {
		return Info{}, ErrInvalidWAV
	}
	if sampleRate == 0 || channels == 0 {
		return Info{}, ErrInvalidWAV
	}
	if err := validateFormat(format, bits); err != nil {
		return Info{}, err
	}

	peak, sumSquares, samples, err := measure(data, format, bits)
	if err != nil {
		return Info{}, err
	}

	info := Info{
		SampleRate:    int(sampleRate),
		Channels:      int(channels),
		BitsPerSample: int(bits),
		Samples:       samples,
		RMSdBFS:       math.Inf(-1),
		PeakdBFS:      math.Inf(-1),
	}

	frames := samples / int64(channels)
	info.Duration = time.Duration(float64(frames) / float64(sampleRate) * float64(time.Second))

	if samples > 0 {
		rms := math.Sqrt(sumSquares / float64(samples))
		info.RMSdBFS = toDBFS(rms)
		info.PeakdBFS = toDBFS(peak)
	}

	return info, nil
}

func validateFormat(format, bits uint16) error {
	switch format {
	case 1: // integer PCM
		switch bits {
		case 8, 16, 24, 32:
			return nil
		}
	case 3: // IEEE float
		switch bits {
		case 32, 64:
			return nil
		}
	}
	return ErrUnsupportedWAV
}

func measure(data []byte, format, bits uint16) (peak, sumSquares float64, samples int64, err error) {
	step := int(bits / 8)
	if step == 0 {
		return 0, 0, 0, ErrUnsupportedWAV
	}

	for i := 0; i+step <= len(data); i += step {
		value, err := decodeSample(data[i:i+step], format, bits)
		if err != nil {
			return 0, 0, 0, err
		}

		if abs := math.Abs(value); abs > peak {
			peak = abs
		}
		sumSquares += value * value
		samples++
	}

	return peak, sumSquares, samples, nil
}

func decodeSample(sample []byte, format, bits uint16) (float64, error) {
	if format == 3 {
		switch bits {
		case 32:
			return float64(math.Float32frombits(binary.LittleEndian.Uint32(sample))), nil
		case 64:
			return math.Float64frombits(binary.LittleEndian.Uint64(sample)), nil
		}
		return 0, ErrUnsupportedWAV
	}

	switch bits {
	case 8:
		return (float64(sample[0]) - 128.0) / 128.0, nil
	case 16:
		return float64(int16(binary.LittleEndian.Uint16(sample))) / 32768.0, nil
	case 24:
		v := int32(sample[0]) | int32(sample[1])<<8 | int32(sample[2])<<16
		if v&0x800000 != 0 {
			v |= ^0xFFFFFF
		}
		return float64(v) / 8388608.0, nil
	case 32:
		return float64(int32(binary.LittleEndian.Uint32(sample))) / 2147483648.0, nil
	}
	return 0, ErrUnsupportedWAV
}

func toDBFS(amplitude float64) float64 {
	if amplitude <= 0 {
		return math.Inf(-1)
	}
	return 20.0 * math.Log10(amplitude)
}

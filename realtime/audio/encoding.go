package audio

import "encoding/binary"

const (
	// CaptureSampleRate is the PCM16 rate the capture backends produce.
	CaptureSampleRate = 24000
	// TrackSampleRate is the G.711 rate on the outbound RTP track.
	TrackSampleRate = 8000
)

const (
	mulawBias = 0x84
	mulawClip = 32635
)

// EncodePCMU converts little-endian PCM16 at CaptureSampleRate into G.711
// μ-law at TrackSampleRate by decimation. A trailing odd byte is dropped.
func EncodePCMU(pcm []byte) []byte {
	const step = CaptureSampleRate / TrackSampleRate
	samples := len(pcm) / 2
	out := make([]byte, 0, samples/step+1)
	for i := 0; i < samples; i += step {
		sample := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		out = append(out, encodeMulaw(sample))
	}
	return out
}

func encodeMulaw(sample int16) byte {
	value := int32(sample)
	sign := byte(0)
	if value < 0 {
		value = -value
		sign = 0x80
	}
	if value > mulawClip {
		value = mulawClip
	}
	value += mulawBias

	exponent := byte(7)
	for mask := int32(0x4000); exponent > 0 && value&mask == 0; mask >>= 1 {
		exponent--
	}
	mantissa := byte(value>>(exponent+3)) & 0x0F
	return ^(sign | exponent<<4 | mantissa)
}

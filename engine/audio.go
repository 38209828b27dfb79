package engine

import (
	"encoding/binary"
	"math"
	"sync"
	"unsafe"

	"github.com/Zyko0/go-sdl3/sdl"
)

const (
	MaxActiveSounds   = 16
	AudioScratchBytes = 4096

	SampleRate    = 44100
	AudioChannels = 2

	toneAmplitude = 0.5
	toneRampSecs  = 0.005
)

// OutputSpec is the format of the mixer's output stream and of every
// SoundResource it plays.
var OutputSpec = sdl.AudioSpec{Format: sdl.AUDIO_S16, Channels: AudioChannels, Freq: SampleRate}

type SoundResource struct {
	Data []byte
	Spec sdl.AudioSpec
}

// SineTone synthesises a pure tone in OutputSpec format. Onset and offset
// are ramped over a few milliseconds so the tone does not click.
func SineTone(freqHz, secs float64) *SoundResource {
	frames := int(math.Round(SampleRate * secs))
	ramp := int(math.Round(SampleRate * toneRampSecs))
	data := make([]byte, frames*AudioChannels*2)

	for i := 0; i < frames; i++ {
		gain := toneAmplitude
		if i < ramp {
			gain *= float64(i) / float64(ramp)
		} else if frames-i < ramp {
			gain *= float64(frames-i) / float64(ramp)
		}
		v := int16(gain * math.MaxInt16 * math.Sin(2*math.Pi*freqHz*float64(i)/SampleRate))
		for ch := 0; ch < AudioChannels; ch++ {
			off := (i*AudioChannels + ch) * 2
			binary.LittleEndian.PutUint16(data[off:], uint16(v))
		}
	}
	return &SoundResource{Data: data, Spec: OutputSpec}
}

type ActiveSound struct {
	Resource *SoundResource
	PlayPos  uint32
	Active   bool
}

// AudioMixer sums up to MaxActiveSounds sounds into the SDL output stream.
type AudioMixer struct {
	Slots   [MaxActiveSounds]ActiveSound
	Mutex   sync.Mutex
	Scratch []byte
}

func NewAudioMixer() *AudioMixer {
	return &AudioMixer{
		Scratch: make([]byte, AudioScratchBytes),
	}
}

// Callback feeds the stream; it runs on SDL's audio thread.
func (m *AudioMixer) Callback(stream *sdl.AudioStream, additionalAmount, totalAmount int32) {
	remaining := int(additionalAmount)
	for remaining > 0 {
		chunk := remaining
		if chunk > AudioScratchBytes {
			chunk = AudioScratchBytes
		}
		m.Mix(m.Scratch[:chunk])
		stream.PutData(m.Scratch[:chunk])
		remaining -= chunk
	}
}

// Mix overwrites dst with the saturated sum of the active sounds and
// advances them. len(dst) must be even.
func (m *AudioMixer) Mix(dst []byte) {
	clear(dst)
	if len(dst) < 2 {
		return
	}

	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	out := unsafe.Slice((*int16)(unsafe.Pointer(&dst[0])), len(dst)/2)
	for i := 0; i < MaxActiveSounds; i++ {
		s := &m.Slots[i]
		if !s.Active {
			continue
		}

		soundRemaining := uint32(len(s.Resource.Data)) - s.PlayPos
		toMix := uint32(len(dst))
		if toMix > soundRemaining {
			toMix = soundRemaining
		}

		if toMix >= 2 {
			src := unsafe.Slice((*int16)(unsafe.Pointer(&s.Resource.Data[s.PlayPos])), toMix/2)
			for j := range src {
				val := int32(out[j]) + int32(src[j])
				if val > math.MaxInt16 {
					val = math.MaxInt16
				} else if val < math.MinInt16 {
					val = math.MinInt16
				}
				out[j] = int16(val)
			}
		}

		s.PlayPos += toMix
		if s.PlayPos >= uint32(len(s.Resource.Data)) {
			s.Active = false
		}
	}
}

// Play starts res in a free slot. It reports false when every slot is busy.
func (m *AudioMixer) Play(res *SoundResource) bool {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	for i := 0; i < MaxActiveSounds; i++ {
		if !m.Slots[i].Active {
			m.Slots[i].Resource = res
			m.Slots[i].PlayPos = 0
			m.Slots[i].Active = true
			return true
		}
	}
	return false
}

// Playing returns the number of sounds still in progress.
func (m *AudioMixer) Playing() int {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	n := 0
	for i := range m.Slots {
		if m.Slots[i].Active {
			n++
		}
	}
	return n
}

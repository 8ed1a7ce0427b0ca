package platform

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	ebaudio "github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"

	"echo-corridor/internal/audio"
)

// SampleRate частота аудио-контекста
const SampleRate = 44100

// AudioSink проигрывает зацикленные wav-дорожки через ebiten.
// Дорожки грузятся в фоне; пока дорожка не готова, она пропускается.
type AudioSink struct {
	ctx    *ebaudio.Context
	tracks map[string]*audio.Resource[ebaudio.Player]
	log    *slog.Logger
}

// NewAudioSink создает аудио-контекст и запускает загрузку дорожек из dir.
// Контекст ebiten можно создать только один раз за процесс, поэтому sink
// переживает пересоздание симуляции.
func NewAudioSink(dir string, logger *slog.Logger) *AudioSink {
	if logger == nil {
		logger = slog.Default()
	}
	s := &AudioSink{
		ctx:    ebaudio.NewContext(SampleRate),
		tracks: make(map[string]*audio.Resource[ebaudio.Player], len(audio.Tracks)),
		log:    logger.With("component", "audio_sink"),
	}
	for _, name := range audio.Tracks {
		res := audio.NewResource[ebaudio.Player](name)
		path := filepath.Join(dir, name+".wav")
		res.LoadAsync(func() (*ebaudio.Player, error) {
			return s.loadLoop(path)
		})
		s.tracks[name] = res
	}
	return s
}

func (s *AudioSink) loadLoop(path string) (*ebaudio.Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open track: %w", err)
	}
	stream, err := wav.DecodeWithSampleRate(SampleRate, f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	p, err := s.ctx.NewPlayer(ebaudio.NewInfiniteLoop(stream, stream.Length()))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("player %s: %w", path, err)
	}
	p.SetVolume(0)
	p.Play()
	return p, nil
}

// Apply выставляет громкости готовых дорожек
func (s *AudioSink) Apply(mix audio.Mix) {
	for name, res := range s.tracks {
		p, ok := res.Get()
		if !ok {
			if err := res.Err(); err != nil && res.WarnOnce() {
				s.log.Warn("track unavailable", "track", res.Name(), "error", err)
			}
			continue
		}
		p.SetVolume(mix.Gains[name])
	}
}

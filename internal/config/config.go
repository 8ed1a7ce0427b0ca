package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ErrInvalidConfig возвращается, когда настройки не проходят проверку
var ErrInvalidConfig = errors.New("invalid config")

// EnvPrefix префикс переменных окружения (ECHO_WORLD_CHUNK_SIZE и т.д.)
const EnvPrefix = "ECHO"

// Config содержит основные настройки игры
type Config struct {
	// Общие настройки
	WindowWidth  int    `mapstructure:"window_width"`
	WindowHeight int    `mapstructure:"window_height"`
	Fullscreen   bool   `mapstructure:"fullscreen"`
	Title        string `mapstructure:"title"`

	// Настройки запуска
	Seed           int64  `mapstructure:"seed"`
	TargetFPS      int    `mapstructure:"target_fps"`
	EnableVSync    bool   `mapstructure:"enable_vsync"`
	Headless       bool   `mapstructure:"headless"`
	HeadlessFrames int    `mapstructure:"headless_frames"`
	LogLevel       string `mapstructure:"log_level"`
	MessagesPath   string `mapstructure:"messages_path"`

	World    WorldConfig    `mapstructure:"world"`
	Player   PlayerConfig   `mapstructure:"player"`
	Paranoia ParanoiaConfig `mapstructure:"paranoia"`
	Events   EventConfig    `mapstructure:"events"`
	Zone     ZoneConfig     `mapstructure:"zone"`
	Audio    AudioConfig    `mapstructure:"audio"`
	Observer ObserverConfig `mapstructure:"observer"`
}

// WorldConfig параметры генерации коридора
type WorldConfig struct {
	ChunkSize          float64 `mapstructure:"chunk_size"`
	RenderDistance     float64 `mapstructure:"render_distance"`
	CleanupBuffer      float64 `mapstructure:"cleanup_buffer"`
	TrailingBuffer     float64 `mapstructure:"trailing_buffer"`
	PillarSpacing      float64 `mapstructure:"pillar_spacing"`
	CorridorWidth      float64 `mapstructure:"corridor_width"`
	BaseHeight         float64 `mapstructure:"base_height"`
	BaseLightIntensity float64 `mapstructure:"base_light_intensity"`
	LightRestoreRate   float64 `mapstructure:"light_restore_rate"`
	FlickerShare       float64 `mapstructure:"flicker_share"`
	VoidDistance       float64 `mapstructure:"void_distance"`
}

// PlayerConfig параметры тела игрока
type PlayerConfig struct {
	WalkSpeed float64 `mapstructure:"walk_speed"`
	Radius    float64 `mapstructure:"radius"`
	EyeHeight float64 `mapstructure:"eye_height"`
	StartZ    float64 `mapstructure:"start_z"`
	VoidPull  float64 `mapstructure:"void_pull"`
}

// ParanoiaConfig коэффициенты накопления и распада паранойи
type ParanoiaConfig struct {
	Max              float64 `mapstructure:"max"`
	LookBackRate     float64 `mapstructure:"look_back_rate"`
	ForwardRate      float64 `mapstructure:"forward_rate"`
	DecayRate        float64 `mapstructure:"decay_rate"`
	ForwardThreshold float64 `mapstructure:"forward_threshold"`
	EndgameFactor    float64 `mapstructure:"endgame_factor"`
	EndgameHold      float64 `mapstructure:"endgame_hold"`
	HoldBleed        float64 `mapstructure:"hold_bleed"`
}

// EventConfig пороги и длительности событий
type EventConfig struct {
	BlackoutThreshold    float64 `mapstructure:"blackout_threshold"`
	BlackoutChance       float64 `mapstructure:"blackout_chance"`
	BlackoutDuration     float64 `mapstructure:"blackout_duration"`
	MirageShow           float64 `mapstructure:"mirage_show"`
	MirageHide           float64 `mapstructure:"mirage_hide"`
	DistortionThreshold  float64 `mapstructure:"distortion_threshold"`
	MessageMinCooldown   float64 `mapstructure:"message_min_cooldown"`
	MessageBaseCooldown  float64 `mapstructure:"message_base_cooldown"`
	MessageCooldownScale float64 `mapstructure:"message_cooldown_scale"`
	RecentMessages       int     `mapstructure:"recent_messages"`
}

// ZoneConfig геометрия зон и условия сброса
type ZoneConfig struct {
	IntroTriggerZ     float64 `mapstructure:"intro_trigger_z"`
	CorridorStartZ    float64 `mapstructure:"corridor_start_z"`
	ResetZ            float64 `mapstructure:"reset_z"`
	OutOfBoundsX      float64 `mapstructure:"out_of_bounds_x"`
	VoidContactRadius float64 `mapstructure:"void_contact_radius"`
	FogDensity        float64 `mapstructure:"fog_density"`
}

// AudioConfig настройки аудио-коллаборатора
type AudioConfig struct {
	AssetsDir   string  `mapstructure:"assets_dir"`
	Volume      float64 `mapstructure:"volume"`
	ScoreFadeIn float64 `mapstructure:"score_fade_in"`
	VoidHearing float64 `mapstructure:"void_hearing"`
}

// ObserverConfig настройки websocket-трансляции сигналов
type ObserverConfig struct {
	Addr       string `mapstructure:"addr"`
	BufferSize int    `mapstructure:"buffer_size"`
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		WindowWidth:    800,
		WindowHeight:   600,
		Fullscreen:     false,
		Title:          "Эхо Коридора",
		Seed:           0, // 0 означает случайный сид
		TargetFPS:      60,
		EnableVSync:    true,
		Headless:       false,
		HeadlessFrames: 3600,
		LogLevel:       "info",
		World: WorldConfig{
			ChunkSize:          20,
			RenderDistance:     100,
			CleanupBuffer:      40,
			TrailingBuffer:     20,
			PillarSpacing:      10,
			CorridorWidth:      8,
			BaseHeight:         4,
			BaseLightIntensity: 1.0,
			LightRestoreRate:   5,
			FlickerShare:       0.3,
			VoidDistance:       200,
		},
		Player: PlayerConfig{
			WalkSpeed: 3.0,
			Radius:    0.3,
			EyeHeight: 1.6,
			StartZ:    8,
			VoidPull:  1.5,
		},
		Paranoia: ParanoiaConfig{
			Max:              100,
			LookBackRate:     20,
			ForwardRate:      1,
			DecayRate:        0.5,
			ForwardThreshold: 3,
			EndgameFactor:    0.99,
			EndgameHold:      20,
			HoldBleed:        0.5,
		},
		Events: EventConfig{
			BlackoutThreshold:    0.95,
			BlackoutChance:       0.00025,
			BlackoutDuration:     5,
			MirageShow:           0.1,
			MirageHide:           0.8,
			DistortionThreshold:  0.95,
			MessageMinCooldown:   8,
			MessageBaseCooldown:  15,
			MessageCooldownScale: 7,
			RecentMessages:       5,
		},
		Zone: ZoneConfig{
			IntroTriggerZ:     -2,
			CorridorStartZ:    0,
			ResetZ:            4,
			OutOfBoundsX:      12,
			VoidContactRadius: 2,
			FogDensity:        0.04,
		},
		Audio: AudioConfig{
			AssetsDir:   "assets/audio",
			Volume:      0.5,
			ScoreFadeIn: 6,
			VoidHearing: 250,
		},
		Observer: ObserverConfig{
			Addr:       "",
			BufferSize: 32,
		},
	}
}

// Load загружает конфигурацию из файла и переменных окружения.
// Пустой путь означает только значения по умолчанию и окружение.
func Load(path string) (*Config, error) {
	return LoadWith(viper.New(), path)
}

// LoadWith загружает конфигурацию через переданный экземпляр viper.
// Позволяет заранее привязать флаги командной строки.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	for key, value := range DefaultConfig().settings() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save сохраняет конфигурацию в файл; формат определяется расширением
func (c *Config) Save(path string) error {
	v := viper.New()
	for key, value := range c.settings() {
		v.Set(key, value)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}

	return nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	switch {
	case c.TargetFPS <= 0:
		return fmt.Errorf("%w: target_fps must be positive", ErrInvalidConfig)
	case c.World.ChunkSize <= 0:
		return fmt.Errorf("%w: world.chunk_size must be positive", ErrInvalidConfig)
	case c.World.RenderDistance < c.World.ChunkSize:
		return fmt.Errorf("%w: world.render_distance must cover at least one chunk", ErrInvalidConfig)
	case c.World.PillarSpacing <= 0:
		return fmt.Errorf("%w: world.pillar_spacing must be positive", ErrInvalidConfig)
	case c.World.CleanupBuffer < 0 || c.World.TrailingBuffer < 0:
		return fmt.Errorf("%w: world buffers must not be negative", ErrInvalidConfig)
	case c.World.FlickerShare < 0 || c.World.FlickerShare > 1:
		return fmt.Errorf("%w: world.flicker_share must be within [0,1]", ErrInvalidConfig)
	case c.Paranoia.Max <= 0:
		return fmt.Errorf("%w: paranoia.max must be positive", ErrInvalidConfig)
	case c.Paranoia.EndgameFactor <= 0 || c.Paranoia.EndgameFactor > 1:
		return fmt.Errorf("%w: paranoia.endgame_factor must be within (0,1]", ErrInvalidConfig)
	case c.Paranoia.EndgameHold <= 0:
		return fmt.Errorf("%w: paranoia.endgame_hold must be positive", ErrInvalidConfig)
	case c.Events.BlackoutDuration <= 0:
		return fmt.Errorf("%w: events.blackout_duration must be positive", ErrInvalidConfig)
	case c.Events.MirageHide < c.Events.MirageShow:
		return fmt.Errorf("%w: events.mirage_hide must not precede mirage_show", ErrInvalidConfig)
	case c.Events.MessageMinCooldown <= 0:
		return fmt.Errorf("%w: events.message_min_cooldown must be positive", ErrInvalidConfig)
	case c.Events.RecentMessages <= 0:
		return fmt.Errorf("%w: events.recent_messages must be positive", ErrInvalidConfig)
	case c.Zone.ResetZ <= c.Zone.IntroTriggerZ:
		return fmt.Errorf("%w: zone.reset_z must lie behind the intro trigger", ErrInvalidConfig)
	}
	return nil
}

// settings раскладывает конфигурацию в плоские ключи viper
func (c *Config) settings() map[string]any {
	return map[string]any{
		"window_width":    c.WindowWidth,
		"window_height":   c.WindowHeight,
		"fullscreen":      c.Fullscreen,
		"title":           c.Title,
		"seed":            c.Seed,
		"target_fps":      c.TargetFPS,
		"enable_vsync":    c.EnableVSync,
		"headless":        c.Headless,
		"headless_frames": c.HeadlessFrames,
		"log_level":       c.LogLevel,
		"messages_path":   c.MessagesPath,

		"world.chunk_size":           c.World.ChunkSize,
		"world.render_distance":      c.World.RenderDistance,
		"world.cleanup_buffer":       c.World.CleanupBuffer,
		"world.trailing_buffer":      c.World.TrailingBuffer,
		"world.pillar_spacing":       c.World.PillarSpacing,
		"world.corridor_width":       c.World.CorridorWidth,
		"world.base_height":          c.World.BaseHeight,
		"world.base_light_intensity": c.World.BaseLightIntensity,
		"world.light_restore_rate":   c.World.LightRestoreRate,
		"world.flicker_share":        c.World.FlickerShare,
		"world.void_distance":        c.World.VoidDistance,

		"player.walk_speed": c.Player.WalkSpeed,
		"player.radius":     c.Player.Radius,
		"player.eye_height": c.Player.EyeHeight,
		"player.start_z":    c.Player.StartZ,
		"player.void_pull":  c.Player.VoidPull,

		"paranoia.max":               c.Paranoia.Max,
		"paranoia.look_back_rate":    c.Paranoia.LookBackRate,
		"paranoia.forward_rate":      c.Paranoia.ForwardRate,
		"paranoia.decay_rate":        c.Paranoia.DecayRate,
		"paranoia.forward_threshold": c.Paranoia.ForwardThreshold,
		"paranoia.endgame_factor":    c.Paranoia.EndgameFactor,
		"paranoia.endgame_hold":      c.Paranoia.EndgameHold,
		"paranoia.hold_bleed":        c.Paranoia.HoldBleed,

		"events.blackout_threshold":     c.Events.BlackoutThreshold,
		"events.blackout_chance":        c.Events.BlackoutChance,
		"events.blackout_duration":      c.Events.BlackoutDuration,
		"events.mirage_show":            c.Events.MirageShow,
		"events.mirage_hide":            c.Events.MirageHide,
		"events.distortion_threshold":   c.Events.DistortionThreshold,
		"events.message_min_cooldown":   c.Events.MessageMinCooldown,
		"events.message_base_cooldown":  c.Events.MessageBaseCooldown,
		"events.message_cooldown_scale": c.Events.MessageCooldownScale,
		"events.recent_messages":        c.Events.RecentMessages,

		"zone.intro_trigger_z":     c.Zone.IntroTriggerZ,
		"zone.corridor_start_z":    c.Zone.CorridorStartZ,
		"zone.reset_z":             c.Zone.ResetZ,
		"zone.out_of_bounds_x":     c.Zone.OutOfBoundsX,
		"zone.void_contact_radius": c.Zone.VoidContactRadius,
		"zone.fog_density":         c.Zone.FogDensity,

		"audio.assets_dir":    c.Audio.AssetsDir,
		"audio.volume":        c.Audio.Volume,
		"audio.score_fade_in": c.Audio.ScoreFadeIn,
		"audio.void_hearing":  c.Audio.VoidHearing,

		"observer.addr":        c.Observer.Addr,
		"observer.buffer_size": c.Observer.BufferSize,
	}
}

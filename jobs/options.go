package jobs

// CaptionsOptions configures a `captions` job. Mirrors spec §4.5's
// captions pipeline knobs.
type CaptionsOptions struct {
	VideoAssetID  string `mapstructure:"video_asset_id"`
	Format        string `mapstructure:"format"` // srt (default) | vtt | ass | ass_karaoke
	SpeakerLabels bool   `mapstructure:"speaker_labels"`
	Model         string `mapstructure:"model"`
	Language      string `mapstructure:"language"`
}

func (o *CaptionsOptions) applyDefaults() {
	if o.Format == "" {
		o.Format = "srt"
	}
}

// TranslateSubtitlesOptions configures a `translate_subtitles` job.
// SourceLanguage defaults to "auto" (source-language auto-detection),
// matching the LibreTranslate/Argos convention the LocalTranslator sidecar
// is grounded on.
type TranslateSubtitlesOptions struct {
	SubtitleAssetID string `mapstructure:"subtitle_asset_id"`
	SourceLanguage  string `mapstructure:"source_language"`
	TargetLanguage  string `mapstructure:"target_language"`
	Bilingual       bool   `mapstructure:"bilingual"`
}

func (o *TranslateSubtitlesOptions) applyDefaults() {
	if o.SourceLanguage == "" {
		o.SourceLanguage = "auto"
	}
}

// StyleSubtitlesOptions configures a `style_subtitles` job. Style holds the
// ASS `force_style` key/value pairs (Fontname, Fontsize, PrimaryColour,
// SecondaryColour, OutlineColour, Outline, Shadow, Alignment, ...).
type StyleSubtitlesOptions struct {
	VideoAssetID    string            `mapstructure:"video_asset_id"`
	SubtitleAssetID string            `mapstructure:"subtitle_asset_id"`
	Style           map[string]string `mapstructure:"style"`
	PreviewSeconds  float64           `mapstructure:"preview_seconds"`
}

// ShortsOptions configures a `shorts` job.
type ShortsOptions struct {
	VideoAssetID string  `mapstructure:"video_asset_id"`
	MaxClips     int     `mapstructure:"max_clips"`
	MinDuration  float64 `mapstructure:"min_duration"`
	MaxDuration  float64 `mapstructure:"max_duration"`
	AspectRatio  string  `mapstructure:"aspect_ratio"`
	TrimSilence  bool    `mapstructure:"trim_silence"`
	Keywords     []string `mapstructure:"keywords"`
}

func (o *ShortsOptions) applyDefaults() {
	if o.MaxClips <= 0 {
		o.MaxClips = 1
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 30
	}
	if o.AspectRatio == "" {
		o.AspectRatio = "9:16"
	}
}

// MergeAVOptions configures a `merge_av` job. Ducking is either a bool
// (true maps to ffmpegcmd.DuckingVolume) or an explicit numeric multiplier,
// matching spec §4.3.6's "ducking=true maps to volume=0.25; numeric values
// used as-is".
type MergeAVOptions struct {
	VideoAssetID string      `mapstructure:"video_asset_id"`
	AudioAssetID string      `mapstructure:"audio_asset_id"`
	Offset       float64     `mapstructure:"offset"`
	Ducking      interface{} `mapstructure:"ducking"`
	Normalize    bool        `mapstructure:"normalize"`
}

// DuckingValue resolves Ducking to a volume multiplier, or nil if ducking
// is unset/false.
func (o MergeAVOptions) DuckingValue(defaultVolume float64) *float64 {
	switch v := o.Ducking.(type) {
	case nil:
		return nil
	case bool:
		if !v {
			return nil
		}
		vol := defaultVolume
		return &vol
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	default:
		return nil
	}
}

// CutClipOptions configures a `cut_clip` job.
type CutClipOptions struct {
	VideoAssetID string  `mapstructure:"video_asset_id"`
	Start        float64 `mapstructure:"start"`
	End          float64 `mapstructure:"end"`
}

// Normalize clamps Start to >= 0 and End to >= Start, per spec §4.4's
// cut-clip validation note.
func (o *CutClipOptions) Normalize() {
	if o.Start < 0 {
		o.Start = 0
	}
	if o.End < o.Start {
		o.End = o.Start
	}
}

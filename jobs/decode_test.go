package jobs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/livepeer/reframe-media/store"
)

func TestDecodeCaptionsOptionsAppliesFormatDefault(t *testing.T) {
	job := store.Job{Payload: map[string]interface{}{"video_asset_id": "abc", "speaker_labels": true}}
	opts, err := DecodeCaptionsOptions(job)
	require.NoError(t, err)
	require.Equal(t, "abc", opts.VideoAssetID)
	require.True(t, opts.SpeakerLabels)
	require.Equal(t, "srt", opts.Format)
}

func TestDecodeTranslateSubtitlesOptionsDefaultsSourceLanguageToAuto(t *testing.T) {
	job := store.Job{Payload: map[string]interface{}{"subtitle_asset_id": "s1", "target_language": "es"}}
	opts, err := DecodeTranslateSubtitlesOptions(job)
	require.NoError(t, err)
	require.Equal(t, "auto", opts.SourceLanguage)
	require.Equal(t, "es", opts.TargetLanguage)
}

func TestDecodeTranslateSubtitlesOptionsHonorsExplicitSourceLanguage(t *testing.T) {
	job := store.Job{Payload: map[string]interface{}{"subtitle_asset_id": "s1", "source_language": "fr", "target_language": "es"}}
	opts, err := DecodeTranslateSubtitlesOptions(job)
	require.NoError(t, err)
	require.Equal(t, "fr", opts.SourceLanguage)
}

func TestDecodeShortsOptionsAppliesDefaults(t *testing.T) {
	job := store.Job{Payload: map[string]interface{}{"video_asset_id": "v1"}}
	opts, err := DecodeShortsOptions(job)
	require.NoError(t, err)
	require.Equal(t, 1, opts.MaxClips)
	require.Equal(t, 30.0, opts.MaxDuration)
	require.Equal(t, "9:16", opts.AspectRatio)
}

func TestDecodeCutClipOptionsNormalizes(t *testing.T) {
	job := store.Job{Payload: map[string]interface{}{"video_asset_id": "v1", "start": -5.0, "end": -10.0}}
	opts, err := DecodeCutClipOptions(job)
	require.NoError(t, err)
	require.Equal(t, 0.0, opts.Start)
	require.Equal(t, 0.0, opts.End)
}

func TestMergeAVOptionsDuckingValue(t *testing.T) {
	require.Nil(t, MergeAVOptions{Ducking: nil}.DuckingValue(0.25))
	require.Nil(t, MergeAVOptions{Ducking: false}.DuckingValue(0.25))
	require.Equal(t, 0.25, *MergeAVOptions{Ducking: true}.DuckingValue(0.25))
	require.Equal(t, 0.5, *MergeAVOptions{Ducking: 0.5}.DuckingValue(0.25))
}

func TestDecodeMergeAVOptionsFromPayload(t *testing.T) {
	job := store.Job{Payload: map[string]interface{}{"video_asset_id": "v", "audio_asset_id": "a", "offset": 1.5, "ducking": true}}
	opts, err := DecodeMergeAVOptions(job)
	require.NoError(t, err)
	require.Equal(t, 1.5, opts.Offset)
	require.Equal(t, true, opts.Ducking)
}

package jobs

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/livepeer/reframe-media/store"
)

// DecodeCaptionsOptions decodes job.Payload into a CaptionsOptions,
// applying documented defaults.
func DecodeCaptionsOptions(job store.Job) (CaptionsOptions, error) {
	var opts CaptionsOptions
	if err := decode(job.Payload, &opts); err != nil {
		return opts, err
	}
	opts.applyDefaults()
	return opts, nil
}

func DecodeTranslateSubtitlesOptions(job store.Job) (TranslateSubtitlesOptions, error) {
	var opts TranslateSubtitlesOptions
	if err := decode(job.Payload, &opts); err != nil {
		return opts, err
	}
	opts.applyDefaults()
	return opts, nil
}

func DecodeStyleSubtitlesOptions(job store.Job) (StyleSubtitlesOptions, error) {
	var opts StyleSubtitlesOptions
	err := decode(job.Payload, &opts)
	return opts, err
}

func DecodeShortsOptions(job store.Job) (ShortsOptions, error) {
	var opts ShortsOptions
	if err := decode(job.Payload, &opts); err != nil {
		return opts, err
	}
	opts.applyDefaults()
	return opts, nil
}

func DecodeMergeAVOptions(job store.Job) (MergeAVOptions, error) {
	var opts MergeAVOptions
	err := decode(job.Payload, &opts)
	return opts, err
}

func DecodeCutClipOptions(job store.Job) (CutClipOptions, error) {
	var opts CutClipOptions
	if err := decode(job.Payload, &opts); err != nil {
		return opts, err
	}
	opts.Normalize()
	return opts, nil
}

func decode(payload map[string]interface{}, out interface{}) error {
	if payload == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("build option decoder: %w", err)
	}
	if err := dec.Decode(payload); err != nil {
		return fmt.Errorf("decode job payload: %w", err)
	}
	return nil
}

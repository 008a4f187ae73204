package worker

import (
	"github.com/livepeer/reframe-media/media/diarize"
	"github.com/livepeer/reframe-media/media/transcribe"
)

// transcribeBackendIsRemote reports whether backend reaches outside the
// process. transcribe.Dispatch sends every non-noop backend, including
// openai_whisper, to an HTTP sidecar, so OFFLINE_MODE's refusal of remote
// transcription backends (spec.md §4.1/§6.2) applies to all of them.
func transcribeBackendIsRemote(b transcribe.Backend) bool {
	return b != "" && b != transcribe.BackendNoop
}

// diarizeBackendIsRemote mirrors transcribeBackendIsRemote for diarization:
// diarize.Dispatch sends pyannote/speechbrain to an HTTP sidecar.
func diarizeBackendIsRemote(b diarize.Backend) bool {
	return b != "" && b != diarize.BackendNoop
}

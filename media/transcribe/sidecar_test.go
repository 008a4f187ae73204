package transcribe

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSidecarClientTranscribeParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transcribe", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(10<<20))
		require.Equal(t, "large-v3", r.FormValue("model"))

		resp := sidecarWireResponse{
			Language: "en",
			Segments: []sidecarSegment{
				{
					Text:  "hello world",
					Start: 0,
					End:   1,
					Words: []sidecarWord{
						{Text: "hello", Start: 0, End: 0.4},
						{Text: "world", Start: 0.4, End: 1},
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	tmp, err := os.CreateTemp(t.TempDir(), "audio-*.wav")
	require.NoError(t, err)
	_, err = tmp.Write([]byte("fake audio bytes"))
	require.NoError(t, err)
	require.NoError(t, tmp.Close())

	client := NewSidecarClient(BackendWhisperCPP, srv.URL)
	result, err := client.Transcribe(context.Background(), tmp.Name(), "large-v3")
	require.NoError(t, err)
	require.Equal(t, "en", result.Language)
	require.Len(t, result.Words, 2)
	require.Equal(t, "hello", result.Words[0].Text)
	require.Equal(t, "hello world", result.Text)
}

func TestSidecarClientTranscribeSurfacesErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "model not loaded")
	}))
	defer srv.Close()

	tmp, err := os.CreateTemp(t.TempDir(), "audio-*.wav")
	require.NoError(t, err)
	require.NoError(t, tmp.Close())

	client := NewSidecarClient(BackendFasterWhisper, srv.URL)
	client.HTTPClient.RetryMax = 0
	_, err = client.Transcribe(context.Background(), tmp.Name(), "base")
	require.Error(t, err)
}

func TestDispatchReturnsNoopForEmptyOrNoopBackend(t *testing.T) {
	require.IsType(t, NoopTranscriber{}, Dispatch("", "http://unused"))
	require.IsType(t, NoopTranscriber{}, Dispatch(BackendNoop, "http://unused"))
}

func TestDispatchReturnsSidecarForRealBackend(t *testing.T) {
	tr := Dispatch(BackendOpenAIWhisper, "http://localhost:9000")
	client, ok := tr.(*SidecarClient)
	require.True(t, ok)
	require.Equal(t, BackendOpenAIWhisper, client.Backend)
}

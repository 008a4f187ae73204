package worker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToSRTDomainPassesThroughSRT(t *testing.T) {
	srt := "1\n00:00:00,000 --> 00:00:01,000\nhello\n\n"
	out, err := toSRTDomain(srt, "subs.srt")
	require.NoError(t, err)
	require.Equal(t, srt, out)
}

func TestToSRTDomainConvertsVTT(t *testing.T) {
	vtt := "WEBVTT\n\n00:00:00.000 --> 00:00:01.000\nhello\n"
	out, err := toSRTDomain(vtt, "subs.vtt")
	require.NoError(t, err)
	require.Contains(t, out, "-->")
	require.Contains(t, out, "00:00:00,000")
}

func TestToSRTDomainRejectsUnsupportedExtension(t *testing.T) {
	_, err := toSRTDomain("whatever", "subs.ass")
	require.Error(t, err)
}

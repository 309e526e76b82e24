package tts

import "testing"

func TestSynthesizeResultExt(t *testing.T) {
	tests := map[string]string{
		"audio/wav":  "wav",
		"audio/mpeg": "mp3",
		"audio/ogg":  "ogg",
		"audio/opus": "ogg",
		"audio/flac": "flac",
		"":           "wav",
	}
	for ct, want := range tests {
		r := &SynthesizeResult{ContentType: ct}
		if got := r.Ext(); got != want {
			t.Errorf("Ext(%q) = %q, want %q", ct, got, want)
		}
	}
}

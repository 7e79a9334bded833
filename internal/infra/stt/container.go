package stt

import "bytes"

// containerExt picks a file extension for audio from its leading bytes.
// Unrecognized input is treated as WAV, which is what the live loop produces.
func containerExt(audio []byte) string {
	switch {
	case len(audio) >= 12 && bytes.Equal(audio[:4], []byte("RIFF")) && bytes.Equal(audio[8:12], []byte("WAVE")):
		return ".wav"
	case bytes.HasPrefix(audio, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return ".webm"
	case len(audio) >= 8 && bytes.Equal(audio[4:8], []byte("ftyp")):
		return ".m4a"
	case bytes.HasPrefix(audio, []byte("OggS")):
		return ".ogg"
	case bytes.HasPrefix(audio, []byte("fLaC")):
		return ".flac"
	case bytes.HasPrefix(audio, []byte("ID3")),
		len(audio) >= 2 && audio[0] == 0xFF && audio[1]&0xE0 == 0xE0:
		return ".mp3"
	default:
		return ".wav"
	}
}

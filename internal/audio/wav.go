// Package audio packages raw PCM from the speech endpoint into playable
// WAV files and hands them to a local player. The speech endpoint returns
// headerless 16-bit little-endian mono PCM at 24 kHz, so the container
// parameters are fixed.
package audio

import (
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"geminios/internal/logging"
)

// PCM format produced by the speech endpoint.
const (
	SampleRate    = 24000
	NumChannels   = 1
	BitsPerSample = 16

	headerSize = 44
)

// EncodeWAV wraps raw PCM bytes in a standard 44-byte RIFF/WAVE header.
// The payload is not validated: an odd byte count is the caller's problem.
func EncodeWAV(pcm []byte) []byte {
	dataSize := uint32(len(pcm))
	byteRate := uint32(SampleRate * NumChannels * BitsPerSample / 8)
	blockAlign := uint16(NumChannels * BitsPerSample / 8)

	out := make([]byte, headerSize+len(pcm))
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], 36+dataSize)
	copy(out[8:12], "WAVE")

	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)                    // PCM chunk size
	binary.LittleEndian.PutUint16(out[20:22], 1)                     // PCM format
	binary.LittleEndian.PutUint16(out[22:24], NumChannels)
	binary.LittleEndian.PutUint32(out[24:28], SampleRate)
	binary.LittleEndian.PutUint32(out[28:32], byteRate)
	binary.LittleEndian.PutUint16(out[32:34], blockAlign)
	binary.LittleEndian.PutUint16(out[34:36], BitsPerSample)

	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], dataSize)
	copy(out[headerSize:], pcm)
	return out
}

// WriteWAV encodes the PCM payload and writes it to path.
func WriteWAV(path string, pcm []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create audio dir: %w", err)
	}
	if err := os.WriteFile(path, EncodeWAV(pcm), 0o644); err != nil {
		return fmt.Errorf("failed to write wav: %w", err)
	}
	logging.Audio("wrote %s (%d pcm bytes)", path, len(pcm))
	return nil
}

// Play writes the PCM to a temp file and runs the configured player on it.
// The temp file is removed after the player exits.
func Play(player string, pcm []byte) error {
	if player == "" {
		player = "aplay"
	}

	tmp, err := os.CreateTemp("", "geminios-*.wav")
	if err != nil {
		return fmt.Errorf("failed to create temp wav: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(EncodeWAV(pcm)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp wav: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp wav: %w", err)
	}

	logging.Audio("playing %d pcm bytes via %s", len(pcm), player)
	cmd := exec.Command(player, path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("player %s failed: %w: %s", player, err, out)
	}
	return nil
}

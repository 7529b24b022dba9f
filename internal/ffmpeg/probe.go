package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

type ProbeResult struct {
	Format  ProbeFormat   `json:"format"`
	Streams []ProbeStream `json:"streams"`
}

type ProbeFormat struct {
	Filename string `json:"filename"`
	Duration string `json:"duration"`
	Size     string `json:"size"`
	BitRate  string `json:"bit_rate"`
}

type ProbeStream struct {
	Index         int               `json:"index"`
	CodecName     string            `json:"codec_name"`
	CodecType     string            `json:"codec_type"` // video, audio, subtitle
	SampleRate    string            `json:"sample_rate,omitempty"`
	Channels      int               `json:"channels,omitempty"`
	ChannelLayout string            `json:"channel_layout,omitempty"`
	Tags          map[string]string `json:"tags,omitempty"`
}

type MediaInfo struct {
	Duration   float64       `json:"duration"` // seconds
	Size       string        `json:"size"`
	BitRate    string        `json:"bit_rate"`
	AudioCodec string        `json:"audio_codec"`
	HasAudio   bool          `json:"has_audio"`
	Streams    []ProbeStream `json:"streams"`
}

// Probe inspects a media file and reports its duration and audio layout.
// Transcription requires at least one audio stream.
func Probe(ctx context.Context, filePath string) (*MediaInfo, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}

	var result ProbeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, err
	}

	duration, _ := strconv.ParseFloat(result.Format.Duration, 64)

	info := &MediaInfo{
		Duration: duration,
		Size:     result.Format.Size,
		BitRate:  result.Format.BitRate,
		Streams:  result.Streams,
	}

	for _, s := range result.Streams {
		if s.CodecType == "audio" {
			info.HasAudio = true
			if info.AudioCodec == "" {
				info.AudioCodec = s.CodecName
			}
		}
	}

	return info, nil
}

// SubtitleStreams returns the embedded subtitle streams of a media file
func SubtitleStreams(ctx context.Context, filePath string) ([]ProbeStream, error) {
	info, err := Probe(ctx, filePath)
	if err != nil {
		return nil, err
	}

	var subs []ProbeStream
	for _, s := range info.Streams {
		if s.CodecType == "subtitle" {
			subs = append(subs, s)
		}
	}
	return subs, nil
}

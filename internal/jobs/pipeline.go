package jobs

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"eiractl/internal/s3client"
)

const (
	defaultFPS    = 3
	chunkDuration = "0.5"
)

// Uploader stores a local file in object storage.
type Uploader interface {
	UploadFile(ctx context.Context, bucket, localPath, key string) error
}

// Pipeline turns one video link into media objects in the processing bucket:
// the video, its 16 kHz mono audio, and frame/audio-chunk pairs.
type Pipeline struct {
	Runner      Runner
	Uploader    Uploader
	Bucket      string
	WorkDir     string
	CookiesFile string
	FPS         int
	Logf        func(format string, args ...any)

	now func() time.Time
}

// UniqueID derives a per-run identifier from the link and the start time.
func UniqueID(link string, at time.Time) string {
	sum := md5.Sum([]byte(link))
	return hex.EncodeToString(sum[:])[:6] + "-" + at.Format("20060102-150405")
}

func (p *Pipeline) Process(ctx context.Context, link string) error {
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	fps := p.FPS
	if fps <= 0 {
		fps = defaultFPS
	}

	id := UniqueID(link, now())
	dir := filepath.Join(p.WorkDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	videoPath := filepath.Join(dir, "video.mp4")
	audioPath := filepath.Join(dir, "audio.wav")

	p.logf("Downloading video %s", link)
	if err := p.Runner.Run(ctx, "yt-dlp", p.downloadArgs(link, videoPath)...); err != nil {
		return fmt.Errorf("download video: %w", err)
	}

	p.logf("Extracting audio")
	if err := p.Runner.Run(ctx, "ffmpeg", "-y", "-hide_banner", "-loglevel", "error",
		"-i", videoPath, "-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1", audioPath); err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}

	p.logf("Uploading video and audio")
	if err := p.Uploader.UploadFile(ctx, p.Bucket, videoPath, s3client.BuildRemotePath("videos/"+id, "video.mp4")); err != nil {
		return fmt.Errorf("upload video: %w", err)
	}
	if err := p.Uploader.UploadFile(ctx, p.Bucket, audioPath, s3client.BuildRemotePath("audio/"+id, "audio.wav")); err != nil {
		return fmt.Errorf("upload audio: %w", err)
	}

	p.logf("Extracting frames at %d fps", fps)
	pairs, err := p.extractPairs(ctx, videoPath, filepath.Join(dir, "pairs"), fps)
	if err != nil {
		return fmt.Errorf("extract frame pairs: %w", err)
	}
	p.logf("Extracted %d frame & audio pairs", len(pairs))

	for _, path := range pairs {
		key := s3client.BuildRemotePath("pairs/"+id, filepath.Base(path))
		if err := p.Uploader.UploadFile(ctx, p.Bucket, path, key); err != nil {
			return fmt.Errorf("upload pair %s: %w", filepath.Base(path), err)
		}
	}

	p.logf("Finished processing %s", link)
	return nil
}

func (p *Pipeline) downloadArgs(link, output string) []string {
	args := []string{}
	if p.CookiesFile != "" {
		args = append(args, "--cookies", p.CookiesFile)
	}
	return append(args,
		"-f", "best",
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"--restrict-filenames",
		"-o", output,
		link,
	)
}

// extractPairs writes one frame per 1/fps seconds and a short audio chunk
// starting at each frame's timestamp. Files are named by timestamp.
func (p *Pipeline) extractPairs(ctx context.Context, videoPath, outDir string, fps int) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	pattern := filepath.Join(outDir, "raw_%05d.jpg")
	if err := p.Runner.Run(ctx, "ffmpeg", "-y", "-hide_banner", "-loglevel", "error",
		"-i", videoPath, "-vf", fmt.Sprintf("fps=%d", fps), "-vsync", "vfr", pattern); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, err
	}
	var raw []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, "raw_") && strings.HasSuffix(name, ".jpg") {
			raw = append(raw, name)
		}
	}
	sort.Strings(raw)

	var pairs []string
	for i, name := range raw {
		ts := float64(i) / float64(fps)
		base := fmt.Sprintf("frame_%010.3f", ts)

		framePath := filepath.Join(outDir, base+".jpg")
		if err := os.Rename(filepath.Join(outDir, name), framePath); err != nil {
			return nil, err
		}

		chunkPath := filepath.Join(outDir, base+".wav")
		if err := p.Runner.Run(ctx, "ffmpeg", "-y", "-hide_banner", "-loglevel", "error",
			"-ss", fmt.Sprintf("%.3f", ts), "-t", chunkDuration, "-i", videoPath,
			"-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1", chunkPath); err != nil {
			return nil, err
		}

		pairs = append(pairs, framePath, chunkPath)
	}

	return pairs, nil
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.Logf != nil {
		p.Logf(format, args...)
	}
}

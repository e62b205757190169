package transcript

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/truthquest/internal/model"
)

// Provider fetches the transcript for a video id
type Provider interface {
	Fetch(ctx context.Context, videoID string) (*Transcript, error)
}

// FileProvider serves transcripts from a directory of <id>.json or <id>.txt files
type FileProvider struct {
	Dir string
}

// NewFileProvider creates a provider rooted at dir
func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{Dir: dir}
}

// Fetch implements Provider
func (p *FileProvider) Fetch(ctx context.Context, videoID string) (*Transcript, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !bareVideoID.MatchString(videoID) {
		return nil, fmt.Errorf("%w: invalid video id %q", model.ErrNotFound, videoID)
	}

	for _, ext := range []string{".json", ".txt"} {
		path := filepath.Join(p.Dir, videoID+ext)
		t, err := Load(path)
		if errors.Is(err, model.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		t.VideoID = videoID
		return t, nil
	}

	if _, err := os.Stat(p.Dir); err != nil {
		return nil, fmt.Errorf("transcripts dir: %w", err)
	}
	return nil, fmt.Errorf("%w: no transcript for video %s", model.ErrNotFound, videoID)
}

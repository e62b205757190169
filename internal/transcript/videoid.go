package transcript

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/truthquest/internal/model"
)

var (
	videoIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=)([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`(?:youtube\.com/embed/)([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`(?:youtube\.com/v/)([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`(?:youtu\.be/)([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`(?:youtube\.com/shorts/)([A-Za-z0-9_-]{11})`),
	}
	bareVideoID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// ParseVideoID extracts the 11-character video id from a YouTube URL or
// accepts a bare id.
func ParseVideoID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty video reference", model.ErrInvalidInput)
	}

	if bareVideoID.MatchString(ref) {
		return ref, nil
	}

	for _, pattern := range videoIDPatterns {
		if m := pattern.FindStringSubmatch(ref); m != nil {
			return m[1], nil
		}
	}

	return "", fmt.Errorf("%w: invalid YouTube URL: %s", model.ErrInvalidInput, ref)
}

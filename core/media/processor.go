package media

import "context"

// DurationProber reads the playback duration of a media blob.
type DurationProber interface {
	// ProbeDuration returns the duration in seconds.
	ProbeDuration(ctx context.Context, data []byte) (float64, error)
}

// NopProber always reports an unknown duration.
type NopProber struct{}

func (NopProber) ProbeDuration(context.Context, []byte) (float64, error) { return 0, nil }

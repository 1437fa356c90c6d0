package extractor

import (
	"context"
	"log"
	"math"

	"framecheck/internal/models"
)

// playerState is what the page reports about its <video> element.
type playerState struct {
	Duration    float64
	CurrentTime float64
}

// videoPlayer is the page-side half of frame capture.
type videoPlayer interface {
	// Probe returns ok=false when there is no video element or it is not ready to draw frames.
	Probe(ctx context.Context) (playerState, bool, error)
	// Capture seeks to ts, waits for the seek or the timeout, and returns a base64 JPEG.
	Capture(ctx context.Context, ts float64) (string, error)
	Seek(ctx context.Context, ts float64) error
}

// FrameTimestamps spreads n sample points between 10% and 90% of duration,
// never later than one second before the end.
func FrameTimestamps(duration float64, n int) []float64 {
	if n <= 0 || duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return nil
	}

	timestamps := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		ts := duration * 0.1
		if n > 1 {
			ts += duration * 0.8 * float64(i) / float64(n-1)
		}
		ts = math.Min(ts, duration-1)
		timestamps = append(timestamps, math.Max(ts, 0))
	}
	return timestamps
}

// sampleFrames captures up to n frames. A failed capture skips that frame; the original
// playback position is restored whatever happens.
func sampleFrames(ctx context.Context, player videoPlayer, n int) []models.Frame {
	state, ok, err := player.Probe(ctx)
	if err != nil {
		log.Printf("Warning: Failed to probe video element: %v", err)
		return nil
	}
	if !ok {
		log.Println("Video element missing or not ready, skipping frame capture")
		return nil
	}

	defer func() {
		if err := player.Seek(context.WithoutCancel(ctx), state.CurrentTime); err != nil {
			log.Printf("Warning: Failed to restore playback position: %v", err)
		}
	}()

	var frames []models.Frame
	for _, ts := range FrameTimestamps(state.Duration, n) {
		if ctx.Err() != nil {
			break
		}
		image, err := player.Capture(ctx, ts)
		if err != nil {
			log.Printf("Frame capture error at %.1fs: %v", ts, err)
			continue
		}
		if image == "" {
			continue
		}
		frames = append(frames, models.Frame{Timestamp: ts, Image: image})
	}
	return frames
}

package extractor

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// StatsClient looks up view and subscriber counts through the YouTube Data API.
// It only fills counts the page did not show.
type StatsClient struct {
	service *youtube.Service
}

func NewStatsClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*StatsClient, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &StatsClient{service: service}, nil
}

// Lookup returns display strings such as "1,234 views" and "56,000 subscribers".
// A hidden subscriber count comes back empty.
func (s *StatsClient) Lookup(ctx context.Context, videoID string) (views, subscribers string, err error) {
	videosResponse, err := s.service.Videos.List([]string{"snippet", "statistics"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return "", "", fmt.Errorf("failed to get video statistics: %w", err)
	}
	if len(videosResponse.Items) == 0 {
		return "", "", fmt.Errorf("video %s not found", videoID)
	}

	item := videosResponse.Items[0]
	if item.Statistics != nil {
		views = humanize.Comma(int64(item.Statistics.ViewCount)) + " views"
	}
	if item.Snippet == nil || item.Snippet.ChannelId == "" {
		return views, "", nil
	}

	channelsResponse, err := s.service.Channels.List([]string{"statistics"}).
		Id(item.Snippet.ChannelId).
		Context(ctx).
		Do()
	if err != nil {
		return views, "", fmt.Errorf("failed to get channel statistics: %w", err)
	}
	if len(channelsResponse.Items) > 0 {
		stats := channelsResponse.Items[0].Statistics
		if stats != nil && !stats.HiddenSubscriberCount {
			subscribers = humanize.Comma(int64(stats.SubscriberCount)) + " subscribers"
		}
	}
	return views, subscribers, nil
}

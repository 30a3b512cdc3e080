package service

import (
	"context"

	config "github.com/maheshrc27/postpilot/configs"
)

// PlatformClient posts a single piece of content to one destination network
// and returns the network's id for the created post.
type PlatformClient interface {
	Name() string
	Publish(ctx context.Context, content string, imageURL *string) (string, error)
}

// NewPlatformClients builds the full client set in fan-out order. Clients for
// platforms without credentials are still constructed; they fail on use, and
// the publisher records the failure for that platform alone.
func NewPlatformClients(cfg *config.Config, media MediaService) []PlatformClient {
	return []PlatformClient{
		NewTwitterClient(cfg.Twitter, media),
		NewInstagramClient(cfg.Instagram),
		NewFacebookClient(cfg.Facebook, media),
		NewPinterestClient(cfg.Pinterest, media),
	}
}

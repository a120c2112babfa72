package cloudinary

import (
	"net/http"
	"time"

	"github.com/yannsunn/amazon-fba-image-optimizer/internal/config"
)

// DeliveryHost is the host all optimized asset URLs are served from. The
// download relay refuses to proxy anything hosted elsewhere.
const DeliveryHost = "res.cloudinary.com"

const defaultAPIBase = "https://api.cloudinary.com/v1_1"

// Client talks to the hosted image transformation service. It covers the
// two calls this service needs: upload-with-transform and the usage query.
type Client struct {
	httpClient *http.Client
	apiBase    string
	cloudName  string
	apiKey     string
	apiSecret  string
	folder     string
	now        func() time.Time
}

func NewClient(cfg config.CloudinaryConfig) *Client {
	return &Client{
		httpClient: &http.Client{},
		apiBase:    defaultAPIBase,
		cloudName:  cfg.CloudName,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		folder:     cfg.Folder,
		now:        time.Now,
	}
}

// Configured reports whether credentials are present. Handlers turn a false
// result into a service-unavailable response before any remote call.
func (c *Client) Configured() bool {
	return c.cloudName != "" && c.apiKey != "" && c.apiSecret != ""
}

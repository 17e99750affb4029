package transfer

// PublishRequest is the body sent to the external publishing service for a
// single platform delivery.
type PublishRequest struct {
	Content      string           `json:"content"`
	Platforms    []PlatformTarget `json:"platforms"`
	ScheduledFor string           `json:"scheduledFor,omitempty"`
	Timezone     string           `json:"timezone,omitempty"`
	MediaItems   []MediaItem      `json:"mediaItems,omitempty"`
	ProfileID    string           `json:"profileId,omitempty"`
}

type PlatformTarget struct {
	Platform string `json:"platform"`
}

type MediaItem struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type PublishResponse struct {
	Message string `json:"message"`
	Post    struct {
		ID     string `json:"_id"`
		Status string `json:"status"`
	} `json:"post"`
}

type PublishErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

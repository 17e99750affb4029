package transfer

type PostData struct {
	Platforms []string `json:"platforms" validate:"required,min=1,dive,required"`
}

type ScheduleRequest struct {
	UnscheduledPostID string   `json:"unscheduledPostId" validate:"required"`
	PostData          PostData `json:"postData" validate:"required"`
	ScheduledDate     string   `json:"scheduledDate" validate:"required"`
	ScheduledTime     string   `json:"scheduledTime" validate:"required"`
}

type UpdateTimeRequest struct {
	PostID        string `json:"postId" validate:"required"`
	ScheduledTime string `json:"scheduledTime" validate:"required"`
}

type CaptionRequest struct {
	Caption string `json:"caption" validate:"required"`
}

type DraftRequest struct {
	Caption   string   `json:"caption"`
	ImageURL  *string  `json:"image_url"`
	Status    string   `json:"status" validate:"omitempty,oneof=draft ready"`
	Platforms []string `json:"platforms"`
}

type GlobalTimeRequest struct {
	Time string `json:"time" validate:"required"`
}

type ApplyGlobalTimeRequest struct {
	PostIDs []string `json:"postIds"`
}

type MoveRequest struct {
	PostKey string `json:"postKey" validate:"required"`
	Target  string `json:"target" validate:"required"`
}

type ConvertUploadRequest struct {
	ProjectID string `json:"projectId" validate:"required"`
}

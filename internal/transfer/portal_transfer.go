package transfer

type ApprovalRequest struct {
	Token          string  `json:"token" validate:"required"`
	PostID         string  `json:"post_id" validate:"required"`
	PostType       string  `json:"post_type"`
	ApprovalStatus string  `json:"approval_status" validate:"required,oneof=approved rejected needs_attention"`
	ClientComments *string `json:"client_comments"`
	EditedCaption  *string `json:"edited_caption"`
}

type BatchDecision struct {
	PostID         string  `json:"post_id"`
	PostType       string  `json:"post_type"`
	ApprovalStatus string  `json:"approval_status"`
	ClientComments *string `json:"client_comments"`
	EditedCaption  *string `json:"edited_caption"`
}

// BatchApprovalRequest carries decisions as a list. Each decision is matched
// back to its post by key, never by position.
type BatchApprovalRequest struct {
	Token     string          `json:"token" validate:"required"`
	Decisions []BatchDecision `json:"decisions"`
}

type ResubmitRequest struct {
	Token string `json:"token" validate:"required"`
}

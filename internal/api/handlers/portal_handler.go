package handlers

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/contentflow/internal/models"
	"github.com/maheshrc27/contentflow/internal/service"
	"github.com/maheshrc27/contentflow/internal/transfer"
)

// PortalHandler serves the client portal. Every request carries an opaque
// portal token instead of an agency session.
type PortalHandler struct {
	tokens    service.PortalTokenService
	approvals service.ApprovalService
	batch     service.BatchApprovalService
	calendar  service.CalendarService
	uploads   service.UploadService
}

func NewPortalHandler(
	tokens service.PortalTokenService,
	approvals service.ApprovalService,
	batch service.BatchApprovalService,
	calendar service.CalendarService,
	uploads service.UploadService) *PortalHandler {
	return &PortalHandler{
		tokens:    tokens,
		approvals: approvals,
		batch:     batch,
		calendar:  calendar,
		uploads:   uploads,
	}
}

func clientActor(clientID string) string {
	return "client:" + clientID
}

// postKey builds a key from the portal's post_type and post_id. A missing
// post_type means a planner post.
func postKey(postType, postID string) (models.PostKey, error) {
	if strings.TrimSpace(postType) == "" {
		postType = string(models.KindPlannerScheduled)
	}
	return models.NewPostKey(postType, postID)
}

func (h *PortalHandler) Approve(c *fiber.Ctx) error {
	var req transfer.ApprovalRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	clientID, err := h.tokens.ResolveClient(c.UserContext(), req.Token)
	if err != nil {
		return respondError(c, err)
	}

	key, err := postKey(req.PostType, req.PostID)
	if err != nil {
		return respondError(c, fmt.Errorf("%w: %v", service.ErrInvalidRequest, err))
	}

	post, err := h.approvals.Review(c.UserContext(), clientID, key, service.Review{
		Decision: service.Decision{
			Status:  req.ApprovalStatus,
			Comment: req.ClientComments,
			Actor:   clientActor(clientID),
		},
		EditedCaption: req.EditedCaption,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"result": post})
}

// ApproveBatch stages every decision into a session and submits it. Items
// with malformed keys are reported as failures next to the engine results.
func (h *PortalHandler) ApproveBatch(c *fiber.Ctx) error {
	var req transfer.BatchApprovalRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	if len(req.Decisions) == 0 {
		return respondError(c, service.ErrEmptyBatch)
	}

	clientID, err := h.tokens.ResolveClient(c.UserContext(), req.Token)
	if err != nil {
		return respondError(c, err)
	}

	session := service.NewApprovalSession()
	var rejected []service.ItemFailure
	for _, d := range req.Decisions {
		key, err := postKey(d.PostType, d.PostID)
		if err != nil {
			rejected = append(rejected, service.ItemFailure{
				Key:    models.PostKey{Kind: models.PostKind(d.PostType), ID: d.PostID},
				Code:   service.ErrorMap[service.ErrInvalidRequest].Code,
				Reason: err.Error(),
			})
			continue
		}
		session.Stage(key, service.Review{
			Decision: service.Decision{
				Status:  d.ApprovalStatus,
				Comment: d.ClientComments,
				Actor:   clientActor(clientID),
			},
			EditedCaption: d.EditedCaption,
		})
	}

	result := &service.BatchResult{}
	if session.Len() > 0 {
		result, err = h.batch.SubmitBatch(c.UserContext(), clientID, session)
		if err != nil {
			return respondError(c, err)
		}
	}
	result.AddFailures(rejected...)

	slog.Info("batch approval processed", "client_id", clientID, "status", result.Status,
		"succeeded", result.SucceededCount, "failed", result.FailedCount)
	return c.JSON(fiber.Map{"result": result})
}

func (h *PortalHandler) Resubmit(c *fiber.Ctx) error {
	var req transfer.ResubmitRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}

	clientID, err := h.tokens.ResolveClient(c.UserContext(), req.Token)
	if err != nil {
		return respondError(c, err)
	}

	post, err := h.approvals.Resubmit(c.UserContext(), clientID, c.Params("postId"), clientActor(clientID))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"result": post})
}

// Calendar answers 408 when the store timed out, so the portal can retry
// once, and 404 when the range holds no posts.
func (h *PortalHandler) Calendar(c *fiber.Ctx) error {
	clientID, err := h.tokens.ResolveClient(c.UserContext(), c.Query("token"))
	if err != nil {
		return respondError(c, err)
	}

	calendar, err := h.calendar.ClientCalendar(c.UserContext(), clientID, c.Query("startDate"), c.Query("endDate"), c.QueryBool("refresh", false))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"posts": calendar})
}

func (h *PortalHandler) Upload(c *fiber.Ctx) error {
	clientID, err := h.tokens.ResolveClient(c.UserContext(), c.FormValue("token"))
	if err != nil {
		return respondError(c, err)
	}

	header, err := c.FormFile("file")
	if err != nil {
		return respondError(c, fmt.Errorf("%w: file is required", service.ErrInvalidRequest))
	}
	file, err := header.Open()
	if err != nil {
		return respondError(c, fmt.Errorf("open upload: %w", err))
	}
	defer file.Close()

	var projectID *string
	if p := c.FormValue("project_id"); p != "" {
		projectID = &p
	}

	upload, err := h.uploads.Upload(c.UserContext(), clientID, service.UploadInput{
		ProjectID: projectID,
		Notes:     c.FormValue("notes"),
		File:      file,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"upload": upload})
}

func (h *PortalHandler) ListUploads(c *fiber.Ctx) error {
	clientID, err := h.tokens.ResolveClient(c.UserContext(), c.Query("token"))
	if err != nil {
		return respondError(c, err)
	}

	uploads, err := h.uploads.List(c.UserContext(), clientID)
	if err != nil {
		return respondError(c, err)
	}
	if uploads == nil {
		uploads = []*models.Upload{}
	}
	return c.JSON(fiber.Map{"uploads": uploads})
}

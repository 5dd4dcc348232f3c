package users

import (
	"encoding/json"
	"net/http"
	"strconv"

	"jobmatchhub/internal/contextutils"
	"jobmatchhub/internal/models"
	"jobmatchhub/internal/response"
	"jobmatchhub/internal/services"

	"go.uber.org/zap"
)

// maxUploadMemory bounds multipart form parsing for resume and avatar uploads
const maxUploadMemory = 10 << 20

// UserController handles profile, upload, and admin user endpoints
type UserController struct {
	services *services.ServiceCollection
	logger   *zap.Logger
	builder  *response.Builder
}

// NewUserController creates a new user controller
func NewUserController(services *services.ServiceCollection, logger *zap.Logger, builder *response.Builder) *UserController {
	return &UserController{
		services: services,
		logger:   logger,
		builder:  builder,
	}
}

// GetUser returns a public user profile
func (c *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid user ID", err))
		return
	}

	user, err := c.services.UserService.GetUserByID(r.Context(), userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, user)
}

// UpdateProfile updates the authenticated user's name and profile
func (c *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.UserID = contextutils.GetUserID(r.Context())

	user, err := c.services.UserService.UpdateProfile(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, user)
}

// UploadResume uploads a resume document and stores its URL on the profile
func (c *UserController) UploadResume(w http.ResponseWriter, r *http.Request) {
	c.handleUpload(w, r, "resume")
}

// UploadAvatar uploads a profile image and stores its URL on the profile
func (c *UserController) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	c.handleUpload(w, r, "avatar")
}

func (c *UserController) handleUpload(w http.ResponseWriter, r *http.Request, fileType string) {
	userID := contextutils.GetUserID(r.Context())

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid multipart form", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("missing file field", err))
		return
	}
	defer file.Close()

	req := &services.FileUploadRequest{
		UserID:      userID,
		File:        file,
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	}

	var result *services.FileUploadResult
	if fileType == "resume" {
		result, err = c.services.FileService.UploadResume(r.Context(), req)
	} else {
		result, err = c.services.FileService.UploadAvatar(r.Context(), req)
	}
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	// Persist the new URL on the profile so it survives re-login
	profile := models.Profile{}
	if fileType == "resume" {
		profile.Resume = result.URL
	} else {
		profile.Avatar = result.URL
	}
	if _, err := c.services.UserService.UpdateProfile(r.Context(), &services.UpdateProfileRequest{
		UserID:  userID,
		Profile: &profile,
	}); err != nil {
		c.logger.Warn("Failed to store uploaded file URL on profile",
			zap.Int64("user_id", userID),
			zap.String("file_type", fileType),
			zap.Error(err),
		)
	}

	c.builder.WriteCreated(w, r, result)
}

// ===============================
// ADMIN ENDPOINTS
// ===============================

// ListUsers returns a page of users, optionally filtered by role
func (c *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	req := &services.ListUsersRequest{
		Role:       r.URL.Query().Get("role"),
		Pagination: response.ParsePagination(r),
	}

	page, err := c.services.UserService.ListUsers(r.Context(), req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WritePaginated(w, r, page.Data, page.Pagination)
}

// SetUserActive activates or deactivates an account
func (c *UserController) SetUserActive(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid user ID", err))
		return
	}

	var req services.SetUserActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.AdminID = contextutils.GetUserID(r.Context())
	req.UserID = userID

	if err := c.services.UserService.SetUserActive(r.Context(), &req); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, map[string]interface{}{
		"user_id":   userID,
		"is_active": req.Active,
	})
}

// UpdateUserRole changes an account's role
func (c *UserController) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid user ID", err))
		return
	}

	var req services.UpdateUserRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.AdminID = contextutils.GetUserID(r.Context())
	req.UserID = userID

	user, err := c.services.UserService.UpdateUserRole(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteSuccess(w, r, user)
}

// DeleteUser permanently removes an account
func (c *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid user ID", err))
		return
	}

	adminID := contextutils.GetUserID(r.Context())
	if err := c.services.UserService.DeleteUser(r.Context(), adminID, userID); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}

	c.builder.WriteNoContent(w, r)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

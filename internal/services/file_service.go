// file: internal/services/file_service.go
package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"jobmatchhub/internal/config"
	"jobmatchhub/internal/events"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// fileService implements FileService over Cloudinary
type fileService struct {
	cloudinary *cloudinary.Cloudinary
	cfg        *config.CloudinaryConfig
	events     events.EventBus
	logger     *zap.Logger
}

// NewFileService creates a new file service. The Cloudinary client is
// nil when credentials are not configured, in which case uploads fail
// with a service unavailable error.
func NewFileService(
	cld *cloudinary.Cloudinary,
	cfg *config.CloudinaryConfig,
	eventBus events.EventBus,
	logger *zap.Logger,
) FileService {
	return &fileService{
		cloudinary: cld,
		cfg:        cfg,
		events:     eventBus,
		logger:     logger,
	}
}

// NewCloudinaryClient builds the client from config credentials
func NewCloudinaryClient(cfg *config.CloudinaryConfig) (*cloudinary.Cloudinary, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, nil
	}
	return cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
}

const uploadTimeout = 2 * time.Minute

var resumeFormats = map[string]bool{
	"pdf": true, "doc": true, "docx": true,
}

var avatarFormats = map[string]bool{
	"jpg": true, "jpeg": true, "png": true,
}

// UploadResume stores a resume document and returns its URL
func (s *fileService) UploadResume(ctx context.Context, req *FileUploadRequest) (*FileUploadResult, error) {
	if err := s.validateUpload(req, resumeFormats); err != nil {
		return nil, err
	}
	return s.upload(ctx, req, "resume", "raw", s.cfg.UploadFolder+"/resumes")
}

// UploadAvatar stores a profile image and returns its URL
func (s *fileService) UploadAvatar(ctx context.Context, req *FileUploadRequest) (*FileUploadResult, error) {
	if err := s.validateUpload(req, avatarFormats); err != nil {
		return nil, err
	}
	return s.upload(ctx, req, "avatar", "image", s.cfg.UploadFolder+"/avatars")
}

func (s *fileService) validateUpload(req *FileUploadRequest, allowed map[string]bool) error {
	if req.File == nil || req.Filename == "" {
		return NewValidationError("a file is required", nil)
	}
	if req.Size > s.cfg.MaxFileSize {
		return NewValidationError(
			fmt.Sprintf("file exceeds the maximum size of %d bytes", s.cfg.MaxFileSize), nil)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(req.Filename)), ".")
	if !allowed[ext] {
		return NewValidationError(fmt.Sprintf("file format %q is not allowed", ext), nil)
	}

	return nil
}

func (s *fileService) upload(ctx context.Context, req *FileUploadRequest, fileType, resourceType, folder string) (*FileUploadResult, error) {
	if s.cloudinary == nil {
		return nil, NewServiceUnavailableError("file uploads are not configured")
	}

	uploadCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	t := true
	params := uploader.UploadParams{
		Folder:         folder,
		ResourceType:   resourceType,
		UseFilename:    &t,
		UniqueFilename: &t,
		Tags:           []string{"jobmatchhub", fileType},
	}

	result, err := s.cloudinary.Upload.Upload(uploadCtx, req.File, params)
	if err != nil {
		s.logger.Error("Failed to upload file",
			zap.Error(err),
			zap.Int64("user_id", req.UserID),
			zap.String("filename", req.Filename),
		)
		return nil, NewInternalError("failed to upload file", err)
	}

	uploadResult := &FileUploadResult{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
		Size:     int64(result.Bytes),
		Format:   result.Format,
	}

	s.events.PublishAsync(ctx, events.NewFileUploadedEvent(
		fileType, uploadResult.Size, uploadResult.URL, uploadResult.PublicID, &req.UserID,
	))

	s.logger.Info("File uploaded",
		zap.Int64("user_id", req.UserID),
		zap.String("type", fileType),
		zap.String("public_id", uploadResult.PublicID),
	)

	return uploadResult, nil
}

// DeleteFile removes an uploaded file
func (s *fileService) DeleteFile(ctx context.Context, publicID string) error {
	if publicID == "" {
		return NewValidationError("public ID is required", nil)
	}
	if s.cloudinary == nil {
		return NewServiceUnavailableError("file uploads are not configured")
	}

	deleteCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := s.cloudinary.Upload.Destroy(deleteCtx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		s.logger.Error("Failed to delete file",
			zap.Error(err),
			zap.String("public_id", publicID),
		)
		return NewInternalError("failed to delete file", err)
	}

	if result.Result != "ok" {
		s.logger.Warn("File deletion result was not ok",
			zap.String("public_id", publicID),
			zap.String("result", result.Result),
		)
	}

	return nil
}

package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/shamba/internal/apperr"
	"github.com/zulandar/shamba/internal/models"
	"github.com/zulandar/shamba/internal/schema"
	"gorm.io/gorm"
)

var commentSchema = schema.Entity{
	Name: "comment",
	Fields: []schema.Field{
		{Name: "task_id", Kind: schema.Ref, Required: true},
		{Name: "user_id", Kind: schema.Ref, Required: true},
		{Name: "content", Kind: schema.String, Required: true},
	},
}

var attachmentSchema = schema.Entity{
	Name: "attachment",
	Fields: []schema.Field{
		{Name: "task_id", Kind: schema.Ref, Required: true},
		{Name: "uploaded_by", Kind: schema.Ref, Required: true},
		{Name: "file_name", Kind: schema.String, Required: true, MaxLen: 255},
		{Name: "file_path", Kind: schema.String, Required: true},
		{Name: "file_type", Kind: schema.String, MaxLen: 100},
		{Name: "file_size", Kind: schema.Int, NonNeg: true},
	},
}

// AttachmentOpts holds parameters for attaching a file to a task.
type AttachmentOpts struct {
	TaskID     uint
	UploadedBy uint
	FileName   string
	FilePath   string
	FileType   string
	FileSize   *int64
}

// AddComment records a comment by user on a task.
func AddComment(db *gorm.DB, taskID, userID uint, content string) (*models.TaskComment, error) {
	if err := commentSchema.Validate(schema.Values{"task_id": taskID, "user_id": userID, "content": content}); err != nil {
		return nil, fmt.Errorf("task: add comment: %w", err)
	}
	if _, err := Get(db, taskID); err != nil {
		return nil, fmt.Errorf("task: add comment: %w", err)
	}
	if err := requireUser(db, userID); err != nil {
		return nil, fmt.Errorf("task: add comment: %w", err)
	}

	c := models.TaskComment{TaskID: taskID, UserID: userID, Content: strings.TrimSpace(content)}
	if err := db.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("task: add comment: %w", apperr.Persistence("comment create", err))
	}
	return &c, nil
}

// EditComment replaces the content of a comment.
func EditComment(db *gorm.DB, commentID uint, content string) (*models.TaskComment, error) {
	if err := commentSchema.ValidatePartial(schema.Values{"content": content}); err != nil {
		return nil, fmt.Errorf("task: edit comment %d: %w", commentID, err)
	}
	var c models.TaskComment
	if err := db.Where("id = ?", commentID).First(&c).Error; err != nil {
		return nil, fmt.Errorf("task: edit comment %d: %w", commentID, apperr.Storage("comment get", "comment", commentID, err))
	}
	c.Content = strings.TrimSpace(content)
	c.UpdatedAt = models.NextUpdate(c.UpdatedAt, time.Now())
	if err := db.Model(&models.TaskComment{}).Where("id = ?", commentID).
		Updates(map[string]interface{}{"content": c.Content, "updated_at": c.UpdatedAt}).Error; err != nil {
		return nil, fmt.Errorf("task: edit comment %d: %w", commentID, apperr.Persistence("comment update", err))
	}
	return &c, nil
}

// Comments returns a task's comments, oldest first.
func Comments(db *gorm.DB, taskID uint) ([]models.TaskComment, error) {
	var out []models.TaskComment
	if err := db.Where("task_id = ?", taskID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("task: comments of %d: %w", taskID, apperr.Persistence("comment list", err))
	}
	return out, nil
}

// AddAttachment records a file attached to a task.
func AddAttachment(db *gorm.DB, opts AttachmentOpts) (*models.TaskAttachment, error) {
	if err := attachmentSchema.Validate(schema.Values{
		"task_id":     opts.TaskID,
		"uploaded_by": opts.UploadedBy,
		"file_name":   opts.FileName,
		"file_path":   opts.FilePath,
		"file_type":   opts.FileType,
		"file_size":   opts.FileSize,
	}); err != nil {
		return nil, fmt.Errorf("task: add attachment: %w", err)
	}
	if _, err := Get(db, opts.TaskID); err != nil {
		return nil, fmt.Errorf("task: add attachment: %w", err)
	}
	if err := requireUser(db, opts.UploadedBy); err != nil {
		return nil, fmt.Errorf("task: add attachment: %w", err)
	}

	a := models.TaskAttachment{
		TaskID:     opts.TaskID,
		FileName:   opts.FileName,
		FilePath:   opts.FilePath,
		FileType:   opts.FileType,
		FileSize:   opts.FileSize,
		UploadedBy: opts.UploadedBy,
		UploadedAt: time.Now(),
	}
	if err := db.Create(&a).Error; err != nil {
		return nil, fmt.Errorf("task: add attachment: %w", apperr.Persistence("attachment create", err))
	}
	return &a, nil
}

// Attachments returns a task's attachments, oldest first.
func Attachments(db *gorm.DB, taskID uint) ([]models.TaskAttachment, error) {
	var out []models.TaskAttachment
	if err := db.Where("task_id = ?", taskID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("task: attachments of %d: %w", taskID, apperr.Persistence("attachment list", err))
	}
	return out, nil
}

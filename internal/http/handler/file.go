package handler

import (
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/math-u-t/litedrive/internal/model"
	"github.com/math-u-t/litedrive/internal/service"
)

type uploadRequest struct {
	FileName string `json:"fileName" validate:"required"`
	FileData string `json:"fileData" validate:"required"`
	UserID   string `json:"userId" validate:"required"`
	// FileSize accepts any JSON number, including 1.5e7 and 1048576.0.
	FileSize *float64 `json:"fileSize"`
	MimeType string   `json:"mimeType"`
}

type deleteRequest struct {
	FileID string `json:"fileId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
}

// declaredSize converts a client-declared size to bytes. Values beyond the limit,
// including ones that do not fit an int64, become MaxFileSize+1 so the service
// rejects them as too large.
func declaredSize(f *float64) *int64 {
	if f == nil {
		return nil
	}
	n := model.MaxFileSize + 1
	if *f <= float64(model.MaxFileSize) {
		n = int64(math.Ceil(*f))
	}
	return &n
}

// decodeJSON parses the body regardless of Content-Type; browser clients post JSON
// as text/plain. A malformed body is a 400.
func decodeJSON(c *fiber.Ctx, v any) error {
	if err := c.App().Config().JSONDecoder(c.Body(), v); err != nil {
		return fiber.ErrBadRequest
	}
	return nil
}

// UploadFile godoc
// @Summary      Upload a file
// @Description  Stores base64 file data in object storage, then records its metadata.
// @Tags         files
// @Accept       json
// @Produce      json
// @Param        body  body      uploadRequest  true  "file payload"
// @Success      200   {object}  service.UploadResult
// @Failure      400   {object}  errorPayload
// @Failure      413   {object}  errorPayload
// @Failure      415   {object}  errorPayload
// @Failure      500   {object}  errorPayload
// @Router       /api/upload [post]
func UploadFile(svc service.FileService, validate *validator.Validate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req uploadRequest
		if err := decodeJSON(c, &req); err != nil {
			return err
		}
		if err := validate.Struct(req); err != nil {
			return writeServiceError(c, service.ErrMissingFields)
		}

		res, err := svc.Upload(c.UserContext(), service.UploadInput{
			FileName: req.FileName,
			FileData: req.FileData,
			OwnerID:  req.UserID,
			FileSize: declaredSize(req.FileSize),
			MimeType: req.MimeType,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(res)
	}
}

// ListFiles godoc
// @Summary      List files
// @Description  Returns the owner's files, most recent first.
// @Tags         files
// @Produce      json
// @Param        userId  query     string  true  "owner id"
// @Success      200     {array}   model.FileRecord
// @Failure      400     {object}  errorPayload
// @Failure      500     {object}  errorPayload
// @Router       /api/list [get]
func ListFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext(), c.Query("userId"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(items)
	}
}

// DeleteFile godoc
// @Summary      Delete a file
// @Description  Removes the metadata record, then the stored object.
// @Tags         files
// @Accept       json
// @Produce      json
// @Param        body  body      deleteRequest  true  "file to delete"
// @Success      200   {object}  map[string]bool
// @Failure      400   {object}  errorPayload
// @Failure      404   {object}  errorPayload
// @Failure      500   {object}  errorPayload
// @Router       /api/delete [delete]
func DeleteFile(svc service.FileService, validate *validator.Validate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req deleteRequest
		if err := decodeJSON(c, &req); err != nil {
			return err
		}
		if err := validate.Struct(req); err != nil {
			return writeServiceError(c, service.ErrMissingFields)
		}

		if err := svc.Delete(c.UserContext(), service.DeleteInput{
			FileID:  req.FileID,
			OwnerID: req.UserID,
		}); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// MethodNotAllowed answers every method not registered on a file endpoint.
func MethodNotAllowed() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return fiber.ErrMethodNotAllowed
	}
}

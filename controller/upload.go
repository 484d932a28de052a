package controller

import (
	"docchat-backend/dao"
	"docchat-backend/response"
	"docchat-backend/service/upload"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

func UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		slog.Error(ErrNoFileUploaded.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.ErrorResponse{
			Error: ErrNoFileUploaded.Error(),
		})
		return
	}

	file, err := uploadPipeline.Process(c.Request.Context(), fileHeader)
	if err != nil {
		if errors.Is(err, upload.ErrUnsupportedType) || errors.Is(err, upload.ErrDuplicateFile) {
			c.AbortWithStatusJSON(http.StatusBadRequest, response.ErrorResponse{
				Error: err.Error(),
			})
			return
		}

		slog.Error(ErrUploadFile.Error(), "file", fileHeader.Filename, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorResponse{
			Error: userFacingMessage(err),
		})
		return
	}

	totalFiles, err := dao.CountFiles()
	if err != nil {
		slog.Error(ErrGetFiles.Error(), "err", err)
	}

	c.JSON(http.StatusOK, response.UploadResponse{
		Success:    true,
		FileName:   file.FileName,
		TotalFiles: totalFiles,
		FileID:     file.ID,
	})
}

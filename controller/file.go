package controller

import (
	"docchat-backend/dao"
	"docchat-backend/response"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func GetFiles(c *gin.Context) {
	files, err := dao.GetFiles()
	if err != nil {
		slog.Error(ErrGetFiles.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorResponse{
			Error: ErrGetFiles.Error(),
		})
		return
	}

	resp := response.GetFilesResponse{
		Count: len(files),
		Files: make([]response.FileResponse, 0, len(files)),
	}
	if store != nil {
		resp.StoreName = store.Name
	}

	for _, f := range files {
		resp.Files = append(resp.Files, response.FileResponse{
			ID:         f.ID,
			FileName:   f.FileName,
			FileSize:   f.FileSize,
			UploadedAt: f.UploadedAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}

func DeleteFile(c *gin.Context) {
	fileID := c.Param("fileId")

	file, err := uploadPipeline.Remove(c.Request.Context(), fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, response.ErrorResponse{
				Error: ErrFileNotFound.Error(),
			})
			return
		}

		slog.Error(ErrDeleteFile.Error(), "file_id", fileID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorResponse{
			Error: userFacingMessage(err),
		})
		return
	}

	totalFiles, err := dao.CountFiles()
	if err != nil {
		slog.Error(ErrGetFiles.Error(), "err", err)
	}

	c.JSON(http.StatusOK, response.DeleteFileResponse{
		Success:    true,
		FileName:   file.FileName,
		TotalFiles: totalFiles,
	})
}

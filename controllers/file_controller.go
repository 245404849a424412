package controllers

import (
	"io"
	"os"
	"path/filepath"

	"stockanalyzer/services"

	"github.com/gin-gonic/gin"
)

type FileControllerI interface {
	ParseXLSXFile(ctx *gin.Context)
}

type fileController struct {
	files services.FileServiceI
}

func NewFileController(files services.FileServiceI) FileControllerI {
	return &fileController{files: files}
}

func (f *fileController) ParseXLSXFile(ctx *gin.Context) {
	// Parse the form and retrieve the uploaded files
	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(400, gin.H{"error": "Error parsing form data"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		ctx.JSON(400, gin.H{"error": "No files found"})
		return
	}

	uploadDir := "./uploads"
	if err := os.MkdirAll(uploadDir, os.ModePerm); err != nil {
		ctx.JSON(500, gin.H{"error": "Error creating upload directory"})
		return
	}

	savedFilePaths := make(chan string, len(files))
	for _, file := range files {
		src, err := file.Open()
		if err != nil {
			ctx.JSON(500, gin.H{"error": "Error opening file"})
			return
		}
		defer src.Close()

		savePath := filepath.Join(uploadDir, filepath.Base(file.Filename))
		dst, err := os.Create(savePath)
		if err != nil {
			ctx.JSON(500, gin.H{"error": "Error creating file on server"})
			return
		}
		defer dst.Close()

		if _, err := io.Copy(dst, src); err != nil {
			ctx.JSON(500, gin.H{"error": "Error saving file"})
			return
		}
		savedFilePaths <- savePath
	}
	close(savedFilePaths)

	// Chunked transfer: each scanned symbol streams back as one JSON line.
	ctx.Writer.Header().Set("Content-Type", "application/x-ndjson")
	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Writer.Header().Set("Connection", "keep-alive")

	if err := f.files.ParseXLSXFile(ctx, savedFilePaths, ctx.Request.Context()); err != nil {
		ctx.JSON(500, gin.H{"error": err.Error()})
		return
	}

	ctx.Writer.Write([]byte("\nStream complete.\n"))
	ctx.Writer.Flush()
}

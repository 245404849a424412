package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"stockanalyzer/utils/helpers"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type FileServiceI interface {
	ParseXLSXFile(ctx *gin.Context, files <-chan string, sentryCtx context.Context) error
}

type fileService struct {
	scanner       ScanServiceI
	cloudinaryURL string
}

func NewFileService(scanner ScanServiceI, cloudinaryURL string) FileServiceI {
	return &fileService{scanner: scanner, cloudinaryURL: cloudinaryURL}
}

// ParseXLSXFile archives each uploaded workbook to Cloudinary, pulls the
// ticker symbols out of it and streams scan results for them back to the
// client as newline-delimited JSON.
func (fs *fileService) ParseXLSXFile(ctx *gin.Context, files <-chan string, sentryCtx context.Context) error {
	defer sentry.Recover()
	span := sentry.StartSpan(sentryCtx, "[DAO] ParseXLSXFile")
	defer span.Finish()

	cld, err := cloudinary.NewFromURL(fs.cloudinaryURL)
	if err != nil {
		sentry.CaptureException(err)
		span.Status = sentry.SpanStatusInternalError
		return fmt.Errorf("error initializing Cloudinary: %w", err)
	}

	for filePath := range files {
		file, err := os.Open(filePath)
		if err != nil {
			sentry.CaptureException(err)
			zap.L().Error("Error opening file", zap.String("filePath", filePath), zap.Error(err))
			removeFile(filePath)
			continue
		}

		// Generate a UUID for the filename
		cloudinaryFilename := uuid.New().String() + ".xlsx"
		uploadSpan := sentry.StartSpan(span.Context(), "[DB] Upload XLSX File")
		uploadResult, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
			PublicID: cloudinaryFilename,
			Folder:   "xlsx_uploads",
		})
		uploadSpan.Finish()
		if err != nil {
			zap.L().Error("Error uploading file to Cloudinary", zap.String("filePath", filePath), zap.Error(err))
			sentry.CaptureException(err)
			file.Close()
			removeFile(filePath)
			continue
		}
		zap.L().Info("File uploaded to Cloudinary", zap.String("filePath", filePath), zap.String("url", uploadResult.SecureURL))

		if _, err := file.Seek(0, 0); err != nil {
			zap.L().Error("Error seeking file", zap.String("filePath", filePath), zap.Error(err))
			sentry.CaptureException(err)
			file.Close()
			removeFile(filePath)
			continue
		}

		symbols, err := extractSymbols(file)
		file.Close()
		removeFile(filePath)
		if err != nil {
			sentry.CaptureException(err)
			zap.L().Error("Error parsing XLSX file", zap.String("filePath", filePath), zap.Error(err))
			continue
		}
		if len(symbols) == 0 {
			zap.L().Warn("No ticker symbols found in workbook", zap.String("filePath", filePath))
			continue
		}

		scanSpan := sentry.StartSpan(span.Context(), "[DAO] ScanUploadedSymbols")
		results := fs.scanner.Scan(ctx, symbols, ProfileStandard)
		scanSpan.Finish()

		for _, result := range results {
			line, err := json.Marshal(result)
			if err != nil {
				zap.L().Error("Error marshaling scan result", zap.String("symbol", result.Symbol), zap.Error(err))
				continue
			}
			if _, err := ctx.Writer.Write(append(line, '\n')); err != nil {
				zap.L().Error("Error writing scan result", zap.Error(err))
				return err
			}
			ctx.Writer.Flush()
		}
	}
	return nil
}

// extractSymbols reads every sheet looking for a symbol/ticker column; if
// no header row announces one, any cell that looks like a ticker counts.
func extractSymbols(file *os.File) ([]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seen := map[string]bool{}
	symbols := []string{}
	add := func(cell string) {
		s := strings.ToUpper(strings.TrimSpace(cell))
		if !helpers.TickerRe.MatchString(s) || seen[s] {
			return
		}
		seen[s] = true
		symbols = append(symbols, s)
	}

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			zap.L().Error("Error reading rows from sheet", zap.String("sheet", sheet), zap.Error(err))
			continue
		}

		symbolCol := -1
		for _, row := range rows {
			if len(row) == 0 {
				continue
			}
			if symbolCol == -1 {
				for i, cell := range row {
					if helpers.MatchHeader(cell, []string{`^symbol$`, `^ticker(\s*symbol)?$`}) {
						symbolCol = i
						break
					}
				}
				if symbolCol >= 0 {
					continue
				}
			}

			if symbolCol >= 0 {
				if symbolCol < len(row) {
					add(row[symbolCol])
				}
			} else {
				add(row[0])
			}
		}
	}
	return symbols, nil
}

func removeFile(filePath string) {
	if err := os.Remove(filePath); err != nil {
		zap.L().Error("Error removing file", zap.String("filePath", filePath), zap.Error(err))
	} else {
		zap.L().Info("File removed successfully", zap.String("filePath", filePath))
	}
}

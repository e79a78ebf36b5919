package http

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/filedeck/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/filedeck/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/filedeck/internal/providers/filesystem"
	"github.com/GriffinCanCode/filedeck/internal/shared/id"
	"github.com/GriffinCanCode/filedeck/internal/shared/utils"
)

// maxSanitizedPreview bounds the HTML previews that are buffered for
// sanitizing; larger documents are served as plain text.
const maxSanitizedPreview = 4 << 20

// Upload streams the multipart "file" part into the directory named by the
// "path" part, which must come first.
func (h *Handlers) Upload(c *gin.Context) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Content-Type must be multipart/form-data"})
		return
	}
	mr, err := c.Request.MultipartReader()
	if err != nil {
		badRequest(c, "Invalid multipart data")
		return
	}

	var targetDir string
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			badRequest(c, "Invalid multipart data")
			return
		}

		switch part.FormName() {
		case "path":
			b, err := io.ReadAll(io.LimitReader(part, utils.MaxPathLength+1))
			if err != nil {
				badRequest(c, "Invalid multipart data")
				return
			}
			targetDir = strings.TrimSpace(string(b))
		case "file":
			if targetDir == "" {
				badRequest(c, "Missing upload path")
				return
			}
			name := part.FileName()
			if name == "" || name == "." || name == string(filepath.Separator) {
				c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Missing file"})
				return
			}
			h.receive(c, part, filepath.Join(targetDir, name), name)
			return
		}
		part.Close()
	}

	if targetDir == "" {
		badRequest(c, "Missing upload path")
		return
	}
	c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Missing file"})
}

func (h *Handlers) receive(c *gin.Context, body io.Reader, target, name string) {
	ctx := c.Request.Context()

	wh, err := h.fs.OpenWriteHandle(ctx, target)
	if errors.Is(err, filesystem.ErrAlreadyExists) {
		_ = c.Error(err).SetType(gin.ErrorTypePublic)
		badRequest(c, "File already exists")
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	xfer := id.NewTransferID()
	done := h.track("upload")
	for chunk, rerr := range readerChunks(body, h.fs.ChunkSize()) {
		if rerr == nil {
			rerr = ctx.Err()
		}
		if rerr == nil {
			_, rerr = wh.Write(chunk)
		}
		if rerr != nil {
			_ = wh.Abort()
			done(rerr)
			h.metrics.AddBytes(monitoring.DirectionUpload, wh.Written())
			if ctx.Err() != nil {
				h.disconnected(c, xfer, wh.Written())
				return
			}
			h.fail(c, rerr)
			return
		}
	}
	err = wh.Close()
	done(err)
	h.metrics.AddBytes(monitoring.DirectionUpload, wh.Written())
	if err != nil {
		_ = wh.Abort()
		h.fail(c, err)
		return
	}

	tracing.Logger(ctx, h.logger).Debug("upload finished",
		zap.String("transfer_id", xfer.String()),
		zap.Int64("bytes", wh.Written()),
	)
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"filename": name,
	})
}

// Download sends a single file as an attachment; anything else (several
// paths, or a directory) is zipped into download.zip.
func (h *Handlers) Download(c *gin.Context) {
	var req pathsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Paths) == 0 {
		badRequest(c, "Missing paths")
		return
	}
	if err := utils.ValidatePaths(req.Paths, "paths"); err != nil {
		badRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()

	if len(req.Paths) == 1 {
		obj, err := h.fs.Object(ctx, req.Paths[0])
		if err != nil {
			h.fail(c, err)
			return
		}
		if obj.IsFile {
			chunks, err := h.fs.StreamRead(ctx, obj.Path, 0)
			if err != nil {
				h.fail(c, err)
				return
			}
			c.Header("Content-Type", "application/octet-stream")
			c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": obj.Name}))
			c.Header("Content-Length", strconv.FormatInt(*obj.Size, 10))
			h.stream(c, http.StatusOK, chunks, monitoring.DirectionDownload)
			return
		}
	}

	done := h.track("zip")
	buf, err := h.fs.StreamZip(ctx, req.Paths)
	done(err)
	if err != nil {
		h.fail(c, err)
		return
	}

	size := int64(buf.Len())
	h.metrics.AddBytes(monitoring.DirectionArchive, size)
	c.DataFromReader(http.StatusOK, size, "application/zip", buf, map[string]string{
		"Content-Disposition": `attachment; filename="download.zip"`,
	})
}

// View serves a file inline for preview, honoring a single byte range.
func (h *Handlers) View(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		badRequest(c, "Missing path")
		return
	}
	ctx := c.Request.Context()
	rangeHeader := c.GetHeader("Range")

	rr, err := h.fs.OpenRange(ctx, path, rangeHeader)
	if errors.Is(err, filesystem.ErrRangeNotSatisfiable) {
		if obj, oerr := h.fs.Object(ctx, path); oerr == nil && obj.Size != nil {
			c.Header("Content-Range", "bytes */"+strconv.FormatInt(*obj.Size, 10))
		}
		h.fail(c, err)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	defer rr.Close()

	contentType, err := h.fs.ContentType(ctx, rr.Path)
	if err != nil {
		h.fail(c, err)
		return
	}

	etag := utils.WeakETag(rr.Path, rr.Size, rr.ModTime)
	c.Header("ETag", etag)
	c.Header("Last-Modified", rr.ModTime.UTC().Format(http.TimeFormat))
	c.Header("Accept-Ranges", "bytes")
	c.Header("X-Content-Type-Options", "nosniff")
	if isScriptable(contentType) {
		// Markup opened directly must not run script against the API origin.
		c.Header("Content-Security-Policy", "sandbox")
	}

	if rangeHeader == "" && c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}

	if rangeHeader == "" && h.sanitize != nil && isHTML(contentType) && rr.Size <= maxSanitizedPreview {
		raw, err := io.ReadAll(rr)
		if err != nil {
			h.fail(c, err)
			return
		}
		clean := h.sanitize.SanitizeBytes(raw)
		h.metrics.AddBytes(monitoring.DirectionPreview, int64(len(clean)))
		c.Header("Content-Disposition", "inline")
		c.Data(http.StatusOK, contentType, clean)
		return
	}
	if isHTML(contentType) && h.sanitize != nil {
		// Too large to sanitize: never let the browser render it.
		contentType = "text/plain; charset=utf-8"
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Length", strconv.FormatInt(rr.Length(), 10))

	status := http.StatusOK
	if rangeHeader != "" {
		status = http.StatusPartialContent
		c.Header("Content-Range", rr.ContentRange(rr.Size))
	} else {
		c.Header("Content-Disposition", "inline")
	}
	h.stream(c, status, readerChunks(rr, h.fs.ChunkSize()), monitoring.DirectionPreview)
}

func isHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && (mt == "text/html" || mt == "application/xhtml+xml")
}

// isScriptable reports whether a browser may execute script embedded in
// content of this type.
func isScriptable(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mt {
	case "text/html", "application/xhtml+xml", "image/svg+xml", "text/xml", "application/xml":
		return true
	}
	return false
}

package http

import (
	"context"
	"errors"
	"io"
	"iter"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/filedeck/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/filedeck/internal/providers/filesystem"
	"github.com/GriffinCanCode/filedeck/internal/shared/id"
)

// statusFor maps the file system error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, filesystem.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, filesystem.ErrRangeNotSatisfiable):
		return http.StatusRequestedRangeNotSatisfiable
	case errors.Is(err, filesystem.ErrToolUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, filesystem.ErrForbidden),
		errors.Is(err, filesystem.ErrNotFound),
		errors.Is(err, filesystem.ErrWrongKind),
		errors.Is(err, filesystem.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the JSON error response for err and attaches err to the
// context for ErrorLogger. Server-side failures get a generic message.
func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	switch {
	case status == http.StatusServiceUnavailable:
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": filesystem.ErrToolUnavailable.Error()})
	case status >= http.StatusInternalServerError:
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
	default:
		_ = c.Error(err).SetType(gin.ErrorTypePublic)
		c.JSON(status, gin.H{"error": err.Error()})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// streamHeaders are dropped when a stream fails before its first byte.
var streamHeaders = []string{
	"Content-Length",
	"Content-Disposition",
	"Content-Range",
	"Accept-Ranges",
	"ETag",
	"Last-Modified",
}

// readerChunks adapts r to a chunk sequence using one reusable buffer.
func readerChunks(r io.Reader, size int) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		buf := make([]byte, size)
		for {
			n, err := r.Read(buf)
			if n > 0 && !yield(buf[:n], nil) {
				return
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

// stream writes chunks to the client after the headers set so far. It stops
// when the client goes away, which is logged at info level and never
// reported as an error. Read failures before the first byte still produce a
// JSON error response.
func (h *Handlers) stream(c *gin.Context, status int, chunks iter.Seq2[[]byte, error], direction string) {
	ctx := c.Request.Context()
	xfer := id.NewTransferID()
	var sent int64
	defer func() { h.metrics.AddBytes(direction, sent) }()

	started := false
	for chunk, err := range chunks {
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				h.disconnected(c, xfer, sent)
				return
			}
			if !started {
				for _, k := range streamHeaders {
					c.Writer.Header().Del(k)
				}
				h.fail(c, err)
				return
			}
			_ = c.Error(err)
			c.Abort()
			return
		}
		if !started {
			c.Status(status)
			started = true
		}
		if ctx.Err() != nil {
			h.disconnected(c, xfer, sent)
			return
		}
		n, werr := c.Writer.Write(chunk)
		sent += int64(n)
		if werr != nil {
			h.disconnected(c, xfer, sent)
			return
		}
	}
	if !started {
		c.Status(status)
		c.Writer.WriteHeaderNow()
	}
	tracing.Logger(ctx, h.logger).Debug("transfer finished",
		zap.String("transfer_id", xfer.String()),
		zap.String("direction", direction),
		zap.Int64("bytes", sent),
	)
}

func (h *Handlers) disconnected(c *gin.Context, xfer id.TransferID, sent int64) {
	h.metrics.IncStreamDisconnects()
	tracing.Logger(c.Request.Context(), h.logger).Info("client disconnected during file streaming",
		zap.String("transfer_id", xfer.String()),
		zap.String("route", c.FullPath()),
		zap.Int64("bytes_sent", sent),
	)
	c.Abort()
}

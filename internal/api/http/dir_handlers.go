package http

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/filedeck/internal/providers/filesystem"
	"github.com/GriffinCanCode/filedeck/internal/shared/utils"
)

type pathRequest struct {
	Path string `json:"path"`
}

type pathsRequest struct {
	Paths []string `json:"paths"`
}

type renameRequest struct {
	Path    string `json:"path"`
	NewName string `json:"newName"`
}

type pasteRequest struct {
	Mode      string   `json:"mode"`
	TargetDir string   `json:"targetDir"`
	Paths     []string `json:"paths"`
	Overwrite bool     `json:"overwrite"`
}

// ListDir returns the selected directory and its entries. A missing body or
// blank path lists the root.
func (h *Handlers) ListDir(c *gin.Context) {
	var req pathRequest
	_ = c.ShouldBindJSON(&req)

	path := req.Path
	if path == "" {
		path = h.fs.Root()
	}

	selected, entries, err := h.fs.List(c.Request.Context(), path)
	if err != nil {
		h.fail(c, err)
		return
	}
	if entries == nil {
		entries = []filesystem.Object{}
	}

	c.JSON(http.StatusOK, gin.H{
		"selectedDir": selected,
		"dirContent":  entries,
	})
}

// CreateDir creates a directory and its parents.
func (h *Handlers) CreateDir(c *gin.Context) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Path == "" {
		badRequest(c, "Missing path")
		return
	}

	done := h.track("create_dir")
	err := h.fs.CreateDir(c.Request.Context(), req.Path)
	done(err)
	if errors.Is(err, filesystem.ErrAlreadyExists) {
		_ = c.Error(err).SetType(gin.ErrorTypePublic)
		c.JSON(http.StatusConflict, gin.H{"error": "Folder already exists"})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c)
}

// Delete removes every listed path, stopping at the first failure.
func (h *Handlers) Delete(c *gin.Context) {
	var req pathsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Paths) == 0 {
		badRequest(c, "No paths provided")
		return
	}
	if err := utils.ValidatePaths(req.Paths, "paths"); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	for _, p := range req.Paths {
		done := h.track("delete")
		err := h.fs.Delete(ctx, p)
		done(err)
		if err != nil {
			h.fail(c, err)
			return
		}
	}
	ok(c)
}

// Rename gives a file or directory a new name in the same parent.
func (h *Handlers) Rename(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Path == "" || req.NewName == "" {
		badRequest(c, "Missing rename data")
		return
	}

	done := h.track("rename")
	err := h.fs.Rename(c.Request.Context(), req.Path, req.NewName)
	done(err)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c)
}

// Paste copies or moves paths into targetDir. Name collisions are collected
// and reported together with 409 unless overwrite is set.
func (h *Handlers) Paste(c *gin.Context) {
	var req pasteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid or missing JSON body")
		return
	}
	if req.Mode != "copy" && req.Mode != "move" {
		badRequest(c, "Invalid mode")
		return
	}
	if err := utils.ValidatePath(req.TargetDir, "targetDir", true); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := utils.ValidatePaths(req.Paths, "paths"); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	conflicts := []string{}
	for _, src := range req.Paths {
		name := filepath.Base(src)
		dst := filepath.Join(req.TargetDir, name)

		done := h.track(req.Mode)
		var err error
		if req.Mode == "copy" {
			err = h.fs.Copy(ctx, src, dst, req.Overwrite)
		} else {
			err = h.fs.Move(ctx, src, dst, req.Overwrite)
		}
		done(err)

		if errors.Is(err, filesystem.ErrAlreadyExists) {
			conflicts = append(conflicts, name)
			continue
		}
		if err != nil {
			h.fail(c, err)
			return
		}
	}

	if len(conflicts) > 0 && !req.Overwrite {
		c.JSON(http.StatusConflict, gin.H{
			"error": "conflict",
			"files": conflicts,
		})
		return
	}
	ok(c)
}

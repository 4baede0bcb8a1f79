package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"task-manager/internal/service"
)

type taskCreateRequest struct {
	Title     string     `json:"title"`
	Notes     string     `json:"notes"`
	StartDate *time.Time `json:"startDate"`
	DueDate   *time.Time `json:"dueDate"`
	Completed bool       `json:"completed"`
	Starred   bool       `json:"starred"`
	Important bool       `json:"important"`
	Tags      []string   `json:"tags"`
	Users     []uint     `json:"users"`
}

type taskPatchRequest struct {
	Title     *string    `json:"title"`
	Notes     *string    `json:"notes"`
	StartDate *time.Time `json:"startDate"`
	DueDate   *time.Time `json:"dueDate"`
	Completed *bool      `json:"completed"`
	Starred   *bool      `json:"starred"`
	Important *bool      `json:"important"`
	IsDeleted *bool      `json:"isDeleted"`
	Tags      *[]string  `json:"tags"`
	Users     *[]uint    `json:"users"`
}

type fileDeleteRequest struct {
	Path string `json:"path"`
}

func (r taskPatchRequest) patch() service.TaskPatch {
	return service.TaskPatch{
		Title:     r.Title,
		Notes:     r.Notes,
		StartDate: r.StartDate,
		DueDate:   r.DueDate,
		Completed: r.Completed,
		Starred:   r.Starred,
		Important: r.Important,
		IsDeleted: r.IsDeleted,
		Tags:      r.Tags,
		UserIDs:   r.Users,
	}
}

// parseID reads a numeric path parameter.
func parseID(c *gin.Context, param string) (uint, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		badRequest(c, fmt.Sprintf("invalid %s %q", param, raw))
		return 0, false
	}
	return uint(id), true
}

// storeUploads saves the request's multipart files (field "file", at most
// MaxUploadFiles) and returns the stored paths.
func (s *Server) storeUploads(c *gin.Context) ([]string, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "invalid multipart form")
		return nil, false
	}

	headers := form.File["file"]
	if len(headers) == 0 {
		badRequest(c, "no files in field \"file\"")
		return nil, false
	}
	if len(headers) > service.MaxUploadFiles {
		badRequest(c, fmt.Sprintf("at most %d files per upload", service.MaxUploadFiles))
		return nil, false
	}

	paths := make([]string, 0, len(headers))
	for _, header := range headers {
		src, err := header.Open()
		if err != nil {
			respondError(c, err)
			return nil, false
		}
		path, err := s.files.Store(src, header.Filename)
		src.Close()
		if err != nil {
			respondError(c, err)
			return nil, false
		}
		paths = append(paths, path)
	}
	return paths, true
}

func (s *Server) createTask(c *gin.Context) {
	var req taskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	task, err := s.tasks.Create(c.Request.Context(), actorFrom(c).ID, service.TaskInput{
		Title:     req.Title,
		Notes:     req.Notes,
		StartDate: req.StartDate,
		DueDate:   req.DueDate,
		Completed: req.Completed,
		Starred:   req.Starred,
		Important: req.Important,
		Tags:      req.Tags,
		UserIDs:   req.Users,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) listTasks(c *gin.Context) {
	tasks, err := s.tasks.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) listTasksForUser(c *gin.Context) {
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	tasks, err := s.tasks.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) getTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, err := s.tasks.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) updateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req taskPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	task, err := s.tasks.Update(c.Request.Context(), id, req.patch())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) deleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := s.tasks.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task and its subtasks deleted successfully"})
}

func (s *Server) uploadTaskFiles(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	paths, ok := s.storeUploads(c)
	if !ok {
		return
	}

	if _, err := s.tasks.AttachFiles(c.Request.Context(), id, paths); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Files uploaded successfully", "files": paths})
}

func (s *Server) deleteTaskFile(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req fileDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	if err := s.tasks.DetachFile(c.Request.Context(), id, req.Path); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}

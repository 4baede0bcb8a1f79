package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-manager/internal/service"
)

type subtaskCreateRequest struct {
	TaskID uint `json:"taskId"`
	taskCreateRequest
}

func (s *Server) createSubtask(c *gin.Context) {
	var req subtaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	subtask, err := s.subtasks.Create(c.Request.Context(), actorFrom(c).ID, req.TaskID, service.TaskInput{
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
	c.JSON(http.StatusCreated, subtask)
}

func (s *Server) getSubtask(c *gin.Context) {
	id, ok := parseID(c, "subtaskId")
	if !ok {
		return
	}

	subtask, err := s.subtasks.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subtask)
}

func (s *Server) updateSubtask(c *gin.Context) {
	id, ok := parseID(c, "subtaskId")
	if !ok {
		return
	}

	var req taskPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	subtask, err := s.subtasks.Update(c.Request.Context(), id, req.patch())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subtask)
}

func (s *Server) deleteSubtask(c *gin.Context) {
	id, ok := parseID(c, "subtaskId")
	if !ok {
		return
	}

	if err := s.subtasks.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subtask deleted successfully"})
}

func (s *Server) uploadSubtaskFiles(c *gin.Context) {
	id, ok := parseID(c, "subtaskId")
	if !ok {
		return
	}

	paths, ok := s.storeUploads(c)
	if !ok {
		return
	}

	if _, err := s.subtasks.AttachFiles(c.Request.Context(), id, paths); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Files uploaded successfully", "files": paths})
}

func (s *Server) deleteSubtaskFile(c *gin.Context) {
	id, ok := parseID(c, "subtaskId")
	if !ok {
		return
	}

	var req fileDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	if err := s.subtasks.DetachFile(c.Request.Context(), id, req.Path); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}

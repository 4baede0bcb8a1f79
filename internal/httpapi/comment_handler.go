package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-manager/internal/service"
)

type commentRequest struct {
	Message string `json:"message"`
}

type commentPatchRequest struct {
	Message   *string `json:"message"`
	IsDeleted *bool   `json:"isDeleted"`
}

func (s *Server) createTaskComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	comment, err := s.comments.CreateForTask(c.Request.Context(), id, actorFrom(c).ID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (s *Server) createSubtaskComment(c *gin.Context) {
	id, ok := parseID(c, "subtaskId")
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	comment, err := s.comments.CreateForSubtask(c.Request.Context(), id, actorFrom(c).ID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (s *Server) listTaskComments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	comments, err := s.comments.ListForTask(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (s *Server) listSubtaskComments(c *gin.Context) {
	id, ok := parseID(c, "subtaskId")
	if !ok {
		return
	}

	comments, err := s.comments.ListForSubtask(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (s *Server) updateComment(c *gin.Context) {
	id, ok := parseID(c, "commentId")
	if !ok {
		return
	}

	var req commentPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	comment, err := s.comments.Update(c.Request.Context(), id, service.CommentPatch{
		Message:   req.Message,
		IsDeleted: req.IsDeleted,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (s *Server) deleteComment(c *gin.Context) {
	id, ok := parseID(c, "commentId")
	if !ok {
		return
	}

	if err := s.comments.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

func (s *Server) replyToComment(c *gin.Context) {
	id, ok := parseID(c, "commentId")
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	reply, err := s.comments.Reply(c.Request.Context(), id, actorFrom(c).ID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reply)
}

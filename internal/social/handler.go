package social

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.POST("/posts/:id/like", h.toggleLike)
		api.POST("/posts/:id/comments", h.addComment)
		api.DELETE("/comments/:commentId", h.deleteComment)
		api.POST("/posts/:id/share", h.share)
	}
}

func postID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid post id"})
		return 0, false
	}
	return id, true
}

type actorRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Username string `json:"username" binding:"required"`
}

func (h *Handler) toggleLike(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}

	var req actorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	liked, err := h.svc.ToggleLike(c.Request.Context(), id, req.UserID, req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to like post"})
		return
	}
	if liked {
		c.JSON(http.StatusCreated, gin.H{"message": "post liked successfully", "liked": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post unliked successfully", "liked": false})
}

type commentRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Username string `json:"username" binding:"required"`
	Text     string `json:"text" binding:"required"`
}

func (h *Handler) addComment(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	comment, err := h.svc.AddComment(c.Request.Context(), id, req.UserID, req.Username, req.Text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to add comment"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "comment added successfully", "comment": comment})
}

type deleteCommentRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h *Handler) deleteComment(c *gin.Context) {
	var req deleteCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	err := h.svc.DeleteComment(c.Request.Context(), c.Param("commentId"), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, ErrCommentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "comment not found"})
		case errors.Is(err, ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"message": "unauthorized"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to delete comment"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment deleted successfully"})
}

type shareRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Username string `json:"username" binding:"required"`
	Platform string `json:"platform" binding:"required"`
}

func (h *Handler) share(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}

	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := h.svc.Share(c.Request.Context(), id, req.UserID, req.Username, req.Platform); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to share post"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "post shared successfully"})
}

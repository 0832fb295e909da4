package practice

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type postCreateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type postUpdateRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (s *Server) handleListPosts(c *gin.Context) {
	// Posts are a shared board: every signed-in user sees all of them.
	var posts []Post
	if err := s.db.Order("created_at desc").Find(&posts).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "database error")
		return
	}
	out := make([]postJSON, len(posts))
	for i, p := range posts {
		out[i] = p.api()
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreatePost(c *gin.Context) {
	var req postCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var errs []fieldErr
	if req.Title == "" {
		errs = append(errs, fieldErr{Loc: []string{"body", "title"}, Msg: "title is required"})
	}
	if req.Content == "" {
		errs = append(errs, fieldErr{Loc: []string{"body", "content"}, Msg: "content is required"})
	}
	if errs != nil {
		abortFieldErrors(c, errs)
		return
	}

	var author User
	if err := s.db.First(&author, "id = ?", currentUserID(c)).Error; err != nil {
		abortDetail(c, http.StatusUnauthorized, "account no longer exists")
		return
	}

	now := time.Now().UTC()
	post := Post{
		ID:         uuid.NewString(),
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Title:      req.Title,
		Content:    req.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.Create(&post).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "failed to create post")
		return
	}
	c.JSON(http.StatusCreated, post.api())
}

// findOwnPost loads a post only when the requester is its author.
func (s *Server) findOwnPost(c *gin.Context) (Post, bool) {
	var post Post
	if err := s.db.First(&post, "id = ?", c.Param("id")).Error; err != nil {
		abortDetail(c, http.StatusNotFound, "post not found")
		return Post{}, false
	}
	if post.AuthorID != currentUserID(c) {
		abortDetail(c, http.StatusForbidden, "only the author can modify a post")
		return Post{}, false
	}
	return post, true
}

func (s *Server) handleUpdatePost(c *gin.Context) {
	post, ok := s.findOwnPost(c)
	if !ok {
		return
	}

	var req postUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title != nil {
		if *req.Title == "" {
			abortFieldErrors(c, []fieldErr{{Loc: []string{"body", "title"}, Msg: "title is required"}})
			return
		}
		post.Title = *req.Title
	}
	if req.Content != nil {
		if *req.Content == "" {
			abortFieldErrors(c, []fieldErr{{Loc: []string{"body", "content"}, Msg: "content is required"}})
			return
		}
		post.Content = *req.Content
	}
	post.UpdatedAt = time.Now().UTC()

	if err := s.db.Save(&post).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "failed to update post")
		return
	}
	c.JSON(http.StatusOK, post.api())
}

func (s *Server) handleDeletePost(c *gin.Context) {
	post, ok := s.findOwnPost(c)
	if !ok {
		return
	}
	if err := s.db.Delete(&post).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "failed to delete post")
		return
	}
	c.Status(http.StatusNoContent)
}

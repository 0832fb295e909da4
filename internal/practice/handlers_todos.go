package practice

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type todoCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type todoUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Completed   *bool   `json:"completed"`
}

func validPriority(p string) bool {
	return p == "low" || p == "medium" || p == "high"
}

func (s *Server) handleListTodos(c *gin.Context) {
	var todos []Todo
	if err := s.db.Where("user_id = ?", currentUserID(c)).Order("created_at").Find(&todos).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "database error")
		return
	}
	out := make([]todoJSON, len(todos))
	for i, t := range todos {
		out[i] = t.api()
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreateTodo(c *gin.Context) {
	var req todoCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var errs []fieldErr
	if req.Title == "" {
		errs = append(errs, fieldErr{Loc: []string{"body", "title"}, Msg: "title is required"})
	}
	if len(req.Title) > 100 {
		errs = append(errs, fieldErr{Loc: []string{"body", "title"}, Msg: "title must be at most 100 characters"})
	}
	if req.Priority != "" && !validPriority(req.Priority) {
		errs = append(errs, fieldErr{Loc: []string{"body", "priority"}, Msg: "priority must be one of low, medium, high"})
	}
	if errs != nil {
		abortFieldErrors(c, errs)
		return
	}

	if req.Priority == "" {
		req.Priority = "medium"
	}
	now := time.Now().UTC()
	todo := Todo{
		ID:          uuid.NewString(),
		UserID:      currentUserID(c),
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.Create(&todo).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "failed to create todo")
		return
	}
	c.JSON(http.StatusCreated, todo.api())
}

// findTodo loads a todo scoped to the requesting user; a miss responds 404.
func (s *Server) findTodo(c *gin.Context) (Todo, bool) {
	var todo Todo
	err := s.db.Where("id = ? AND user_id = ?", c.Param("id"), currentUserID(c)).First(&todo).Error
	if err != nil {
		abortDetail(c, http.StatusNotFound, "todo not found")
		return Todo{}, false
	}
	return todo, true
}

func (s *Server) handleUpdateTodo(c *gin.Context) {
	todo, ok := s.findTodo(c)
	if !ok {
		return
	}

	var req todoUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title != nil {
		if *req.Title == "" {
			abortFieldErrors(c, []fieldErr{{Loc: []string{"body", "title"}, Msg: "title is required"}})
			return
		}
		todo.Title = *req.Title
	}
	if req.Description != nil {
		todo.Description = *req.Description
	}
	if req.Priority != nil {
		if !validPriority(*req.Priority) {
			abortFieldErrors(c, []fieldErr{{Loc: []string{"body", "priority"}, Msg: "priority must be one of low, medium, high"}})
			return
		}
		todo.Priority = *req.Priority
	}
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}
	todo.UpdatedAt = time.Now().UTC()

	if err := s.db.Save(&todo).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "failed to update todo")
		return
	}
	c.JSON(http.StatusOK, todo.api())
}

func (s *Server) handleDeleteTodo(c *gin.Context) {
	todo, ok := s.findTodo(c)
	if !ok {
		return
	}
	if err := s.db.Delete(&todo).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "failed to delete todo")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleToggleTodo(c *gin.Context) {
	todo, ok := s.findTodo(c)
	if !ok {
		return
	}
	todo.Completed = !todo.Completed
	todo.UpdatedAt = time.Now().UTC()
	if err := s.db.Save(&todo).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "failed to toggle todo")
		return
	}
	c.JSON(http.StatusOK, todo.api())
}

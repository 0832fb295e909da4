package practice

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type eventCreateRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	AllDay      bool      `json:"all_day"`
}

type eventUpdateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Color       *string    `json:"color"`
	StartAt     *time.Time `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
	AllDay      *bool      `json:"all_day"`
}

func (s *Server) handleListEvents(c *gin.Context) {
	var events []Event
	if err := s.db.Where("user_id = ?", currentUserID(c)).Order("start_at").Find(&events).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "database error")
		return
	}
	out := make([]eventJSON, len(events))
	for i, e := range events {
		out[i] = e.api()
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreateEvent(c *gin.Context) {
	var req eventCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var errs []fieldErr
	if req.Title == "" {
		errs = append(errs, fieldErr{Loc: []string{"body", "title"}, Msg: "title is required"})
	}
	if req.StartAt.IsZero() || req.EndAt.IsZero() {
		errs = append(errs, fieldErr{Loc: []string{"body", "start_at"}, Msg: "start_at and end_at are required"})
	} else if !req.EndAt.After(req.StartAt) {
		errs = append(errs, fieldErr{Loc: []string{"body", "end_at"}, Msg: "end_at must be after start_at"})
	}
	if errs != nil {
		abortFieldErrors(c, errs)
		return
	}

	now := time.Now().UTC()
	event := Event{
		ID:          uuid.NewString(),
		UserID:      currentUserID(c),
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		AllDay:      req.AllDay,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.Create(&event).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "failed to create event")
		return
	}
	c.JSON(http.StatusCreated, event.api())
}

func (s *Server) findEvent(c *gin.Context) (Event, bool) {
	var event Event
	err := s.db.Where("id = ? AND user_id = ?", c.Param("id"), currentUserID(c)).First(&event).Error
	if err != nil {
		abortDetail(c, http.StatusNotFound, "event not found")
		return Event{}, false
	}
	return event, true
}

func (s *Server) handleUpdateEvent(c *gin.Context) {
	event, ok := s.findEvent(c)
	if !ok {
		return
	}

	var req eventUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title != nil {
		if *req.Title == "" {
			abortFieldErrors(c, []fieldErr{{Loc: []string{"body", "title"}, Msg: "title is required"}})
			return
		}
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Color != nil {
		event.Color = *req.Color
	}
	if req.StartAt != nil {
		event.StartAt = *req.StartAt
	}
	if req.EndAt != nil {
		event.EndAt = *req.EndAt
	}
	if req.AllDay != nil {
		event.AllDay = *req.AllDay
	}
	if !event.EndAt.After(event.StartAt) {
		abortFieldErrors(c, []fieldErr{{Loc: []string{"body", "end_at"}, Msg: "end_at must be after start_at"}})
		return
	}
	event.UpdatedAt = time.Now().UTC()

	if err := s.db.Save(&event).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "failed to update event")
		return
	}
	c.JSON(http.StatusOK, event.api())
}

func (s *Server) handleDeleteEvent(c *gin.Context) {
	event, ok := s.findEvent(c)
	if !ok {
		return
	}
	if err := s.db.Delete(&event).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "failed to delete event")
		return
	}
	c.Status(http.StatusNoContent)
}

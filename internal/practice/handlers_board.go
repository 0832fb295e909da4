package practice

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type cardCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Column      string `json:"column"`
}

type cardUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type cardMoveRequest struct {
	Column   string `json:"column"`
	Position int    `json:"position"`
}

func validLane(lane string) bool {
	return lane == "todo" || lane == "doing" || lane == "done"
}

func (s *Server) handleListCards(c *gin.Context) {
	cards, err := s.boardFor(currentUserID(c))
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, "database error")
		return
	}
	c.JSON(http.StatusOK, cards)
}

// boardFor returns the whole board in lane-then-position order.
func (s *Server) boardFor(userID string) ([]cardJSON, error) {
	var cards []Card
	if err := s.db.Where("user_id = ?", userID).Order("lane, position").Find(&cards).Error; err != nil {
		return nil, err
	}
	out := make([]cardJSON, len(cards))
	for i, card := range cards {
		out[i] = card.api()
	}
	return out, nil
}

func (s *Server) handleCreateCard(c *gin.Context) {
	var req cardCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var errs []fieldErr
	if req.Title == "" {
		errs = append(errs, fieldErr{Loc: []string{"body", "title"}, Msg: "title is required"})
	}
	if req.Column == "" {
		req.Column = "todo"
	}
	if !validLane(req.Column) {
		errs = append(errs, fieldErr{Loc: []string{"body", "column"}, Msg: "column must be one of todo, doing, done"})
	}
	if errs != nil {
		abortFieldErrors(c, errs)
		return
	}

	// New cards land at the end of the column.
	var count int64
	if err := s.db.Model(&Card{}).Where("user_id = ? AND lane = ?", currentUserID(c), req.Column).Count(&count).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "database error")
		return
	}

	now := time.Now().UTC()
	card := Card{
		ID:          uuid.NewString(),
		UserID:      currentUserID(c),
		Title:       req.Title,
		Description: req.Description,
		Lane:        req.Column,
		Position:    int(count) + 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.Create(&card).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "failed to create card")
		return
	}
	c.JSON(http.StatusCreated, card.api())
}

func (s *Server) findCard(c *gin.Context) (Card, bool) {
	var card Card
	err := s.db.Where("id = ? AND user_id = ?", c.Param("id"), currentUserID(c)).First(&card).Error
	if err != nil {
		abortDetail(c, http.StatusNotFound, "card not found")
		return Card{}, false
	}
	return card, true
}

func (s *Server) handleUpdateCard(c *gin.Context) {
	card, ok := s.findCard(c)
	if !ok {
		return
	}

	var req cardUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title != nil {
		if *req.Title == "" {
			abortFieldErrors(c, []fieldErr{{Loc: []string{"body", "title"}, Msg: "title is required"}})
			return
		}
		card.Title = *req.Title
	}
	if req.Description != nil {
		card.Description = *req.Description
	}
	card.UpdatedAt = time.Now().UTC()

	if err := s.db.Save(&card).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "failed to update card")
		return
	}
	c.JSON(http.StatusOK, card.api())
}

// handleMoveCard reorders the board: the card takes the requested position
// in the target column, later cards shift down, and both affected columns
// are renumbered. The response is the full renumbered board so the client
// can replace its cache in one step.
func (s *Server) handleMoveCard(c *gin.Context) {
	card, ok := s.findCard(c)
	if !ok {
		return
	}

	var req cardMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validLane(req.Column) {
		abortFieldErrors(c, []fieldErr{{Loc: []string{"body", "column"}, Msg: "column must be one of todo, doing, done"}})
		return
	}
	if req.Position < 1 {
		req.Position = 1
	}

	userID := currentUserID(c)
	var siblings []Card
	if err := s.db.Where("user_id = ? AND lane = ? AND id <> ?", userID, req.Column, card.ID).
		Order("position").Find(&siblings).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "database error")
		return
	}
	if req.Position > len(siblings)+1 {
		req.Position = len(siblings) + 1
	}

	oldLane := card.Lane
	card.Lane = req.Column
	card.Position = req.Position
	card.UpdatedAt = time.Now().UTC()

	// Shift the target column's displaced cards down.
	for i := range siblings {
		wantPos := i + 1
		if wantPos >= req.Position {
			wantPos++
		}
		if siblings[i].Position != wantPos {
			siblings[i].Position = wantPos
			if err := s.db.Save(&siblings[i]).Error; err != nil {
				abortDetail(c, http.StatusInternalServerError, "failed to move card")
				return
			}
		}
	}
	if err := s.db.Save(&card).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "failed to move card")
		return
	}

	// Close the gap left in the source column.
	if oldLane != req.Column {
		var remaining []Card
		if err := s.db.Where("user_id = ? AND lane = ?", userID, oldLane).
			Order("position").Find(&remaining).Error; err != nil {
			abortDetail(c, http.StatusInternalServerError, "database error")
			return
		}
		for i := range remaining {
			if remaining[i].Position != i+1 {
				remaining[i].Position = i + 1
				if err := s.db.Save(&remaining[i]).Error; err != nil {
					abortDetail(c, http.StatusInternalServerError, "failed to move card")
					return
				}
			}
		}
	}

	board, err := s.boardFor(userID)
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, "database error")
		return
	}
	c.JSON(http.StatusOK, board)
}

func (s *Server) handleDeleteCard(c *gin.Context) {
	card, ok := s.findCard(c)
	if !ok {
		return
	}
	if err := s.db.Delete(&card).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "failed to delete card")
		return
	}
	c.Status(http.StatusNoContent)
}

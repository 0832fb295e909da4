package practice

import (
	"errors"
	"net/http"
	"net/mail"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// credentials is the login/register response: token pair plus account.
type credentials struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         userJSON `json:"user"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var errs []fieldErr
	if _, err := mail.ParseAddress(req.Email); err != nil {
		errs = append(errs, fieldErr{Loc: []string{"body", "email"}, Msg: "invalid email format"})
	}
	if len(req.Password) < 8 {
		errs = append(errs, fieldErr{Loc: []string{"body", "password"}, Msg: "password must be at least 8 characters"})
	}
	if len(req.Password) > 72 {
		errs = append(errs, fieldErr{Loc: []string{"body", "password"}, Msg: "password must be at most 72 characters"})
	}
	if req.Name == "" {
		errs = append(errs, fieldErr{Loc: []string{"body", "name"}, Msg: "name is required"})
	}
	if errs != nil {
		abortFieldErrors(c, errs)
		return
	}

	var existing User
	err := s.db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		abortDetail(c, http.StatusConflict, "email already registered")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		abortDetail(c, http.StatusInternalServerError, "database error")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.db.Create(&user).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "failed to create user")
		return
	}

	s.respondCredentials(c, http.StatusCreated, user)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var user User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		// Same message for unknown email and wrong password.
		abortDetail(c, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		abortDetail(c, http.StatusUnauthorized, "invalid email or password")
		return
	}

	s.respondCredentials(c, http.StatusOK, user)
}

func (s *Server) handleRefresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		abortDetail(c, http.StatusBadRequest, "refresh_token is required")
		return
	}

	userID, err := s.tokens.verify(req.RefreshToken, "refresh")
	if err != nil {
		abortDetail(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	access, refresh, err := s.tokens.issuePair(userID)
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, "failed to issue tokens")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (s *Server) handleMe(c *gin.Context) {
	var user User
	if err := s.db.First(&user, "id = ?", currentUserID(c)).Error; err != nil {
		abortDetail(c, http.StatusUnauthorized, "account no longer exists")
		return
	}
	c.JSON(http.StatusOK, user.api())
}

func (s *Server) respondCredentials(c *gin.Context, status int, user User) {
	access, refresh, err := s.tokens.issuePair(user.ID)
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, "failed to issue tokens")
		return
	}
	c.JSON(status, credentials{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user.api(),
	})
}

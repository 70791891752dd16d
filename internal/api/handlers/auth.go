package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ctmes/ProfTwo/internal/api/middleware"
	"github.com/ctmes/ProfTwo/internal/events"
	"github.com/ctmes/ProfTwo/internal/library"
	"github.com/ctmes/ProfTwo/internal/models"
)

// AuthHandler handles login, registration, and the session-scoped logout.
type AuthHandler struct {
	db      *gorm.DB
	library *library.Store
	bus     *events.Bus
	secret  []byte
	ttl     time.Duration
}

func NewAuthHandler(db *gorm.DB, lib *library.Store, bus *events.Bus, secret []byte, ttlHours int) *AuthHandler {
	return &AuthHandler{
		db:      db,
		library: lib,
		bus:     bus,
		secret:  secret,
		ttl:     time.Duration(ttlHours) * time.Hour,
	}
}

// Login verifies credentials and issues a signed JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	var user models.User
	if err := h.db.First(&user, "email = ?", req.Email).Error; err != nil {
		// Same response as a wrong password: never reveal which one failed.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(h.ttl).Unix(),
	})
	signed, err := token.SignedString(h.secret)
	if err != nil {
		slog.Error("Failed to sign token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": signed,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

// Signup self-registers a student account and issues a token right away,
// so the first upload can follow without a second round trip.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signup payload"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not hash password"})
		return
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         "student",
	}
	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(h.ttl).Unix(),
	})
	signed, err := token.SignedString(h.secret)
	if err != nil {
		slog.Error("Failed to sign token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create session"})
		return
	}

	h.bus.Publish(events.Event{Type: events.TypeUserChanged, Payload: gin.H{"user_id": user.ID}})
	c.JSON(http.StatusCreated, gin.H{
		"token": signed,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
	})
}

// Register creates an account with an explicit role. Admin-only.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name"`
		Password string `json:"password" binding:"required,min=8"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration payload"})
		return
	}

	role := req.Role
	switch role {
	case "", "student":
		role = "student"
	case "lecturer", "admin":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not hash password"})
		return
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	h.bus.Publish(events.Event{Type: events.TypeUserChanged, Payload: gin.H{"user_id": user.ID}})
	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "email": user.Email, "role": user.Role})
}

// Logout ends the session and purges the caller's lecture library. The
// product ties library lifetime to the session: logging out starts fresh.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := middleware.UserID(c)

	if err := h.library.PurgeOwner(userID); err != nil {
		slog.Error("Failed to purge library on logout", "user", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not clear library"})
		return
	}

	h.bus.Publish(events.Event{Type: events.TypeUserChanged, Payload: gin.H{"user_id": userID}})
	c.JSON(http.StatusOK, gin.H{"message": "Logged out, library cleared"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	var user models.User
	if err := h.db.First(&user, "id = ?", middleware.UserID(c)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"taskloop/api/models"
	"taskloop/api/store"
	"taskloop/api/utils"
)

type AuthHandlers struct {
	UserStore *store.UserStore
	Tokens    *utils.TokenManager
	Activity  *store.ActivityStore
}

func NewAuthHandlers(userStore *store.UserStore, tokens *utils.TokenManager, activity *store.ActivityStore) *AuthHandlers {
	return &AuthHandlers{UserStore: userStore, Tokens: tokens, Activity: activity}
}

func (h *AuthHandlers) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: Failed to hash password for %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	// The users table enforces email uniqueness; the store maps the
	// constraint violation to ErrEmailTaken.
	user, err := h.UserStore.CreateUser(c.Request.Context(), req.Email, hashedPassword)
	if err != nil {
		if errors.Is(err, models.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
			return
		}
		log.Printf("ERROR: Failed to create user in DB for email %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	recordActivity(c, h.Activity, models.ActionSignup, user.ID, 0)

	log.Printf("User registered: ID=%d, Email=%s", user.ID, user.Email)
	c.JSON(http.StatusOK, user)
}

// Login verifies credentials and issues a signed bearer token. Unknown email
// and wrong password produce the exact same response so callers cannot probe
// which emails are registered.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return
	}

	user, err := h.UserStore.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, models.ErrUserNotFound) {
			log.Printf("ERROR: Database error during login for %s: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := h.Tokens.Generate(user.ID)
	if err != nil {
		log.Printf("ERROR: Failed to generate JWT for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	recordActivity(c, h.Activity, models.ActionLogin, user.ID, 0)

	log.Printf("User logged in: ID=%d, Email=%s. JWT issued.", user.ID, user.Email)
	c.JSON(http.StatusOK, gin.H{"token": tokenString})
}

// Profile lets the client probe token validity and show who is signed in.
func Profile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":    userID,
		"ip_address": c.ClientIP(),
	})
}

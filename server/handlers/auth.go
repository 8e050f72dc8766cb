package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/plaza-social/plaza/model"
	"github.com/plaza-social/plaza/server/middlewares"
	"github.com/plaza-social/plaza/utils"
)

type SignupInput struct {
	Username    string `json:"username" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SessionOutput struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Signup creates a new account. The username is the login handle and
// must be unique.
func (h *Handler) Signup(c *gin.Context) {
	var input SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, err.Error())
		return
	}

	var existing model.User
	res := h.DB.Where("username = ?", input.Username).First(&existing)
	if res.RowsAffected > 0 {
		abortWithError(c, http.StatusConflict, utils.ErrorConflict, "username already taken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		abortInternal(c, err)
		return
	}

	user := model.User{
		Id:           uuid.New().String(),
		CreatedAt:    time.Now(),
		Username:     input.Username,
		DisplayName:  input.DisplayName,
		PasswordHash: string(hash),
		AvatarUrl:    "https://robohash.org/" + input.Username + "?set=set4&bgset=&size=400x400",
	}
	if err := h.DB.Create(&user).Error; err != nil {
		abortInternal(c, err)
		return
	}

	c.JSON(http.StatusCreated, &user)
}

// Login verifies credentials and issues an opaque session token backed
// by redis.
func (h *Handler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, utils.ErrorInvalidArgument, err.Error())
		return
	}

	var user model.User
	res := h.DB.Where("username = ?", input.Username).First(&user)
	if res.Error == gorm.ErrRecordNotFound || res.RowsAffected == 0 {
		abortWithError(c, http.StatusUnauthorized, utils.ErrorTokenAuthFail, "invalid credentials")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		abortWithError(c, http.StatusUnauthorized, utils.ErrorTokenAuthFail, "invalid credentials")
		return
	}

	token := strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")
	if err := h.Redis.CreateSession(token, user.Id, middlewares.SessionTTL); err != nil {
		abortInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, &SessionOutput{Token: token, User: &user})
}

// Logout revokes the current session token.
func (h *Handler) Logout(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		authorization := c.GetHeader("Authorization")
		token = strings.TrimPrefix(authorization, "Bearer ")
	}
	if err := h.Redis.RevokeSession(token); err != nil {
		abortInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "logged out"})
}

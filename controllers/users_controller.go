package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nivelle/aromabackend/database"
	"github.com/nivelle/aromabackend/dto"
	"github.com/nivelle/aromabackend/models"
	"github.com/nivelle/aromabackend/utils"
)

// CreateUser opens a new admin account. Only reachable behind the admin
// group middleware.
func CreateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RegisterUserDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, "invalid user payload", err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(body.Email))
		usersCol := database.OpenCollection("users")

		hash, err := utils.HashPassword(body.Password)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to hash password", err)
			return
		}

		now := time.Now().UTC()
		user := models.User{
			ID:           bson.NewObjectID(),
			Email:        email,
			PasswordHash: hash,
			Role:         models.RoleAdmin,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if _, err := usersCol.InsertOne(c.Request.Context(), user); err != nil {
			if utils.IsDuplicateKey(err) {
				respondError(c, http.StatusConflict, "email already registered", nil)
				return
			}
			respondError(c, http.StatusInternalServerError, "failed to create user", err)
			return
		}

		respondOK(c, http.StatusCreated, "user created", user)
	}
}

// ChangeMyPassword verifies the current password, stores the new hash and
// revokes every outstanding refresh token for the caller.
func ChangeMyPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ChangeMyPasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, "invalid payload", err)
			return
		}

		userIDStr, ok := c.Get("userID")
		if !ok {
			respondError(c, http.StatusUnauthorized, "missing auth context", nil)
			return
		}
		userID, err := bson.ObjectIDFromHex(userIDStr.(string))
		if err != nil {
			respondError(c, http.StatusUnauthorized, "invalid auth context", nil)
			return
		}

		usersCol := database.OpenCollection("users")

		var user models.User
		if err := usersCol.FindOne(c.Request.Context(), bson.M{"_id": userID}).Decode(&user); err != nil {
			respondError(c, http.StatusUnauthorized, "invalid user", nil)
			return
		}
		if err := utils.CheckPassword(user.PasswordHash, body.CurrentPassword); err != nil {
			respondError(c, http.StatusUnauthorized, "current password is incorrect", nil)
			return
		}

		newHash, err := utils.HashPassword(body.NewPassword)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to hash password", err)
			return
		}

		now := time.Now().UTC()
		_, err = usersCol.UpdateByID(c.Request.Context(), userID, bson.M{
			"$set": bson.M{
				"passwordHash": newHash,
				"updatedAt":    now,
			},
		})
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to update password", err)
			return
		}

		_ = revokeAllRefreshTokens(c, userID)
		utils.ClearRefreshCookie(c)

		respondOK(c, http.StatusOK, "password changed", nil)
	}
}

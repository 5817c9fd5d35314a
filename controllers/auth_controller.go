package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nivelle/aromabackend/database"
	"github.com/nivelle/aromabackend/dto"
	"github.com/nivelle/aromabackend/models"
	"github.com/nivelle/aromabackend/utils"
)

// Auth handlers talk to their collections directly; they sit outside the
// store-backed catalog core.

func Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, http.StatusBadRequest, "invalid login payload", err)
			return
		}

		var user models.User
		usersCol := database.OpenCollection("users")
		if err := usersCol.FindOne(c.Request.Context(), bson.M{"email": body.Email}).Decode(&user); err != nil {
			respondError(c, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		if err := utils.CheckPassword(user.PasswordHash, body.Password); err != nil {
			respondError(c, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		if !user.IsActive {
			respondError(c, http.StatusForbidden, "account disabled", nil)
			return
		}

		accessToken, err := utils.GenerateAccessToken(user.ID.Hex(), user.Email, string(user.Role), utils.AccessTTL())
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to generate access token", err)
			return
		}
		refreshToken, err := utils.GenerateRefreshToken(user.ID.Hex())
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to generate refresh token", err)
			return
		}

		now := time.Now().UTC()
		refreshTokensCol := database.OpenCollection("refresh_tokens")
		if _, err := refreshTokensCol.InsertOne(c.Request.Context(), models.RefreshToken{
			UserID:    user.ID,
			TokenHash: refreshToken,
			ExpiresAt: now.Add(utils.RefreshTTL()),
			CreatedAt: now,
		}); err != nil {
			respondError(c, http.StatusInternalServerError, "failed to store refresh token", err)
			return
		}

		http.SetCookie(c.Writer, &http.Cookie{
			Name:     "refreshToken",
			Value:    refreshToken,
			Path:     "/auth",
			MaxAge:   int(utils.RefreshTTL().Seconds()),
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteNoneMode, // cross-site frontend
		})
		respondOK(c, http.StatusOK, "logged in", gin.H{"accessToken": accessToken})
	}
}

func Refresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCol := database.OpenCollection("users")
		refreshCol := database.OpenCollection("refresh_tokens")

		hash, err := c.Cookie("refreshToken")
		if err != nil || hash == "" {
			respondError(c, http.StatusUnauthorized, "missing refresh token", nil)
			return
		}

		var rt models.RefreshToken
		err = refreshCol.FindOne(ctx, bson.M{
			"tokenHash": hash,
			"revokedAt": bson.M{"$exists": false},
			"expiresAt": bson.M{"$gt": time.Now().UTC()},
		}).Decode(&rt)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "invalid refresh token", nil)
			return
		}

		var user models.User
		if err := usersCol.FindOne(ctx, bson.M{"_id": rt.UserID}).Decode(&user); err != nil {
			respondError(c, http.StatusUnauthorized, "invalid user", nil)
			return
		}
		if !user.IsActive {
			respondError(c, http.StatusForbidden, "account disabled", nil)
			return
		}

		// Rotate: revoke the presented token, issue a replacement.
		newHash, err := utils.GenerateRefreshToken(user.ID.Hex())
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to rotate refresh token", err)
			return
		}

		now := time.Now().UTC()
		_, err = refreshCol.UpdateByID(ctx, rt.ID, bson.M{
			"$set": bson.M{"revokedAt": now, "replacedBy": newHash},
		})
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to revoke refresh token", err)
			return
		}
		_, err = refreshCol.InsertOne(ctx, models.RefreshToken{
			UserID:    user.ID,
			TokenHash: newHash,
			ExpiresAt: now.Add(utils.RefreshTTL()),
			CreatedAt: now,
		})
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to store refresh token", err)
			return
		}

		accessToken, err := utils.GenerateAccessToken(user.ID.Hex(), user.Email, string(user.Role), utils.AccessTTL())
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to generate access token", err)
			return
		}

		http.SetCookie(c.Writer, &http.Cookie{
			Name:     "refreshToken",
			Value:    newHash,
			Path:     "/auth",
			MaxAge:   int(utils.RefreshTTL().Seconds()),
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteNoneMode,
		})
		respondOK(c, http.StatusOK, "token refreshed", gin.H{"accessToken": accessToken})
	}
}

func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		refreshCol := database.OpenCollection("refresh_tokens")

		hash, _ := c.Cookie("refreshToken")
		utils.ClearRefreshCookie(c)

		// best effort revoke
		if hash != "" {
			now := time.Now().UTC()
			_, _ = refreshCol.UpdateOne(ctx, bson.M{
				"tokenHash": hash,
				"revokedAt": bson.M{"$exists": false},
			}, bson.M{
				"$set": bson.M{"revokedAt": now},
			})
		}

		respondOK(c, http.StatusOK, "logged out", nil)
	}
}

func revokeAllRefreshTokens(c *gin.Context, userID bson.ObjectID) error {
	refreshCol := database.OpenCollection("refresh_tokens")
	now := time.Now().UTC()
	_, err := refreshCol.UpdateMany(c.Request.Context(), bson.M{
		"userId":    userID,
		"revokedAt": bson.M{"$exists": false},
	}, bson.M{
		"$set": bson.M{"revokedAt": now},
	})
	return err
}

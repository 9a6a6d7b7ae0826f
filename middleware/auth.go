package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"studiopm/config"
	"studiopm/database"
	"studiopm/models"
	"studiopm/policy"
	"studiopm/utils"
)

// Context keys set by AuthMiddleware and read by every handler.
const (
	CtxUserID   = "userID"
	CtxUserName = "userName"
	CtxUserRole = "userRole"
	CtxStudioID = "studioID"
)

func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip authentication for WebSocket upgrade requests; the ws
		// handler validates its own token query parameter.
		if r.Header.Get("Upgrade") == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Missing or invalid Authorization header")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ValidateJWT(tokenString)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Invalid or expired token")
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Invalid token subject")
			return
		}

		var user models.User
		err = database.DB().Collection(config.Collections.Users).
			FindOne(r.Context(), bson.M{"_id": userID}).Decode(&user)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "User not found")
			return
		}

		if user.StudioID.IsZero() {
			utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "User has no studio")
			return
		}

		ctx := context.WithValue(r.Context(), CtxUserID, user.ID.Hex())
		ctx = context.WithValue(ctx, CtxUserName, user.FullName())
		ctx = context.WithValue(ctx, CtxUserRole, user.Role)
		ctx = context.WithValue(ctx, CtxStudioID, user.StudioID.Hex())

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

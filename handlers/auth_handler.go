package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"studiopm/models"
	"studiopm/policy"
	"studiopm/utils"
)

// Register creates a studio and its first user, who becomes the coo.
func Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudioName string `json:"studioName"`
		FirstName  string `json:"firstName"`
		LastName   string `json:"lastName"`
		Email      string `json:"email"`
		Password   string `json:"password"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid payload: "+err.Error())
		return
	}

	var missing []string
	if req.StudioName == "" {
		missing = append(missing, "studioName")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if len(req.Password) < 8 {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation,
			"Missing or invalid fields: "+strings.Join(missing, ", "))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to create account")
		return
	}

	now := time.Now().UTC()
	studio := models.Studio{
		ID:        primitive.NewObjectID(),
		Name:      req.StudioName,
		Email:     req.Email,
		CreatedAt: now,
	}
	if _, err := studioCollection.InsertOne(ctx, studio); err != nil {
		log.Printf("Register - studio insert failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to create studio")
		return
	}

	user := models.User{
		ID:           primitive.NewObjectID(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		Role:         policy.RoleCOO,
		StudioID:     studio.ID,
		CreatedAt:    now,
	}
	if _, err := userCollection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, policy.KindValidation, "Email already registered")
			return
		}
		log.Printf("Register - user insert failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to create user")
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.FullName(), user.Role, studio.ID.Hex())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to issue token")
		return
	}

	utils.RespondWithData(w, http.StatusCreated, map[string]interface{}{
		"token":  token,
		"user":   user,
		"studio": studio,
	})
}

func Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := userCollection.FindOne(ctx, bson.M{"email": strings.ToLower(req.Email)}).Decode(&user)
	if err != nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		// Same response for unknown email and wrong password
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Invalid credentials")
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.FullName(), user.Role, user.StudioID.Hex())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to issue token")
		return
	}

	log.Printf("Login: %s (%s)", user.Email, user.Role)

	utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// ValidateToken answers whether a bearer token is still good.
func ValidateToken(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Missing token")
		return
	}
	claims, err := utils.ValidateJWT(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil || claims == nil {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Invalid or expired token")
		return
	}
	utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"userID":   claims.UserID,
		"name":     claims.Name,
		"role":     claims.Role,
		"studioId": claims.StudioID,
	})
}

// GetCurrentUser returns the authenticated user's record.
func GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := userCollection.FindOne(ctx, bson.M{"_id": actor.UID}).Decode(&user); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "User not found")
		return
	}
	utils.RespondWithData(w, http.StatusOK, user)
}

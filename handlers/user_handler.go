package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"studiopm/models"
	"studiopm/policy"
	"studiopm/utils"
)

var validRoles = []string{
	policy.RoleCOO, policy.RoleDirector, policy.RoleDesignManager,
	policy.RoleDesigner, policy.RoleBDM, policy.RoleClient,
}

func ListUsers(w http.ResponseWriter, r *http.Request) {
	_, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := userCollection.Find(ctx, bson.M{"studioId": studioID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to fetch users")
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to decode users")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	utils.RespondWithData(w, http.StatusOK, users)
}

func GetUser(w http.ResponseWriter, r *http.Request) {
	_, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	id, err := pathID(mux.Vars(r))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid user ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err = userCollection.FindOne(ctx, bson.M{"_id": id, "studioId": studioID}).Decode(&user)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "User not found")
		return
	}
	utils.RespondWithData(w, http.StatusOK, user)
}

// InviteUser creates a user with a generated password. Senior roles only.
func InviteUser(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}
	if actor.Role != policy.RoleCOO && actor.Role != policy.RoleDirector {
		utils.RespondWithError(w, http.StatusForbidden, policy.KindForbidden, "Access denied")
		return
	}

	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Role      string `json:"role"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid payload")
		return
	}
	if req.Email == "" || !roleIsValid(req.Role) {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Missing or invalid fields: email, role")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	password := utils.GenerateRandomPassword(12)
	hash, err := utils.HashPassword(password)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to create user")
		return
	}

	user := models.User{
		ID:           primitive.NewObjectID(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		Role:         req.Role,
		StudioID:     studioID,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := userCollection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, policy.KindValidation, "Email already registered")
			return
		}
		log.Printf("InviteUser - insert failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to create user")
		return
	}

	// The generated password is returned once; the invited user is expected
	// to change it.
	utils.RespondWithData(w, http.StatusCreated, map[string]interface{}{
		"user":     user,
		"password": password,
	})
}

// UpdateUserRole changes a user's role. coo only.
func UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}
	if actor.Role != policy.RoleCOO {
		utils.RespondWithError(w, http.StatusForbidden, policy.KindForbidden, "Access denied")
		return
	}

	id, err := pathID(mux.Vars(r))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid user ID")
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := utils.ParseJSON(r, &req); err != nil || !roleIsValid(req.Role) {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Missing or invalid fields: role")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := userCollection.UpdateOne(ctx,
		bson.M{"_id": id, "studioId": studioID},
		bson.M{"$set": bson.M{"role": req.Role}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to update user")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "User not found")
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]string{"role": req.Role})
}

func DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}
	if actor.Role != policy.RoleCOO {
		utils.RespondWithError(w, http.StatusForbidden, policy.KindForbidden, "Access denied")
		return
	}

	id, err := pathID(mux.Vars(r))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid user ID")
		return
	}
	if id == actor.UID {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Cannot delete yourself")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := userCollection.DeleteOne(ctx, bson.M{"_id": id, "studioId": studioID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to delete user")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "User not found")
		return
	}
	utils.RespondWithData(w, http.StatusOK, map[string]bool{"deleted": true})
}

func roleIsValid(role string) bool {
	for _, r := range validRoles {
		if r == role {
			return true
		}
	}
	return false
}

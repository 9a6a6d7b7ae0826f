package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"studiopm/middleware"
	"studiopm/policy"
	"studiopm/utils"
)

// requestActor pulls the identity the auth middleware stored on the
// context. The second return is the studio id; ok is false when the request
// somehow bypassed the middleware.
func requestActor(r *http.Request) (policy.Actor, primitive.ObjectID, bool) {
	uidStr, _ := r.Context().Value(middleware.CtxUserID).(string)
	name, _ := r.Context().Value(middleware.CtxUserName).(string)
	role, _ := r.Context().Value(middleware.CtxUserRole).(string)
	studioStr, _ := r.Context().Value(middleware.CtxStudioID).(string)

	uid, err := primitive.ObjectIDFromHex(uidStr)
	if err != nil {
		return policy.Actor{}, primitive.NilObjectID, false
	}
	studioID, err := primitive.ObjectIDFromHex(studioStr)
	if err != nil {
		return policy.Actor{}, primitive.NilObjectID, false
	}
	return policy.Actor{UID: uid, Name: name, Role: role}, studioID, true
}

// respondPolicyError maps the policy error taxonomy onto status codes. The
// generic branch deliberately hides detail.
func respondPolicyError(w http.ResponseWriter, err error) {
	var ve *policy.ValidationError
	var fe *policy.ForbiddenError
	var ite *policy.InvalidTransitionError
	var de *policy.DependencyError

	switch {
	case errors.As(err, &ve):
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, ve.Error())
	case errors.As(err, &fe):
		utils.RespondWithError(w, http.StatusForbidden, policy.KindForbidden, "Access denied")
	case errors.As(err, &ite):
		utils.RespondWithError(w, http.StatusConflict, policy.KindInvalidTransition, ite.Error())
	case errors.As(err, &de):
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Operation failed")
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Operation failed")
	}
}

func pathID(vars map[string]string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(vars["id"])
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

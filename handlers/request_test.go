package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"studiopm/middleware"
	"studiopm/policy"
)

func seededRequest(uid, studio primitive.ObjectID, name, role string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	ctx := context.WithValue(r.Context(), middleware.CtxUserID, uid.Hex())
	ctx = context.WithValue(ctx, middleware.CtxUserName, name)
	ctx = context.WithValue(ctx, middleware.CtxUserRole, role)
	ctx = context.WithValue(ctx, middleware.CtxStudioID, studio.Hex())
	return r.WithContext(ctx)
}

func TestRequestActor(t *testing.T) {
	uid := primitive.NewObjectID()
	studio := primitive.NewObjectID()

	actor, studioID, ok := requestActor(seededRequest(uid, studio, "Ana Costa", "designer"))
	require.True(t, ok)
	assert.Equal(t, uid, actor.UID)
	assert.Equal(t, "Ana Costa", actor.Name)
	assert.Equal(t, "designer", actor.Role)
	assert.Equal(t, studio, studioID)
}

func TestRequestActorMissingContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	_, _, ok := requestActor(r)
	assert.False(t, ok)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRespondPolicyErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
		kind string
	}{
		{&policy.ValidationError{Fields: []string{"reason"}}, http.StatusBadRequest, policy.KindValidation},
		{&policy.ForbiddenError{}, http.StatusForbidden, policy.KindForbidden},
		{&policy.InvalidTransitionError{Entity: "proposal", Status: "approved", Action: "approve"}, http.StatusConflict, policy.KindInvalidTransition},
		{&policy.DependencyError{Op: "insert payment", Err: errors.New("socket closed")}, http.StatusInternalServerError, policy.KindDependency},
		{errors.New("anything else"), http.StatusInternalServerError, policy.KindDependency},
	}

	for _, c := range cases {
		rec := httptest.NewRecorder()
		respondPolicyError(rec, c.err)
		assert.Equal(t, c.code, rec.Code)

		body := decodeEnvelope(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, c.kind, body["kind"])
	}
}

func TestForbiddenResponseCarriesNoDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	respondPolicyError(rec, &policy.ForbiddenError{})
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "Access denied", body["error"])
}

func TestDependencyResponseHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	respondPolicyError(rec, &policy.DependencyError{Op: "smtp send", Err: errors.New("dial tcp: refused")})
	body := decodeEnvelope(t, rec)
	assert.NotContains(t, body["error"], "dial tcp")
}

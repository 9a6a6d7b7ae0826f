package handlers

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"studiopm/database"
	"studiopm/policy"
	"studiopm/utils"
)

// HealthCheck reports process liveness plus database reachability.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := database.Client.Ping(ctx, readpref.Primary()); err != nil {
		utils.RespondWithError(w, http.StatusServiceUnavailable, policy.KindDependency, "Database unreachable")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"studiopm/models"
	"studiopm/policy"
	"studiopm/utils"
)

// ListActivities returns the studio's audit trail, newest first.
// Entity/actor filters hit the indexes; the optional date range is filtered
// in memory, which is fine at the volumes a single studio produces.
func ListActivities(w http.ResponseWriter, r *http.Request) {
	_, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 12*time.Second)
	defer cancel()

	filter := bson.M{"studioId": studioID}
	query := r.URL.Query()

	if entityType := query.Get("entityType"); entityType != "" && entityType != "all" {
		filter["entityType"] = entityType
	}
	if eid := query.Get("entityId"); eid != "" {
		entityID, err := primitive.ObjectIDFromHex(eid)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, missingFields("entityId"))
			return
		}
		filter["entityId"] = entityID
	}
	if uid := query.Get("actorUid"); uid != "" {
		actorUID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, missingFields("actorUid"))
			return
		}
		filter["actorUid"] = actorUID
	}

	limit := 100
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 500 {
			limit = l
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := activityCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to fetch activities")
		return
	}
	defer cursor.Close(ctx)

	var activities []models.Activity
	if err := cursor.All(ctx, &activities); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to decode activities")
		return
	}
	if activities == nil {
		activities = []models.Activity{}
	}

	// Date-range filtering happens here rather than in the query.
	if fromStr, toStr := query.Get("from"), query.Get("to"); fromStr != "" || toStr != "" {
		var from, to time.Time
		var err error
		if fromStr != "" {
			if from, err = time.Parse("2006-01-02", fromStr); err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, missingFields("from"))
				return
			}
		}
		if toStr != "" {
			if to, err = time.Parse("2006-01-02", toStr); err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, missingFields("to"))
				return
			}
			to = to.Add(24 * time.Hour)
		}
		filtered := activities[:0]
		for _, a := range activities {
			if !from.IsZero() && a.CreatedAt.Before(from) {
				continue
			}
			if !to.IsZero() && !a.CreatedAt.Before(to) {
				continue
			}
			filtered = append(filtered, a)
		}
		activities = filtered
	}

	utils.RespondWithData(w, http.StatusOK, activities)
}

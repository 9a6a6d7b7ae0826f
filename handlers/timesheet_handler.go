package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"studiopm/models"
	"studiopm/policy"
	"studiopm/utils"
)

func CreateTimesheet(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}
	if !policy.CanCreate(actor, policy.EntityTimesheet) {
		utils.RespondWithError(w, http.StatusForbidden, policy.KindForbidden, "Access denied")
		return
	}

	var req struct {
		ProjectID string  `json:"projectId"`
		Date      string  `json:"date"` // YYYY-MM-DD
		Hours     float64 `json:"hours"`
		Notes     string  `json:"notes,omitempty"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid payload: "+err.Error())
		return
	}

	var bad []string
	projectID, err := primitive.ObjectIDFromHex(req.ProjectID)
	if err != nil {
		bad = append(bad, "projectId")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		bad = append(bad, "date")
	}
	if req.Hours <= 0 || req.Hours > 24 {
		bad = append(bad, "hours")
	}
	if len(bad) > 0 {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, missingFields(bad...))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	project, err := loadProjectContext(ctx, studioID, projectID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Project not found")
		return
	}
	if project.Status != policy.StatusActive {
		utils.RespondWithError(w, http.StatusConflict, policy.KindInvalidTransition,
			"timesheets can only be logged against active projects")
		return
	}

	now := time.Now().UTC()
	timesheet := models.Timesheet{
		ID:            primitive.NewObjectID(),
		StudioID:      studioID,
		ProjectID:     project.ID,
		CreatedByUID:  actor.UID,
		CreatedByName: actor.Name,
		Date:          date,
		Hours:         req.Hours,
		Notes:         req.Notes,
		Status:        policy.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := timesheetCollection.InsertOne(ctx, timesheet); err != nil {
		log.Printf("CreateTimesheet - insert failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to create timesheet")
		return
	}

	appendActivity(ctx, studioID, actor, policy.AuditAppend{
		Entity:   policy.EntityTimesheet,
		EntityID: timesheet.ID,
		Action:   "create",
		ToStatus: policy.StatusPending,
		Detail:   actor.Name + " logged hours on " + project.Name,
	})

	utils.RespondWithData(w, http.StatusCreated, timesheet)
}

func ListTimesheets(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"studioId": studioID}
	query := r.URL.Query()
	if pid := query.Get("projectId"); pid != "" {
		projectID, err := primitive.ObjectIDFromHex(pid)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, missingFields("projectId"))
			return
		}
		filter["projectId"] = projectID
	}
	if query.Get("mine") == "true" {
		filter["createdByUid"] = actor.UID
	}
	if status := query.Get("status"); status != "" && status != "all" {
		filter["status"] = status
	}

	cursor, err := timesheetCollection.Find(ctx, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to fetch timesheets")
		return
	}
	defer cursor.Close(ctx)

	var timesheets []models.Timesheet
	if err := cursor.All(ctx, &timesheets); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to decode timesheets")
		return
	}
	if timesheets == nil {
		timesheets = []models.Timesheet{}
	}
	utils.RespondWithData(w, http.StatusOK, timesheets)
}

// UpdateTimesheet lets the owner fix hours/notes while still pending.
func UpdateTimesheet(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	id, err := pathID(mux.Vars(r))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid timesheet ID")
		return
	}

	var req struct {
		Hours *float64 `json:"hours,omitempty"`
		Notes *string  `json:"notes,omitempty"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid payload")
		return
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if req.Hours != nil {
		if *req.Hours <= 0 || *req.Hours > 24 {
			utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, missingFields("hours"))
			return
		}
		set["hours"] = *req.Hours
	}
	if req.Notes != nil {
		set["notes"] = *req.Notes
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := timesheetCollection.UpdateOne(ctx,
		bson.M{"_id": id, "studioId": studioID, "createdByUid": actor.UID, "status": policy.StatusPending},
		bson.M{"$set": set})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to update timesheet")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Timesheet not found or not editable")
		return
	}
	utils.RespondWithData(w, http.StatusOK, map[string]bool{"updated": true})
}

// ReviewTimesheet approves or rejects a pending timesheet. Approval adds
// the hours to the project ledger via the dispatcher.
func ReviewTimesheet(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	vars := mux.Vars(r)
	id, err := pathID(vars)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid timesheet ID")
		return
	}
	action := vars["action"] // approve | reject

	var req struct {
		Reason string `json:"reason,omitempty"`
		Notes  string `json:"notes,omitempty"`
	}
	_ = utils.ParseJSON(r, &req)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var timesheet models.Timesheet
	err = timesheetCollection.FindOne(ctx, bson.M{"_id": id, "studioId": studioID}).Decode(&timesheet)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Timesheet not found")
		return
	}

	project, err := loadProjectContext(ctx, studioID, timesheet.ProjectID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Project not found")
		return
	}

	rec := policy.Record{
		Entity:         policy.EntityTimesheet,
		ID:             timesheet.ID,
		StudioID:       studioID,
		Status:         timesheet.Status,
		CreatedByUID:   timesheet.CreatedByUID,
		ProjectID:      project.ID,
		ProjectLeadUID: project.LeadUID,
		Hours:          timesheet.Hours,
	}
	outcome, err := policy.Transition(rec, action, policy.Payload{Reason: req.Reason, Notes: req.Notes}, actor)
	if err != nil {
		respondPolicyError(w, err)
		return
	}

	if err := applyOutcome(ctx, timesheetCollection, rec, outcome, actor, nil); err != nil {
		respondPolicyError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]string{"status": outcome.To})
}

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

// CreateProject opens a project, optionally from an approved proposal whose
// estimated hours seed the allocation.
func CreateProject(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}
	if !policy.CanCreate(actor, policy.EntityProject) {
		utils.RespondWithError(w, http.StatusForbidden, policy.KindForbidden, "Access denied")
		return
	}

	var req struct {
		Name           string  `json:"name"`
		ProposalID     string  `json:"proposalId,omitempty"`
		ClientName     string  `json:"clientName,omitempty"`
		ClientEmail    string  `json:"clientEmail,omitempty"`
		ClientUID      string  `json:"clientUid,omitempty"`
		Description    string  `json:"description,omitempty"`
		LeadUID        string  `json:"leadUid,omitempty"`
		AllocatedHours float64 `json:"allocatedHours,omitempty"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid payload: "+err.Error())
		return
	}
	if req.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Missing or invalid fields: name")
		return
	}
	if req.AllocatedHours < 0 {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Missing or invalid fields: allocatedHours")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	project := models.Project{
		ID:           primitive.NewObjectID(),
		StudioID:     studioID,
		Name:         req.Name,
		ClientName:   req.ClientName,
		ClientEmail:  req.ClientEmail,
		Description:  req.Description,
		Status:       policy.StatusActive,
		CreatedByUID: actor.UID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if req.ProposalID != "" {
		proposalID, err := primitive.ObjectIDFromHex(req.ProposalID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Missing or invalid fields: proposalId")
			return
		}
		var proposal models.Proposal
		err = proposalCollection.FindOne(ctx, bson.M{"_id": proposalID, "studioId": studioID}).Decode(&proposal)
		if err != nil {
			utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Proposal not found")
			return
		}
		if proposal.Status != policy.StatusApproved {
			utils.RespondWithError(w, http.StatusConflict, policy.KindInvalidTransition,
				"proposal must be approved before a project can be opened from it")
			return
		}
		project.ProposalID = &proposal.ID
		if project.ClientName == "" {
			project.ClientName = proposal.ClientName
		}
		if req.AllocatedHours == 0 {
			req.AllocatedHours = proposal.EstimatedHours
		}
	}

	if req.LeadUID != "" {
		leadUID, err := primitive.ObjectIDFromHex(req.LeadUID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Missing or invalid fields: leadUid")
			return
		}
		var lead models.User
		if err := userCollection.FindOne(ctx, bson.M{"_id": leadUID, "studioId": studioID}).Decode(&lead); err != nil {
			utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Lead user not found")
			return
		}
		project.LeadUID = lead.ID
		project.LeadName = lead.FullName()
	}

	if req.ClientUID != "" {
		clientUID, err := primitive.ObjectIDFromHex(req.ClientUID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Missing or invalid fields: clientUid")
			return
		}
		project.ClientUID = &clientUID
	}

	project.AllocatedHours = req.AllocatedHours
	project.RemainingHours = policy.RemainingHours(project.AllocatedHours, 0)
	project.ProgressPercentage = policy.ProgressPercentage(0, project.AllocatedHours)

	if _, err := projectCollection.InsertOne(ctx, project); err != nil {
		log.Printf("CreateProject - insert failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to create project")
		return
	}

	appendActivity(ctx, studioID, actor, policy.AuditAppend{
		Entity:   policy.EntityProject,
		EntityID: project.ID,
		Action:   "create",
		ToStatus: policy.StatusActive,
		Detail:   "project " + project.Name + " opened by " + actor.Name,
	})

	utils.RespondWithData(w, http.StatusCreated, project)
}

func ListProjects(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"studioId": studioID}
	query := r.URL.Query()
	if status := query.Get("status"); status != "" && status != "all" {
		filter["status"] = status
	}
	if query.Get("lead") == "me" {
		filter["leadUid"] = actor.UID
	}

	cursor, err := projectCollection.Find(ctx, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to fetch projects")
		return
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to decode projects")
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	utils.RespondWithData(w, http.StatusOK, projects)
}

func GetProject(w http.ResponseWriter, r *http.Request) {
	_, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	id, err := pathID(mux.Vars(r))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid project ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var project models.Project
	err = projectCollection.FindOne(ctx, bson.M{"_id": id, "studioId": studioID}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Project not found")
		} else {
			utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to fetch project")
		}
		return
	}
	utils.RespondWithData(w, http.StatusOK, project)
}

// TransitionProject handles hold/resume/complete/cancel. The action is the
// last path segment.
func TransitionProject(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	vars := mux.Vars(r)
	id, err := pathID(vars)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid project ID")
		return
	}
	action := vars["action"]

	var req struct {
		Reason string `json:"reason,omitempty"`
	}
	// Body is optional for hold/resume/complete.
	_ = utils.ParseJSON(r, &req)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var project models.Project
	err = projectCollection.FindOne(ctx, bson.M{"_id": id, "studioId": studioID}).Decode(&project)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Project not found")
		return
	}

	rec := policy.Record{
		Entity:         policy.EntityProject,
		ID:             project.ID,
		StudioID:       studioID,
		Status:         project.Status,
		CreatedByUID:   project.CreatedByUID,
		ProjectID:      project.ID,
		ProjectLeadUID: project.LeadUID,
	}
	outcome, err := policy.Transition(rec, action, policy.Payload{Reason: req.Reason}, actor)
	if err != nil {
		respondPolicyError(w, err)
		return
	}

	if err := applyOutcome(ctx, projectCollection, rec, outcome, actor, nil); err != nil {
		respondPolicyError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]string{"status": outcome.To})
}

// loadProjectContext fetches the parent project of a child record and fills
// the fields the policy engine needs (lead for delegated ownership).
func loadProjectContext(ctx context.Context, studioID, projectID primitive.ObjectID) (*models.Project, error) {
	var project models.Project
	err := projectCollection.FindOne(ctx, bson.M{"_id": projectID, "studioId": studioID}).Decode(&project)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func missingFields(fields ...string) string {
	return "Missing or invalid fields: " + strings.Join(fields, ", ")
}

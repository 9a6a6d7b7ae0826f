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

func CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}
	if !policy.CanCreate(actor, policy.EntityTask) {
		utils.RespondWithError(w, http.StatusForbidden, policy.KindForbidden, "Access denied")
		return
	}

	var req struct {
		ProjectID   string `json:"projectId"`
		Title       string `json:"title"`
		Description string `json:"description,omitempty"`
		Priority    string `json:"priority,omitempty"`
		AssigneeUID string `json:"assigneeUid,omitempty"`
		DueDate     string `json:"dueDate,omitempty"` // YYYY-MM-DD
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
	if req.Title == "" {
		bad = append(bad, "title")
	}
	var dueDate *time.Time
	if req.DueDate != "" {
		d, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			bad = append(bad, "dueDate")
		} else {
			dueDate = &d
		}
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

	now := time.Now().UTC()
	task := models.Task{
		ID:           primitive.NewObjectID(),
		StudioID:     studioID,
		ProjectID:    project.ID,
		Title:        req.Title,
		Description:  req.Description,
		Status:       policy.StatusTodo,
		Priority:     req.Priority,
		CreatedByUID: actor.UID,
		DueDate:      dueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if req.AssigneeUID != "" {
		assigneeUID, err := primitive.ObjectIDFromHex(req.AssigneeUID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, missingFields("assigneeUid"))
			return
		}
		var assignee models.User
		if err := userCollection.FindOne(ctx, bson.M{"_id": assigneeUID, "studioId": studioID}).Decode(&assignee); err != nil {
			utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Assignee not found")
			return
		}
		task.AssigneeUID = &assignee.ID
		task.AssigneeName = assignee.FullName()
	}

	if _, err := taskCollection.InsertOne(ctx, task); err != nil {
		log.Printf("CreateTask - insert failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to create task")
		return
	}

	appendActivity(ctx, studioID, actor, policy.AuditAppend{
		Entity:   policy.EntityTask,
		EntityID: task.ID,
		Action:   "create",
		ToStatus: policy.StatusTodo,
		Detail:   "task " + task.Title + " created on " + project.Name,
	})

	utils.RespondWithData(w, http.StatusCreated, task)
}

func ListTasks(w http.ResponseWriter, r *http.Request) {
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
		filter["assigneeUid"] = actor.UID
	}
	if status := query.Get("status"); status != "" && status != "all" {
		filter["status"] = status
	}

	cursor, err := taskCollection.Find(ctx, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to fetch tasks")
		return
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to decode tasks")
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	utils.RespondWithData(w, http.StatusOK, tasks)
}

// TransitionTask moves a task along todo → in_progress → review →
// completed.
func TransitionTask(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	vars := mux.Vars(r)
	id, err := pathID(vars)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid task ID")
		return
	}
	action := vars["action"]

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var task models.Task
	err = taskCollection.FindOne(ctx, bson.M{"_id": id, "studioId": studioID}).Decode(&task)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Task not found")
		return
	}

	project, err := loadProjectContext(ctx, studioID, task.ProjectID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Project not found")
		return
	}

	rec := policy.Record{
		Entity:         policy.EntityTask,
		ID:             task.ID,
		StudioID:       studioID,
		Status:         task.Status,
		CreatedByUID:   task.CreatedByUID,
		ProjectID:      project.ID,
		ProjectLeadUID: project.LeadUID,
	}
	if task.AssigneeUID != nil {
		rec.AssigneeUID = *task.AssigneeUID
	}

	outcome, err := policy.Transition(rec, action, policy.Payload{}, actor)
	if err != nil {
		respondPolicyError(w, err)
		return
	}

	if err := applyOutcome(ctx, taskCollection, rec, outcome, actor, nil); err != nil {
		respondPolicyError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]string{"status": outcome.To})
}

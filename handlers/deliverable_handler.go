package handlers

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"studiopm/models"
	"studiopm/policy"
	"studiopm/storage"
	"studiopm/utils"
)

const maxUploadBytes = 25 << 20 // 25 MB

// CreateDeliverable accepts multipart form data: metadata fields plus an
// optional file stored through the object-store boundary.
func CreateDeliverable(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}
	if !policy.CanCreate(actor, policy.EntityDeliverable) {
		utils.RespondWithError(w, http.StatusForbidden, policy.KindForbidden, "Access denied")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid multipart payload")
		return
	}

	var bad []string
	projectID, err := primitive.ObjectIDFromHex(r.FormValue("projectId"))
	if err != nil {
		bad = append(bad, "projectId")
	}
	title := r.FormValue("title")
	if title == "" {
		bad = append(bad, "title")
	}
	if len(bad) > 0 {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, missingFields(bad...))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	project, err := loadProjectContext(ctx, studioID, projectID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Project not found")
		return
	}

	now := time.Now().UTC()
	deliverable := models.Deliverable{
		ID:            primitive.NewObjectID(),
		StudioID:      studioID,
		ProjectID:     project.ID,
		Title:         title,
		Description:   r.FormValue("description"),
		Status:        policy.StatusPending,
		CreatedByUID:  actor.UID,
		CreatedByName: actor.Name,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if uid := r.FormValue("assigneeUid"); uid != "" {
		assigneeUID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, missingFields("assigneeUid"))
			return
		}
		deliverable.AssigneeUID = &assigneeUID
	}

	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Failed to read upload")
			return
		}
		mimetype := header.Header.Get("Content-Type")
		key, err := objectStore.Upload(data, header.Filename, mimetype, "deliverables/"+project.ID.Hex())
		if err != nil {
			log.Printf("CreateDeliverable - upload failed: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to store file")
			return
		}
		deliverable.FileKey = key
		deliverable.FileName = header.Filename
		deliverable.MimeType = mimetype
	}

	if _, err := deliverableCollection.InsertOne(ctx, deliverable); err != nil {
		log.Printf("CreateDeliverable - insert failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to create deliverable")
		return
	}

	appendActivity(ctx, studioID, actor, policy.AuditAppend{
		Entity:   policy.EntityDeliverable,
		EntityID: deliverable.ID,
		Action:   "create",
		ToStatus: policy.StatusPending,
		Detail:   "deliverable " + title + " added to " + project.Name,
	})

	utils.RespondWithData(w, http.StatusCreated, deliverable)
}

func ListDeliverables(w http.ResponseWriter, r *http.Request) {
	_, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"studioId": studioID}
	if pid := r.URL.Query().Get("projectId"); pid != "" {
		projectID, err := primitive.ObjectIDFromHex(pid)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, missingFields("projectId"))
			return
		}
		filter["projectId"] = projectID
	}

	cursor, err := deliverableCollection.Find(ctx, filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to fetch deliverables")
		return
	}
	defer cursor.Close(ctx)

	var deliverables []models.Deliverable
	if err := cursor.All(ctx, &deliverables); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to decode deliverables")
		return
	}
	if deliverables == nil {
		deliverables = []models.Deliverable{}
	}
	utils.RespondWithData(w, http.StatusOK, deliverables)
}

// TransitionDeliverable handles submit / approve / reject.
func TransitionDeliverable(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	vars := mux.Vars(r)
	id, err := pathID(vars)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid deliverable ID")
		return
	}
	action := vars["action"]

	var req struct {
		Reason string `json:"reason,omitempty"`
		Notes  string `json:"notes,omitempty"`
	}
	_ = utils.ParseJSON(r, &req)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var deliverable models.Deliverable
	err = deliverableCollection.FindOne(ctx, bson.M{"_id": id, "studioId": studioID}).Decode(&deliverable)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Deliverable not found")
		return
	}

	rec := policy.Record{
		Entity:       policy.EntityDeliverable,
		ID:           deliverable.ID,
		StudioID:     studioID,
		Status:       deliverable.Status,
		CreatedByUID: deliverable.CreatedByUID,
		ProjectID:    deliverable.ProjectID,
	}
	if deliverable.AssigneeUID != nil {
		rec.AssigneeUID = *deliverable.AssigneeUID
	}

	outcome, err := policy.Transition(rec, action, policy.Payload{Reason: req.Reason, Notes: req.Notes}, actor)
	if err != nil {
		respondPolicyError(w, err)
		return
	}

	if err := applyOutcome(ctx, deliverableCollection, rec, outcome, actor, nil); err != nil {
		respondPolicyError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]string{"status": outcome.To})
}

// GetDeliverableDownloadURL returns a short-lived signed URL for the
// attached file.
func GetDeliverableDownloadURL(w http.ResponseWriter, r *http.Request) {
	_, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}

	id, err := pathID(mux.Vars(r))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, policy.KindValidation, "Invalid deliverable ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var deliverable models.Deliverable
	err = deliverableCollection.FindOne(ctx, bson.M{"_id": id, "studioId": studioID}).Decode(&deliverable)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Deliverable not found")
		return
	}
	if deliverable.FileKey == "" {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "Deliverable has no file")
		return
	}

	url, err := objectStore.SignedURL(deliverable.FileKey, 600)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, policy.KindDependency, "Failed to sign URL")
		return
	}
	utils.RespondWithData(w, http.StatusOK, map[string]string{"url": url})
}

// ServeFile serves a signed file URL produced by the local object store.
// Signature and expiry are checked; no session is required.
func ServeFile(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	expStr := r.URL.Query().Get("exp")
	sig := r.URL.Query().Get("sig")

	exp, err := parseInt64(expStr)
	if err != nil || !storage.Verify(key, exp, sig) {
		utils.RespondWithError(w, http.StatusForbidden, policy.KindForbidden, "Invalid or expired link")
		return
	}

	f, err := os.Open(objectStore.Path(key))
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, policy.KindNotFound, "File not found")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", "attachment")
	if _, err := io.Copy(w, f); err != nil {
		log.Printf("ServeFile - copy failed: %v", err)
	}
}

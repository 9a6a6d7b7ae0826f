package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"studiopm/policy"
	"studiopm/utils"
)

type StudioOverview struct {
	// KPIs
	ActiveProjects   int64 `json:"activeProjects"`
	OnHoldProjects   int64 `json:"onHoldProjects"`
	OpenTasks        int64 `json:"openTasks"`
	PendingApprovals int64 `json:"pendingApprovals"`
	OverdueInvoices  int64 `json:"overdueInvoices"`

	// Money, in cents
	OutstandingCents int64 `json:"outstandingCents"`
	ReceivedCents    int64 `json:"receivedCents"`

	// Hours logged this month (approved timesheets only)
	HoursThisMonth float64 `json:"hoursThisMonth"`

	// Projects close to or over their hour allocation
	BudgetAlerts []BudgetAlert `json:"budgetAlerts"`

	// Items needing someone's attention
	AttentionItems []AttentionItem `json:"attentionItems"`
}

type BudgetAlert struct {
	ProjectID          primitive.ObjectID `json:"projectId"`
	Name               string             `json:"name"`
	ProgressPercentage int                `json:"progressPercentage"`
	RemainingHours     float64            `json:"remainingHours"`
}

type AttentionItem struct {
	Title  string `json:"title"`
	Action string `json:"action"`
	Link   string `json:"link"`
}

// GetStudioOverview fans the dashboard counts out across the collections in
// parallel. Individual query failures are logged, not fatal; the dashboard
// renders with whatever came back.
func GetStudioOverview(w http.ResponseWriter, r *http.Request) {
	actor, studioID, ok := requestActor(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, policy.KindForbidden, "Not authenticated")
		return
	}
	if actor.Role != policy.RoleCOO && actor.Role != policy.RoleDirector && actor.Role != policy.RoleDesignManager {
		utils.RespondWithError(w, http.StatusForbidden, policy.KindForbidden, "Access denied")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var overview StudioOverview
	var wg sync.WaitGroup
	var mu sync.Mutex
	var fetchErrors []error

	update := func(fn func()) {
		mu.Lock()
		defer mu.Unlock()
		fn()
	}
	handleError := func(err error, operation string) {
		if err != nil && err != mongo.ErrNoDocuments {
			mu.Lock()
			fetchErrors = append(fetchErrors, fmt.Errorf("%s: %v", operation, err))
			mu.Unlock()
		}
	}

	wg.Add(7)

	go func() {
		defer wg.Done()
		count, err := projectCollection.CountDocuments(ctx, bson.M{
			"studioId": studioID,
			"status":   policy.StatusActive,
		})
		handleError(err, "ActiveProjects")
		update(func() { overview.ActiveProjects = count })
	}()

	go func() {
		defer wg.Done()
		count, err := projectCollection.CountDocuments(ctx, bson.M{
			"studioId": studioID,
			"status":   policy.StatusOnHold,
		})
		handleError(err, "OnHoldProjects")
		update(func() { overview.OnHoldProjects = count })
	}()

	go func() {
		defer wg.Done()
		count, err := taskCollection.CountDocuments(ctx, bson.M{
			"studioId": studioID,
			"status":   bson.M{"$in": []string{policy.StatusTodo, policy.StatusInProgress, policy.StatusReview}},
		})
		handleError(err, "OpenTasks")
		update(func() { overview.OpenTasks = count })
	}()

	// Pending approvals span five collections; sum the counts.
	go func() {
		defer wg.Done()
		pendingFilter := bson.M{"studioId": studioID, "status": policy.StatusPending}
		submittedFilter := bson.M{"studioId": studioID, "status": policy.StatusSubmitted}
		var total int64
		for op, pair := range map[string]struct {
			coll   *mongo.Collection
			filter bson.M
		}{
			"PendingProposals":    {proposalCollection, pendingFilter},
			"PendingTimesheets":   {timesheetCollection, pendingFilter},
			"PendingTimeOff":      {timeoffCollection, pendingFilter},
			"PendingVariations":   {variationCollection, pendingFilter},
			"PendingDeliverables": {deliverableCollection, submittedFilter},
		} {
			count, err := pair.coll.CountDocuments(ctx, pair.filter)
			handleError(err, op)
			total += count
		}
		update(func() { overview.PendingApprovals = total })
	}()

	go func() {
		defer wg.Done()
		count, err := invoiceCollection.CountDocuments(ctx, bson.M{
			"studioId": studioID,
			"status":   policy.StatusOverdue,
		})
		handleError(err, "OverdueInvoices")
		update(func() { overview.OverdueInvoices = count })
	}()

	// Outstanding = unpaid sent/overdue invoices. Received = paid invoices.
	go func() {
		defer wg.Done()
		pipeline := mongo.Pipeline{
			bson.D{{Key: "$match", Value: bson.M{
				"studioId": studioID,
				"status":   bson.M{"$in": []string{policy.StatusSent, policy.StatusOverdue, policy.StatusPaid}},
			}}},
			bson.D{{Key: "$group", Value: bson.M{
				"_id":   "$status",
				"total": bson.M{"$sum": "$amountCents"},
			}}},
		}
		cursor, err := invoiceCollection.Aggregate(ctx, pipeline)
		handleError(err, "InvoiceTotals")
		if err != nil {
			return
		}
		defer cursor.Close(ctx)
		var outstanding, received int64
		for cursor.Next(ctx) {
			var row struct {
				Status string `bson:"_id"`
				Total  int64  `bson:"total"`
			}
			if err := cursor.Decode(&row); err != nil {
				continue
			}
			if row.Status == policy.StatusPaid {
				received += row.Total
			} else {
				outstanding += row.Total
			}
		}
		update(func() {
			overview.OutstandingCents = outstanding
			overview.ReceivedCents = received
		})
	}()

	go func() {
		defer wg.Done()
		monthStart := time.Now().UTC()
		monthStart = time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)
		pipeline := mongo.Pipeline{
			bson.D{{Key: "$match", Value: bson.M{
				"studioId":  studioID,
				"status":    policy.StatusApproved,
				"createdAt": bson.M{"$gte": monthStart},
			}}},
			bson.D{{Key: "$group", Value: bson.M{
				"_id":   nil,
				"hours": bson.M{"$sum": "$hours"},
			}}},
		}
		cursor, err := timesheetCollection.Aggregate(ctx, pipeline)
		handleError(err, "HoursThisMonth")
		if err != nil {
			return
		}
		defer cursor.Close(ctx)
		if cursor.Next(ctx) {
			var row struct {
				Hours float64 `bson:"hours"`
			}
			if err := cursor.Decode(&row); err == nil {
				update(func() { overview.HoursThisMonth = row.Hours })
			}
		}
	}()

	wg.Wait()

	overview.BudgetAlerts = getBudgetAlerts(ctx, studioID)
	overview.AttentionItems = getAttentionItems(ctx, studioID, overview)

	if len(fetchErrors) > 0 {
		for _, err := range fetchErrors {
			log.Printf("Dashboard fetch error: %v", err)
		}
	}

	utils.RespondWithData(w, http.StatusOK, overview)
}

// getBudgetAlerts lists active projects at 80% or more of their allocation.
func getBudgetAlerts(ctx context.Context, studioID primitive.ObjectID) []BudgetAlert {
	alerts := []BudgetAlert{}

	cursor, err := projectCollection.Find(ctx, bson.M{
		"studioId":           studioID,
		"status":             policy.StatusActive,
		"progressPercentage": bson.M{"$gte": 80},
	})
	if err != nil {
		return alerts
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var project struct {
			ID                 primitive.ObjectID `bson:"_id"`
			Name               string             `bson:"name"`
			ProgressPercentage int                `bson:"progressPercentage"`
			RemainingHours     float64            `bson:"remainingHours"`
		}
		if err := cursor.Decode(&project); err != nil {
			continue
		}
		alerts = append(alerts, BudgetAlert{
			ProjectID:          project.ID,
			Name:               project.Name,
			ProgressPercentage: project.ProgressPercentage,
			RemainingHours:     project.RemainingHours,
		})
	}
	return alerts
}

func getAttentionItems(ctx context.Context, studioID primitive.ObjectID, overview StudioOverview) []AttentionItem {
	items := []AttentionItem{}

	if overview.OverdueInvoices > 0 {
		items = append(items, AttentionItem{
			Title:  fmt.Sprintf("%d Overdue Invoices", overview.OverdueInvoices),
			Action: "Chase",
			Link:   "/invoices?filter=overdue",
		})
	}

	// Approvals sitting in the queue for more than 48 hours.
	staleCutoff := time.Now().UTC().Add(-48 * time.Hour)
	staleCount, err := timesheetCollection.CountDocuments(ctx, bson.M{
		"studioId":  studioID,
		"status":    policy.StatusPending,
		"createdAt": bson.M{"$lt": staleCutoff},
	})
	if err == nil && staleCount > 0 {
		items = append(items, AttentionItem{
			Title:  fmt.Sprintf("%d Timesheets Awaiting Review", staleCount),
			Action: "Review",
			Link:   "/timesheets?status=pending",
		})
	}

	staleVariations, err := variationCollection.CountDocuments(ctx, bson.M{
		"studioId":  studioID,
		"status":    policy.StatusPending,
		"createdAt": bson.M{"$lt": staleCutoff},
	})
	if err == nil && staleVariations > 0 {
		items = append(items, AttentionItem{
			Title:  fmt.Sprintf("%d Variations Awaiting Decision", staleVariations),
			Action: "Review",
			Link:   "/variations?status=pending",
		})
	}

	for _, alert := range overview.BudgetAlerts {
		if alert.ProgressPercentage >= 100 {
			items = append(items, AttentionItem{
				Title:  fmt.Sprintf("Project %q Over Hour Budget", alert.Name),
				Action: "Review",
				Link:   "/projects/" + alert.ProjectID.Hex(),
			})
		}
	}

	return items
}

package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avolokh/cfp-comb/app/conference"
	"github.com/avolokh/cfp-comb/app/database"
	"github.com/avolokh/cfp-comb/app/dates"
	"github.com/avolokh/cfp-comb/app/listing"
	"github.com/avolokh/cfp-comb/app/tasks"
)

func NewHandler(conferenceRepo database.ConferenceRepository, cfpRepo database.CFPRepository,
	dateRepo database.ImportantDateRepository, listings *listing.Cache,
	reconciler ReconcilerInterface, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		conferenceRepo: conferenceRepo,
		cfpRepo:        cfpRepo,
		dateRepo:       dateRepo,
		listings:       listings,
		reconciler:     reconciler,
		scheduler:      scheduler,
	}
}

// APIIngestConference accepts one flat labeled-field record and reconciles
// it synchronously.
func (h *Handler) APIIngestConference(c *gin.Context) {
	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be a flat JSON object of string fields"})
		return
	}

	rec, err := conference.RecordFromFields(fields)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.reconciler.Reconcile(c.Request.Context(), rec, time.Now().UTC())
	if err != nil {
		var formatErr *dates.FormatError
		if errors.As(err, &formatErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		slog.Error("Reconciliation failed", "acronym", rec.Acronym, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconciliation failed"})
		return
	}

	c.JSON(http.StatusOK, reconcileResponse(res))
}

// APIReconcileListing re-runs a single loaded listing source on demand.
func (h *Handler) APIReconcileListing(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing listing name parameter"})
		return
	}

	source, err := h.listings.GetSource(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing source not found"})
		return
	}

	rec, err := source.Record()
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	task := tasks.NewReconcileRecordTask(source.Name, rec, h.reconciler)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Failed to enqueue ReconcileRecordTask", "source", source.Name, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Task queue is full"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "source": source.Name})
}

func (h *Handler) ListConferences(c *gin.Context) {
	ctx := c.Request.Context()

	conferences, err := h.conferenceRepo.List(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "list_conferences", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	out := make([]map[string]interface{}, 0, len(conferences))
	for _, conf := range conferences {
		info := map[string]interface{}{
			"id":      conf.ID,
			"name":    conf.Name,
			"acronym": conf.Acronym,
		}

		if cfp, err := h.cfpRepo.GetActive(ctx, conf.ID); err == nil && cfp != nil {
			info["active_cfp"] = cfpSummary(cfp)
		}

		out = append(out, info)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"conferences": out,
		"total":       len(out),
	})
}

func (h *Handler) GetConference(c *gin.Context) {
	acronym := c.Param("acronym")
	if acronym == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing acronym parameter"})
		return
	}

	ctx := c.Request.Context()

	conf, err := h.conferenceRepo.GetByAcronym(ctx, acronym)
	if err != nil {
		slog.Error("Database error", "operation", "get_conference", "acronym", acronym, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if conf == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conference not found"})
		return
	}

	cfps, err := h.cfpRepo.ListByConference(ctx, conf.ID)
	if err != nil {
		slog.Error("Database error", "operation", "list_cfps", "acronym", acronym, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	cfpDetails := make([]map[string]interface{}, 0, len(cfps))
	for _, cfp := range cfps {
		detail := cfpSummary(&cfp)

		importantDates, err := h.dateRepo.ListByCFP(ctx, cfp.ID)
		if err != nil {
			slog.Error("Database error", "operation", "list_important_dates", "cfp", cfp.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		detail["important_dates"] = importantDateList(importantDates)

		cfpDetails = append(cfpDetails, detail)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"id":              conf.ID,
		"name":            conf.Name,
		"acronym":         conf.Acronym,
		"created_at":      conf.CreatedAt,
		"call_for_papers": cfpDetails,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.conferenceRepo.Count(c.Request.Context()); err == nil {
		health["conferences"] = count
	}

	health["loaded_listings"] = h.listings.GetSourceCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	stats := map[string]interface{}{
		"loaded_listings": h.listings.GetSourceCount(),
	}

	if count, err := h.conferenceRepo.Count(ctx); err == nil {
		stats["conferences"] = count
	}
	if count, err := h.cfpRepo.Count(ctx); err == nil {
		stats["call_for_papers"] = count
	}
	if count, err := h.cfpRepo.CountActive(ctx); err == nil {
		stats["active_call_for_papers"] = count
	}
	if count, err := h.dateRepo.Count(ctx); err == nil {
		stats["important_dates"] = count
	}
	if count, err := h.dateRepo.CountUpcoming(ctx); err == nil {
		stats["upcoming_important_dates"] = count
	}

	c.JSON(http.StatusOK, stats)
}

func reconcileResponse(res *conference.Result) map[string]interface{} {
	return map[string]interface{}{
		"conference": map[string]interface{}{
			"id":      res.Conference.ID,
			"name":    res.Conference.Name,
			"acronym": res.Conference.Acronym,
		},
		"cfp":             cfpSummary(res.CFP),
		"cfp_created":     res.CFPCreated,
		"important_dates": importantDateList(res.ImportantDates),
		"skipped_dates":   res.SkippedDates,
	}
}

func cfpSummary(cfp *database.CallForPapers) map[string]interface{} {
	return map[string]interface{}{
		"id":          cfp.ID,
		"start_date":  cfp.StartDate.Format(dates.ISODay),
		"end_date":    cfp.EndDate.Format(dates.ISODay),
		"location":    cfp.Location,
		"link":        cfp.Link,
		"access_type": cfp.AccessType,
		"status":      cfp.Status,
	}
}

func importantDateList(importantDates []database.ImportantDate) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(importantDates))
	for _, d := range importantDates {
		out = append(out, map[string]interface{}{
			"date_type":  d.DateType,
			"date_value": d.DateValue.Format(dates.ISODay),
			"status":     d.Status,
		})
	}
	return out
}

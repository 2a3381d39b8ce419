package restserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/chrissnell/cuffhold/internal/hold"
)

// maxRequestBytes bounds a classify request body. Recordings run to a few hundred
// thousand samples each.
const maxRequestBytes = 256 << 20

// ClassifyResponse is returned by the classify endpoint
type ClassifyResponse struct {
	RunID   string        `json:"run_id"`
	Results []hold.Result `json:"results"`
	Summary hold.Summary  `json:"summary"`
}

// ClassifyBatch classifies the posted mapping of record id to recording
func (c *Controller) ClassifyBatch(w http.ResponseWriter, req *http.Request) {
	var records map[string]hold.RawRecord
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxRequestBytes))
	if err := dec.Decode(&records); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.formatter.WriteError(w, req, status, "invalid request body: "+err.Error())
		return
	}
	if len(records) == 0 {
		c.formatter.WriteError(w, req, http.StatusBadRequest, "no records in request")
		return
	}

	ctx := req.Context()
	if c.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.deadline)
		defer cancel()
	}

	start := time.Now()
	results := c.aggregator.Run(ctx, records)
	c.metrics.batchDuration.Observe(time.Since(start).Seconds())
	c.metrics.observe(results)

	runID := uuid.New().String()
	if c.store != nil {
		if err := c.store.SaveRun(req.Context(), runID, start, results); err != nil {
			c.logger.Errorf("could not store run %s: %v", runID, err)
			c.formatter.WriteError(w, req, http.StatusInternalServerError, "results could not be stored")
			return
		}
	}

	c.formatter.WriteResponse(w, req, http.StatusOK, ClassifyResponse{
		RunID:   runID,
		Results: results,
		Summary: hold.Summarize(results, c.classifier.Thresholds()),
	})
}

// GetThresholds returns the limits the server classifies with
func (c *Controller) GetThresholds(w http.ResponseWriter, req *http.Request) {
	c.formatter.WriteResponse(w, req, http.StatusOK, c.classifier.Thresholds())
}

// Healthz reports that the server is up
func (c *Controller) Healthz(w http.ResponseWriter, req *http.Request) {
	c.formatter.WriteResponse(w, req, http.StatusOK, map[string]string{"status": "ok"})
}

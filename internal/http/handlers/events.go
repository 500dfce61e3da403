package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Charbel-5/moondev-coding-challenge/internal/app"
	"github.com/Charbel-5/moondev-coding-challenge/internal/common"
	"github.com/Charbel-5/moondev-coding-challenge/internal/domain/submission"
	"github.com/Charbel-5/moondev-coding-challenge/internal/feed"
	"github.com/Charbel-5/moondev-coding-challenge/internal/http/middleware"
	"github.com/Charbel-5/moondev-coding-challenge/internal/http/response"
)

const heartbeatInterval = 25 * time.Second

type EventsHandler struct {
	hub         *feed.Hub
	submissions *app.SubmissionService
	logger      *slog.Logger
}

func NewEventsHandler(hub *feed.Hub, submissions *app.SubmissionService, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{hub: hub, submissions: submissions, logger: logger}
}

// Stream pushes submission mutations to the client over SSE. Applicants
// are scoped to their own submission; reviewers see everything. Reviewers
// may ask for mode=snapshot to get the full ordered collection per event
// instead of deltas, the fallback for clients that re-render wholesale.
// Closing the request context releases the subscription immediately.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.Error(w, common.NewError(common.CodeInternal, "streaming unsupported", nil))
		return
	}

	snapshot := r.URL.Query().Get("mode") == "snapshot" && actor.IsReviewer()
	ownerScope := actor.UserID
	if actor.IsReviewer() {
		ownerScope = ""
	}

	events, cancel := h.hub.Subscribe(r.Context(), ownerScope)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case event, open := <-events:
			if !open {
				return
			}
			if err := h.writeEvent(w, r, event, snapshot); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (h *EventsHandler) writeEvent(w http.ResponseWriter, r *http.Request, event submission.Event, snapshot bool) error {
	if snapshot {
		items, err := h.submissions.List(r.Context(), "")
		if err != nil {
			h.logger.Error("feed snapshot refresh failed", "error", err)
			return nil
		}
		return writeSSE(w, "snapshot", items)
	}
	return writeSSE(w, "change", event)
}

func writeSSE(w http.ResponseWriter, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("event: " + name + "\n")); err != nil {
		return err
	}
	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n\n"))
	return err
}

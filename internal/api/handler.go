package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"ipo-radar/agents"
	"ipo-radar/config"
	"ipo-radar/envelope"
	"ipo-radar/internal/app"
	"ipo-radar/models"
	"ipo-radar/observability"
	"ipo-radar/services"
	"ipo-radar/templates"
	"ipo-radar/view"
)

// maxNotifyBody bounds the /api/notify request body
const maxNotifyBody = 64 << 10

// Handler handles HTTP API requests
type Handler struct {
	app *app.App
	cfg *config.Config
}

// NewHandler creates a new Handler
func NewHandler(application *app.App, cfg *config.Config) *Handler {
	return &Handler{app: application, cfg: cfg}
}

// HandleIndex serves the dashboard page using templ
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.htmlResponse(w, templates.Index(agents.Sectors), r)
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"services": map[string]string{
			"anthropic": "configured",
		},
	}

	if !h.app.Configured() {
		status["services"].(map[string]string)["anthropic"] = "not_configured"
		status["status"] = "degraded"
	}

	cbStatus := services.GetGlobalRegistry().Status()
	status["circuit_breakers"] = cbStatus

	for _, cb := range cbStatus {
		if cb.State == "open" {
			status["status"] = "degraded"
			break
		}
	}

	h.jsonResponse(w, status)
}

// HandleGetIPOs returns upcoming IPOs as {ipos, fetchedAt}, or the filtered
// card list for HTMX requests.
func (h *Handler) HandleGetIPOs(w http.ResponseWriter, r *http.Request) {
	snap, err := h.app.IPOs(r.Context(), parseRefresh(r))
	if err != nil {
		h.failure(w, r, err)
		return
	}

	if isHTMXRequest(r) {
		q := r.URL.Query()
		data := templates.NewIPOListData(
			snap.Items,
			view.ParseWindow(q.Get("window")),
			q.Get("q"),
			view.NewNotifiedSet(q["tracked"]...),
			h.app.Now(),
			snap.FetchedAt,
		)
		h.htmlResponse(w, templates.IPOList(data), r)
		return
	}

	h.jsonResponse(w, envelope.Success(snap.Items, snap.FetchedAt))
}

// HandleGetStocks returns momentum picks for ?sector= as {stocks, fetchedAt},
// or the filtered card list for HTMX requests.
func (h *Handler) HandleGetStocks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sector := q.Get("sector")
	if sector == "" {
		sector = agents.SectorAll
	}

	snap, err := h.app.StockPicks(r.Context(), sector, parseRefresh(r))
	if err != nil {
		h.failure(w, r, err)
		return
	}

	if isHTMXRequest(r) {
		data := templates.NewStockListData(snap.Items, sector, view.ParseSignal(q.Get("signal")), q.Get("q"), snap.FetchedAt)
		h.htmlResponse(w, templates.StockList(data), r)
		return
	}

	h.jsonResponse(w, envelope.Success(snap.Items, snap.FetchedAt))
}

// NotifyRequest toggles tracking of one IPO. Tracked is the caller's current
// set of tracked company names.
type NotifyRequest struct {
	Company      string   `json:"company"`
	ExpectedDate *string  `json:"expected_date"`
	Tracked      []string `json:"tracked"`
}

// NotifyResponse carries the new tracked set and, when tracking was turned
// on, the notifications the browser should show.
type NotifyResponse struct {
	Tracking bool      `json:"tracking"`
	Tracked  []string  `json:"tracked"`
	Plan     view.Plan `json:"plan"`
}

// HandleNotify toggles a company in the tracked set and plans its alerts
func (h *Handler) HandleNotify(w http.ResponseWriter, r *http.Request) {
	req, err := parseNotifyRequest(w, r)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	listing := models.IPOListing{Company: models.Text(req.Company)}
	if req.ExpectedDate != nil && *req.ExpectedDate != "" {
		listing.ExpectedDate = models.Ptr(*req.ExpectedDate)
	}

	tracked := view.ToggleListing(view.NewNotifiedSet(req.Tracked...), listing)
	resp := NotifyResponse{
		Tracking: tracked.Has(listing.NaturalKey()),
		Tracked:  view.SortedKeys(tracked),
	}
	if resp.Tracking {
		resp.Plan = view.PlanNotification(listing, h.app.Now())
	}

	observability.WithContext(r.Context()).Debug("toggled tracking",
		"company", req.Company,
		"tracking", resp.Tracking,
		"schedule", resp.Plan.Schedule)

	h.jsonResponse(w, resp)
}

func parseNotifyRequest(w http.ResponseWriter, r *http.Request) (NotifyRequest, error) {
	var req NotifyRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxNotifyBody)).Decode(&req); err != nil {
			return req, errors.New("invalid request body")
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxNotifyBody)
		if err := r.ParseForm(); err != nil {
			return req, errors.New("invalid request body")
		}
		req.Company = r.PostForm.Get("company")
		if d := r.PostForm.Get("expected_date"); d != "" {
			req.ExpectedDate = &d
		}
		req.Tracked = r.PostForm["tracked"]
	}

	req.Company = strings.TrimSpace(req.Company)
	if req.Company == "" {
		return req, errors.New("company is required")
	}
	return req, nil
}

// failure writes err as an {error} envelope, or as an error box for HTMX
func (h *Handler) failure(w http.ResponseWriter, r *http.Request, err error) {
	e := envelope.Failure(err)
	if isHTMXRequest(r) {
		h.htmlError(w, e.Message, r)
		return
	}
	h.jsonError(w, e.Message, e.Status)
}

func parseRefresh(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("refresh")) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// templComponent matches the templ.Component interface
type templComponent interface {
	Render(ctx context.Context, w io.Writer) error
}

// htmlResponse renders a templ component as HTML
func (h *Handler) htmlResponse(w http.ResponseWriter, component templComponent, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		observability.WithContext(r.Context()).Error("render failed", "error", err)
	}
}

// htmlError renders an error state as HTML. The retry button replays the
// failed request.
func (h *Handler) htmlError(w http.ResponseWriter, message string, r *http.Request) {
	h.htmlResponse(w, templates.ErrorState(message, r.URL.RequestURI()), r)
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope.Error{Message: message, Status: status})
}

// ABOUTME: HTTP API handlers for identity, subscriptions, event intake, and retry
// ABOUTME: Maps domain errors to status codes and renders JSON responses

package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/2389/hookrelay/internal/auth"
	"github.com/2389/hookrelay/internal/identity"
	"github.com/2389/hookrelay/internal/relay"
	"github.com/2389/hookrelay/internal/store"
)

// RegisterRequest is the JSON request body for POST /register and POST /login.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is the JSON response for POST /login.
type TokenResponse struct {
	Token string `json:"token"`
}

// ValidateTokenResponse is the JSON response for POST /validate-token.
type ValidateTokenResponse struct {
	Valid bool `json:"valid"`
}

// SubscribeRequest is the JSON request body for POST /subscribe.
// The owner is the authenticated principal, not a request field.
type SubscribeRequest struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// SubscriptionResponse is the JSON shape for subscription records.
type SubscriptionResponse struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Source    string `json:"source"`
	Secret    string `json:"secret"`
	Owner     string `json:"owner"`
	CreatedAt string `json:"created_at"`
}

// ListSubscriptionsResponse is the JSON response for GET /subscriptions.
type ListSubscriptionsResponse struct {
	Subscriptions []SubscriptionResponse `json:"subscriptions"`
}

// IngestRequest is the JSON request body for POST /webhook.
type IngestRequest struct {
	Source    string          `json:"source"`
	EventType string          `json:"eventType"`
	Payload   json.RawMessage `json:"payload"`
}

// DeliveryResponse is the JSON shape for delivery records.
type DeliveryResponse struct {
	ID             string          `json:"id"`
	SubscriptionID string          `json:"subscription_id"`
	EventType      string          `json:"eventType"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	Timestamp      string          `json:"timestamp"`
	Status         string          `json:"deliveryStatus"`
}

// IngestResponse is the JSON response for POST /webhook.
type IngestResponse struct {
	Deliveries []DeliveryResponse `json:"deliveries"`
}

// MessageResponse is the JSON response for operations that only confirm.
type MessageResponse struct {
	Message string `json:"message"`
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON writes a JSON response with the given status.
func (g *Gateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func subscriptionResponse(sub *store.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:        sub.ID,
		URL:       sub.URL,
		Source:    sub.Source,
		Secret:    sub.Secret,
		Owner:     sub.Owner,
		CreatedAt: sub.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func deliveryResponse(d *store.Delivery) DeliveryResponse {
	return DeliveryResponse{
		ID:             d.ID,
		SubscriptionID: d.SubscriptionID,
		EventType:      d.EventType,
		Payload:        d.Payload,
		Timestamp:      d.Timestamp.UTC().Format(time.RFC3339Nano),
		Status:         d.Status,
	}
}

func deliveryResponses(ds []*store.Delivery) []DeliveryResponse {
	out := make([]DeliveryResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, deliveryResponse(d))
	}
	return out
}

// handleRegister handles POST /register requests.
func (g *Gateway) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	_, err := g.identity.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrMissingCredentials):
			g.sendJSONError(w, http.StatusBadRequest, "username and password are required")
		case errors.Is(err, store.ErrDuplicateUsername):
			g.sendJSONError(w, http.StatusConflict, "username already exists")
		default:
			g.logger.Error("failed to register principal", "error", err)
			g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	g.writeJSON(w, http.StatusOK, MessageResponse{Message: "registered"})
}

// handleLogin handles POST /login requests.
func (g *Gateway) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	token, err := g.identity.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidCredentials), errors.Is(err, identity.ErrMissingCredentials):
			g.sendJSONError(w, http.StatusBadRequest, "invalid username or password")
		default:
			g.logger.Error("failed to log in principal", "error", err)
			g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	g.writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

// handleValidateToken handles POST /validate-token requests.
// Returns {"valid": true} for a valid bearer token, 401 {"valid": false}
// otherwise.
func (g *Gateway) handleValidateToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if header == "" || token == "" || !g.identity.Validate(token) {
		g.writeJSON(w, http.StatusUnauthorized, ValidateTokenResponse{Valid: false})
		return
	}

	g.writeJSON(w, http.StatusOK, ValidateTokenResponse{Valid: true})
}

// handleSubscribe handles POST /subscribe requests.
// The subscription owner is the authenticated principal.
func (g *Gateway) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	owner := auth.FromContext(r.Context())
	sub, err := g.registry.Subscribe(r.Context(), owner, req.URL, req.Source)
	if err != nil {
		if errors.Is(err, relay.ErrValidation) {
			g.sendJSONError(w, http.StatusBadRequest, "url and source are required")
			return
		}
		g.logger.Error("failed to create subscription", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	g.writeJSON(w, http.StatusOK, subscriptionResponse(sub))
	g.metrics.subscriptionsCreatedTotal.Inc()
}

// handleListSubscriptions handles GET /subscriptions requests.
// The owner comes from the ?owner query parameter; a missing owner is a
// validation error so a client with a corrupted stored identity gets told to
// log in again instead of silently receiving nothing.
func (g *Gateway) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	owner := r.URL.Query().Get("owner")
	subs, err := g.registry.ListByOwner(r.Context(), owner)
	if err != nil {
		if errors.Is(err, relay.ErrValidation) {
			g.sendJSONError(w, http.StatusBadRequest, "owner is required; log in again")
			return
		}
		g.logger.Error("failed to list subscriptions", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := ListSubscriptionsResponse{Subscriptions: make([]SubscriptionResponse, 0, len(subs))}
	for _, sub := range subs {
		resp.Subscriptions = append(resp.Subscriptions, subscriptionResponse(sub))
	}
	g.writeJSON(w, http.StatusOK, resp)
}

// handleIngest handles POST /webhook requests.
// The full set of created delivery records is returned; 404 when the source
// has no subscribers.
func (g *Gateway) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := g.dispatcher.Ingest(r.Context(), req.Source, req.EventType, req.Payload)
	if err != nil {
		if errors.Is(err, relay.ErrNoSubscribers) {
			g.sendJSONError(w, http.StatusNotFound, "no subscriptions found for this source")
			return
		}
		// Fan-out is not atomic: keep whatever was recorded, fail only when
		// nothing was.
		if len(created) == 0 {
			g.logger.Error("failed to ingest event", "source", req.Source, "error", err)
			g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		g.logger.Warn("partial fan-out", "source", req.Source, "recorded", len(created), "error", err)
	}

	g.writeJSON(w, http.StatusOK, IngestResponse{Deliveries: deliveryResponses(created)})
	g.metrics.eventsIngestedTotal.Inc()
	g.metrics.deliveriesCreatedTotal.Add(float64(len(created)))
}

// handleRetry handles POST /retry requests.
// The sweep succeeds once every attempt has completed; per-record outcomes
// are reported in the returned statuses.
func (g *Gateway) handleRetry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	swept, err := g.sweeper.RetryFailed(r.Context())
	if err != nil {
		g.logger.Error("retry sweep failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	g.writeJSON(w, http.StatusOK, IngestResponse{Deliveries: deliveryResponses(swept)})
	g.metrics.deliveriesRetriedTotal.Add(float64(len(swept)))
}

// handleUnsubscribe handles DELETE /unsubscribe/{id} requests.
func (g *Gateway) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/unsubscribe/")
	if id == "" || strings.Contains(id, "/") {
		g.sendJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}

	if err := g.registry.Unsubscribe(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			g.sendJSONError(w, http.StatusNotFound, "subscription not found")
			return
		}
		g.logger.Error("failed to delete subscription", "id", id, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	g.writeJSON(w, http.StatusOK, MessageResponse{Message: "subscription cancelled"})
}

// handleHealth handles GET /health requests.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	g.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

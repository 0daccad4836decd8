package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"naumstay/internal/newsletter/service"
	httputil "naumstay/pkg/http"
	"naumstay/pkg/logger"
)

type NewsletterHandler struct {
	service service.NewsletterService
	log     *logger.Logger
}

func NewNewsletterHandler(service service.NewsletterService, log *logger.Logger) *NewsletterHandler {
	return &NewsletterHandler{
		service: service,
		log:     log,
	}
}

type subscribeRequest struct {
	Email string `json:"email"`
}

type sendRequest struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type sendResponse struct {
	Delivered int `json:"delivered"`
}

func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Subscribe", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	subscriber, err := h.service.Subscribe(r.Context(), req.Email)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Subscribe", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, subscriber); err != nil {
		h.log.Error("failed to write created response", "handler", "Subscribe", "operation", "WriteCreated", "error", err)
	}
}

// Unsubscribe is a GET because the link lands in an email client.
func (h *NewsletterHandler) Unsubscribe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	token := r.URL.Query().Get("token")

	if err := h.service.Unsubscribe(r.Context(), token); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Unsubscribe", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{"status": "unsubscribed"}); err != nil {
		h.log.Error("failed to write success response", "handler", "Unsubscribe", "operation", "WriteSuccess", "error", err)
	}
}

func (h *NewsletterHandler) Send(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Send", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	delivered, err := h.service.Send(r.Context(), req.Subject, req.HTML)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Send", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, sendResponse{Delivered: delivered}); err != nil {
		h.log.Error("failed to write success response", "handler", "Send", "operation", "WriteSuccess", "error", err)
	}
}

func (h *NewsletterHandler) Count(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	count, err := h.service.SubscriberCount(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Count", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]int64{"subscribers": count}); err != nil {
		h.log.Error("failed to write success response", "handler", "Count", "operation", "WriteSuccess", "error", err)
	}
}

func (h *NewsletterHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/newsletter/subscribe", h.Subscribe)
	router.GET("/api/v1/newsletter/unsubscribe", h.Unsubscribe)
	router.POST("/api/v1/newsletter/send", h.Send)
	router.GET("/api/v1/newsletter/subscribers/count", h.Count)
}

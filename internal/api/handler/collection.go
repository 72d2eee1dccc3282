package handler

import (
	"net/http"

	"github.com/embercortex/embercortex/internal/api/response"
	"github.com/embercortex/embercortex/internal/service"
)

// CollectionHandler serves the RAG collection listing
type CollectionHandler struct {
	collectionService *service.CollectionService
}

// NewCollectionHandler creates a new collection handler
func NewCollectionHandler(collectionService *service.CollectionService) *CollectionHandler {
	return &CollectionHandler{collectionService: collectionService}
}

// List returns the known collections
func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	collections, err := h.collectionService.List(r.Context())
	if err != nil {
		response.Error(w, http.StatusBadGateway, "RAG service unavailable: "+err.Error())
		return
	}

	response.OK(w, collections)
}

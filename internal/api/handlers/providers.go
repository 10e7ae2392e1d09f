package handlers

import (
	"net/http"

	"github.com/cloo-solutions/askd/internal/api"
	"github.com/cloo-solutions/askd/internal/llm"
)

type ProviderDirectory interface {
	Providers() []llm.ProviderInfo
}

type ProvidersHandler struct {
	directory ProviderDirectory
}

func NewProvidersHandler(directory ProviderDirectory) *ProvidersHandler {
	return &ProvidersHandler{directory: directory}
}

type ProvidersResponse struct {
	Providers []llm.ProviderInfo `json:"providers"`
}

// List returns the generation providers this deployment can route to.
func (h *ProvidersHandler) List(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, ProvidersResponse{Providers: h.directory.Providers()})
}

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Kerhoff/giddylist/internal/earnings"
	"github.com/Kerhoff/giddylist/internal/repository"
	"github.com/Kerhoff/giddylist/internal/service"
)

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	filters := repository.ProductFilters{
		Category: queryString(r, "category"),
		Retailer: queryString(r, "retailer"),
	}
	age, err := queryInt(r, "age")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	filters.Age = age
	if limit, err := queryInt(r, "limit"); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	} else if limit != nil {
		filters.Limit = *limit
	}
	if offset, err := queryInt(r, "offset"); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	} else if offset != nil {
		filters.Offset = *offset
	}

	products, err := s.svc.ListProducts(r.Context(), filters)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req service.ProductInput
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	p, err := s.svc.CreateProductFromURL(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]any{"product": p})
}

type scrapeBatchRequest struct {
	URLs []string `json:"urls"`
}

func (s *Server) handleScrapeBatch(w http.ResponseWriter, r *http.Request) {
	var req scrapeBatchRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	results, err := s.svc.ScrapeBatch(r.Context(), req.URLs)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"results": results})
}

// ---------------------------------------------------------------------------
// Gift guides
// ---------------------------------------------------------------------------

func (s *Server) isAdmin(r *http.Request) bool {
	id, ok := currentUser(r)
	if !ok {
		return false
	}
	p, err := s.svc.Profile(r.Context(), id)
	return err == nil && p != nil && p.IsAdmin
}

func (s *Server) handleGetGuide(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.GetGuide(r.Context(), r.PathValue("slug"), s.isAdmin(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"guide": g})
}

func (s *Server) handleUpdateGuide(w http.ResponseWriter, r *http.Request) {
	var req service.GuideUpdate
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	g, err := s.svc.UpdateGuide(r.Context(), r.PathValue("slug"), req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"guide": g})
}

func (s *Server) handleDeleteGuide(w http.ResponseWriter, r *http.Request) {
	archive, _ := strconv.ParseBool(r.URL.Query().Get("archive"))
	if err := s.svc.DeleteGuide(r.Context(), r.PathValue("slug"), archive); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleGenerateGuide(w http.ResponseWriter, r *http.Request) {
	var req service.GenerateInput
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	id, _ := currentUser(r)
	g, err := s.svc.GenerateGuide(r.Context(), id, req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]any{"guide": g})
}

// ---------------------------------------------------------------------------
// Trending gifts
// ---------------------------------------------------------------------------

func (s *Server) handleTrendingGifts(w http.ResponseWriter, r *http.Request) {
	filters := repository.TrendingFilters{
		AgeRange: queryString(r, "age"),
		Category: queryString(r, "category"),
	}
	if limit, err := queryInt(r, "limit"); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	} else if limit != nil {
		filters.Limit = *limit
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"gifts": s.svc.TrendingGifts(r.Context(), filters)})
}

func (s *Server) handleCreateTrendingGift(w http.ResponseWriter, r *http.Request) {
	var req service.TrendingInput
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	g, err := s.svc.CreateTrendingGift(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]any{"gift": g})
}

func (s *Server) handleUpdateTrendingGift(w http.ResponseWriter, r *http.Request) {
	var req service.TrendingInput
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	g, err := s.svc.UpdateTrendingGift(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"gift": g})
}

// ---------------------------------------------------------------------------
// Earnings
// ---------------------------------------------------------------------------

func (s *Server) handleTiers(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{"tiers": earnings.Tiers()})
}

type commissionRequest struct {
	Username   string  `json:"username"`
	Commission float64 `json:"commission"`
}

func (s *Server) handleRecordCommission(w http.ResponseWriter, r *http.Request) {
	var req commissionRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	username := strings.TrimPrefix(strings.TrimSpace(req.Username), "@")
	if username == "" {
		s.respondError(w, http.StatusBadRequest, "username is required")
		return
	}
	c, err := s.svc.RecordCommission(r.Context(), username, req.Commission)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, c)
}

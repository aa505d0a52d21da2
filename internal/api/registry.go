package api

import (
	"net/http"

	"github.com/Kerhoff/giddylist/internal/service"
)

// ---------------------------------------------------------------------------
// Registries
// ---------------------------------------------------------------------------

func (s *Server) handleGetRegistry(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.GetRegistryView(r.Context(), r.PathValue("slug"), viewer(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	var req service.ClaimRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	claim, err := s.svc.ClaimItem(r.Context(), r.PathValue("slug"), req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "claim": claim})
}

func (s *Server) handleCreateRegistry(w http.ResponseWriter, r *http.Request) {
	var req service.RegistryInput
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	id, _ := currentUser(r)
	reg, err := s.svc.CreateRegistry(r.Context(), id, req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]any{"registry": reg})
}

func (s *Server) handleAddRegistryItem(w http.ResponseWriter, r *http.Request) {
	registryID, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid registry id")
		return
	}
	var req service.RegistryItemInput
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	id, _ := currentUser(r)
	item, err := s.svc.AddRegistryItem(r.Context(), id, registryID, req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]any{"item": item})
}

// ---------------------------------------------------------------------------
// Kids
// ---------------------------------------------------------------------------

func (s *Server) handleListKids(w http.ResponseWriter, r *http.Request) {
	id, _ := currentUser(r)
	kids, err := s.svc.ListKids(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"kids": kids})
}

func (s *Server) handleCreateKid(w http.ResponseWriter, r *http.Request) {
	var req service.KidInput
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	id, _ := currentUser(r)
	kid, err := s.svc.CreateKid(r.Context(), id, req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]any{"kid": kid})
}

func (s *Server) handleUpdateKid(w http.ResponseWriter, r *http.Request) {
	kidID, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid kid id")
		return
	}
	var req service.KidInput
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	id, _ := currentUser(r)
	kid, err := s.svc.UpdateKid(r.Context(), id, kidID, req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"kid": kid})
}

func (s *Server) handleDeleteKid(w http.ResponseWriter, r *http.Request) {
	kidID, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid kid id")
		return
	}
	id, _ := currentUser(r)
	if err := s.svc.DeleteKid(r.Context(), id, kidID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleKidWishlist(w http.ResponseWriter, r *http.Request) {
	kidID, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid kid id")
		return
	}
	id, _ := currentUser(r)
	items, err := s.svc.KidWishlist(r.Context(), id, kidID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

// ---------------------------------------------------------------------------
// Wishlist
// ---------------------------------------------------------------------------

func (s *Server) handleAddWishlistItem(w http.ResponseWriter, r *http.Request) {
	var req service.AddItemInput
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	id, _ := currentUser(r)
	item, err := s.svc.AddWishlistItem(r.Context(), id, req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]any{"item": item})
}

func (s *Server) handleRefreshWishlistItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	id, _ := currentUser(r)
	item, err := s.svc.RefreshWishlistItem(r.Context(), id, itemID)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"item": item})
}

func (s *Server) handleDeleteWishlistItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	id, _ := currentUser(r)
	if err := s.svc.DeleteWishlistItem(r.Context(), id, itemID); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

// ---------------------------------------------------------------------------
// Profiles and collections
// ---------------------------------------------------------------------------

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	page, err := s.svc.GetPublicProfile(r.Context(), r.PathValue("username"), viewer(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	id, _ := currentUser(r)
	if err := s.svc.Follow(r.Context(), id, r.PathValue("username")); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"following": true})
}

func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	id, _ := currentUser(r)
	if err := s.svc.Unfollow(r.Context(), id, r.PathValue("username")); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"following": false})
}

func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	collectionID, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid collection id")
		return
	}
	c, err := s.svc.GetCollection(r.Context(), collectionID, viewer(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"collection": c})
}

package api

import (
	"errors"
	"net/http"

	"github.com/Kerhoff/giddylist/internal/service"
	"github.com/Kerhoff/giddylist/internal/storage"
)

type scrapeRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	res, err := s.svc.ScrapeURL(r.Context(), req.URL)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

// multipart overhead on top of the file itself
const uploadSlack = 1 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadBytes+uploadSlack)
	file, _, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.respondError(w, http.StatusBadRequest, "file must be 5MB or smaller")
			return
		}
		s.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	id, _ := currentUser(r)
	url, err := s.svc.UploadImage(r.Context(), id, file)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) handleTrackClick(w http.ResponseWriter, r *http.Request) {
	var req service.ClickInput
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	req.UserID = viewer(r)
	if ref := r.Referer(); ref != "" {
		req.Referrer = &ref
	}
	if ua := r.UserAgent(); ua != "" {
		req.UserAgent = &ua
	}
	if err := s.svc.TrackClick(r.Context(), req); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleTelegramLink(w http.ResponseWriter, r *http.Request) {
	id, _ := currentUser(r)
	code, err := s.svc.CreateTelegramLinkCode(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	resp := map[string]string{
		"code":    code,
		"command": "/start " + code,
	}
	if s.botName != "" {
		resp["deep_link"] = "https://t.me/" + s.botName + "?start=" + code
	}
	s.respondJSON(w, http.StatusOK, resp)
}

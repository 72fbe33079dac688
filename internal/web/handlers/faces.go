package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dwe-corp/facial-auth/internal/authapi"
	"github.com/dwe-corp/facial-auth/internal/faces"
	"github.com/dwe-corp/facial-auth/internal/imaging"
)

// FaceHandler serves the recognition API: recognize, enroll, list and delete.
type FaceHandler struct {
	svc *faces.Service
}

// NewFaceHandler creates a new face handler.
func NewFaceHandler(svc *faces.Service) *FaceHandler {
	return &FaceHandler{svc: svc}
}

// UserPayload mirrors the auth service's user record. ID and the contact
// fields are omitted when the identity could not be resolved.
type UserPayload struct {
	ID     *int   `json:"id,omitempty"`
	Nome   string `json:"nome"`
	Email  string `json:"email,omitempty"`
	Perfil string `json:"perfil,omitempty"`
}

func userPayload(u *authapi.User) *UserPayload {
	if u == nil {
		return nil
	}
	id := u.ID
	return &UserPayload{ID: &id, Nome: u.Nome, Email: u.Email, Perfil: u.Perfil}
}

// RecognizeRequest represents a recognition request.
type RecognizeRequest struct {
	Image string `json:"image"`
}

// RecognizeResponse represents a recognition response.
type RecognizeResponse struct {
	Success    bool         `json:"success"`
	Recognized bool         `json:"recognized"`
	User       *UserPayload `json:"user,omitempty"`
	Message    string       `json:"message"`
}

// Recognize handles POST /recognize. A missing face, a face without an
// extractable encoding, or an unmatched face are all successful negative
// answers, not errors.
func (h *FaceHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	var req RecognizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Image == "" {
		respondError(w, http.StatusBadRequest, "image is required")
		return
	}

	img, err := imaging.DecodeBase64Image(req.Image)
	if err != nil {
		respondError(w, http.StatusBadRequest, "image payload is not a decodable image")
		return
	}

	rec, err := h.svc.Recognize(r.Context(), img)
	if err != nil {
		log.Printf("recognition failed: %v", err)
		respondError(w, http.StatusInternalServerError, "recognition failed")
		return
	}

	switch rec.Outcome {
	case faces.OutcomeNoFace:
		respondJSON(w, http.StatusOK, RecognizeResponse{
			Success: true, Message: "no face detected in image",
		})
	case faces.OutcomeNoEmbedding:
		respondJSON(w, http.StatusOK, RecognizeResponse{
			Success: true, Message: "could not extract face encoding",
		})
	case faces.OutcomeNotRecognized:
		respondJSON(w, http.StatusOK, RecognizeResponse{
			Success: true, Message: "face not recognized",
		})
	case faces.OutcomeMatched:
		user := userPayload(rec.User)
		if user == nil {
			// Matched an enrolled name the auth service could not resolve.
			user = &UserPayload{Nome: rec.Name}
		}
		respondJSON(w, http.StatusOK, RecognizeResponse{
			Success: true, Recognized: true, User: user, Message: "user recognized",
		})
	}
}

// EnrollRequest represents an enrollment request. UserID is a pointer so a
// missing field can be told apart from user id 0.
type EnrollRequest struct {
	Image  string `json:"image"`
	UserID *int   `json:"user_id"`
}

// EnrollResponse represents an enrollment response.
type EnrollResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *UserPayload `json:"user"`
}

// Enroll handles POST /enroll. The user id is resolved against the auth
// service before any face processing happens.
func (h *FaceHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Image == "" {
		respondError(w, http.StatusBadRequest, "image is required")
		return
	}
	if req.UserID == nil {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	img, err := imaging.DecodeBase64Image(req.Image)
	if err != nil {
		respondError(w, http.StatusBadRequest, "image payload is not a decodable image")
		return
	}

	user, err := h.svc.Enroll(r.Context(), img, *req.UserID)
	switch {
	case authapi.IsNotFound(err):
		respondError(w, http.StatusNotFound, fmt.Sprintf("user %d not found", *req.UserID))
		return
	case errors.Is(err, faces.ErrNoFaceDetected):
		respondError(w, http.StatusBadRequest, "no face detected in image")
		return
	case errors.Is(err, faces.ErrNoEmbedding):
		respondError(w, http.StatusBadRequest, "could not extract face encoding")
		return
	case errors.Is(err, faces.ErrBadName):
		respondError(w, http.StatusBadRequest, "user name cannot be enrolled")
		return
	case err != nil:
		log.Printf("enrollment of user %d failed: %v", *req.UserID, err)
		respondError(w, http.StatusInternalServerError, "enrollment failed")
		return
	}

	respondJSON(w, http.StatusOK, EnrollResponse{
		Success: true,
		Message: fmt.Sprintf("face enrolled for %s", user.Nome),
		User:    userPayload(user),
	})
}

// EnrolledUserPayload is one entry of the enrolled users listing.
type EnrolledUserPayload struct {
	ID         *int   `json:"id,omitempty"`
	Nome       string `json:"nome"`
	Email      string `json:"email,omitempty"`
	Perfil     string `json:"perfil,omitempty"`
	FacesCount int    `json:"faces_count"`
}

// EnrolledUsersResponse represents the enrolled users listing.
type EnrolledUsersResponse struct {
	Success bool                  `json:"success"`
	Users   []EnrolledUserPayload `json:"users"`
}

// EnrolledUsers handles GET /enrolled-users.
func (h *FaceHandler) EnrolledUsers(w http.ResponseWriter, r *http.Request) {
	enrolled := h.svc.EnrolledUsers(r.Context())

	users := make([]EnrolledUserPayload, 0, len(enrolled))
	for _, e := range enrolled {
		p := EnrolledUserPayload{Nome: e.Name, FacesCount: e.FacesCount}
		if e.User != nil {
			id := e.User.ID
			p.ID = &id
			p.Nome = e.User.Nome
			p.Email = e.User.Email
			p.Perfil = e.User.Perfil
		}
		users = append(users, p)
	}

	respondJSON(w, http.StatusOK, EnrolledUsersResponse{Success: true, Users: users})
}

// DeleteResponse represents a deletion response.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DeleteUser handles DELETE /delete-user/{name}.
func (h *FaceHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	removed, err := h.svc.Delete(name)
	switch {
	case errors.Is(err, faces.ErrBadName):
		respondError(w, http.StatusBadRequest, "invalid user name")
		return
	case errors.Is(err, faces.ErrNotEnrolled):
		respondError(w, http.StatusNotFound, fmt.Sprintf("user %s is not enrolled", sanitizeForLog(name)))
		return
	case err != nil:
		log.Printf("deleting user %s failed: %v", sanitizeForLog(name), err)
		respondError(w, http.StatusInternalServerError, "deletion failed")
		return
	}

	respondJSON(w, http.StatusOK, DeleteResponse{
		Success: true,
		Message: fmt.Sprintf("removed %d enrolled face(s) for %s", removed, name),
	})
}

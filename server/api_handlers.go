package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/lead-dashboard/agents"
	"github.com/jrsteele09/lead-dashboard/backend"
	"github.com/jrsteele09/lead-dashboard/guard"
	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
	"github.com/jrsteele09/lead-dashboard/leads"
)

const maxUploadBytes = 32 << 20

func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func decodeJSONBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", apperrors.ErrInvalidRequest)
	}
	return nil
}

type sessionResponse struct {
	Authenticated bool            `json:"authenticated"`
	State         string          `json:"state"`
	Agent         agents.Identity `json:"agent"`
	Redirect      string          `json:"redirect,omitempty"`
}

// LoginHandler accepts JSON or a form post. Form posts (and HTMX) get
// redirects; JSON clients get the session back.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app := appFrom(r.Context())

		var creds agents.Credentials
		if isJSONRequest(r) {
			if err := decodeJSONBody(r, &creds); err != nil {
				writeFailure(w, r, err)
				return
			}
		} else {
			if err := r.ParseForm(); err != nil {
				redirectWithError(w, r, guard.PathLogin, "Invalid form submission")
				return
			}
			creds = agents.Credentials{Email: r.FormValue("email"), Password: r.FormValue("password")}
		}

		identity, err := app.Login(r.Context(), creds)
		if err != nil {
			if !isJSONRequest(r) {
				redirectWithError(w, r, guard.PathLogin, loginErrorMessage(err))
				return
			}
			writeFailure(w, r, err)
			return
		}

		if !isJSONRequest(r) {
			redirectSuccess(w, r, guard.PathLanding)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{
			Authenticated: true,
			State:         app.GuardState().String(),
			Agent:         identity,
			Redirect:      guard.PathLanding,
		})
	}
}

func loginErrorMessage(err error) string {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidCredentials):
		return credentialMessage(err)
	case apperrors.Is(err, apperrors.ErrInvalidRequest):
		return validationMessage(err)
	default:
		return "Login failed. Please try again."
	}
}

func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app := appFrom(r.Context())

		var reg agents.Registration
		if isJSONRequest(r) {
			if err := decodeJSONBody(r, &reg); err != nil {
				writeFailure(w, r, err)
				return
			}
		} else {
			if err := r.ParseForm(); err != nil {
				redirectWithError(w, r, guard.PathSignup, "Invalid form submission")
				return
			}
			reg = agents.Registration{
				Name:     r.FormValue("name"),
				Email:    r.FormValue("email"),
				Password: r.FormValue("password"),
			}
		}

		if err := app.Register(r.Context(), reg); err != nil {
			if !isJSONRequest(r) {
				redirectWithError(w, r, guard.PathSignup, loginErrorMessage(err))
				return
			}
			writeFailure(w, r, err)
			return
		}

		if !isJSONRequest(r) {
			redirectSuccess(w, r, guard.PathLogin)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"redirect": guard.PathLogin})
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appFrom(r.Context()).Logout(r.Context())
		if !isJSONRequest(r) && r.Header.Get("Accept") != "application/json" {
			redirectSuccess(w, r, guard.PathLogin)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{State: "UNAUTHENTICATED", Redirect: guard.PathLogin})
	}
}

func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app := appFrom(r.Context())
		session := app.Session()
		writeJSON(w, http.StatusOK, sessionResponse{
			Authenticated: session.Authenticated(),
			State:         app.GuardState().String(),
			Agent:         session.Identity,
		})
	}
}

func (s *Server) CreateLeadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var lead leads.NewLead
		if err := decodeJSONBody(r, &lead); err != nil {
			writeFailure(w, r, err)
			return
		}
		created, err := appFrom(r.Context()).CreateLead(r.Context(), lead)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// UploadHandler accepts a multipart form with leadId, repeated files and a
// documentTypes value per file.
func (s *Server) UploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid upload", false)
			return
		}
		defer r.MultipartForm.RemoveAll()

		headers := r.MultipartForm.File["files"]
		types := r.MultipartForm.Value["documentTypes"]
		if len(headers) == 0 || len(types) != len(headers) {
			writeError(w, http.StatusBadRequest, "each file needs a document type", false)
			return
		}

		upload := backend.Upload{LeadID: r.FormValue("leadId")}
		for i, header := range headers {
			docType, err := leads.ParseDocumentType(types[i])
			if err != nil {
				writeFailure(w, r, err)
				return
			}
			f, err := header.Open()
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid upload", false)
				return
			}
			defer f.Close()
			upload.Files = append(upload.Files, backend.File{Name: header.Filename, Type: docType, Content: f})
		}

		refs, err := appFrom(r.Context()).Upload(r.Context(), upload)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, refs)
	}
}

// DocumentImageHandler proxies a document preview from the backend.
func (s *Server) DocumentImageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		img, err := s.backend.DocumentImage(r.Context(), r.PathValue("documentId"))
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		contentType := img.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(img.Data)
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "private, max-age=300")
		_, _ = w.Write(img.Data)
	}
}

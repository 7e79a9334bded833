package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"interview-coach/internal/application"
)

type turnResponse struct {
	SessionID  string `json:"sessionId"`
	Transcript string `json:"transcript"`
	ReplyText  string `json:"replyText"`
	ReplyAudio string `json:"replyAudio"`
}

type resetRequest struct {
	SessionID string `json:"session_id"`
}

type resetResponse struct {
	SessionID string `json:"sessionId"`
	Cleared   bool   `json:"cleared"`
}

type contextRequest struct {
	SessionID      string `json:"session_id"`
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
}

type contextResponse struct {
	SessionID    string `json:"sessionId"`
	ContextSaved bool   `json:"contextSaved"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Expected multipart form with session_id and audio")
		return
	}
	defer r.MultipartForm.RemoveAll()

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Field required: session_id")
		return
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Field required: audio")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Could not read audio upload")
		return
	}

	result, err := s.coach.Turn(r.Context(), sessionID, audio)
	if errors.Is(err, application.ErrNoSpeech) {
		writeDetail(w, http.StatusBadRequest, "Could not understand audio.")
		return
	}
	if err != nil {
		s.logger.Error("turn failed", "session_id", sessionID, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, turnResponse{
		SessionID:  result.SessionID,
		Transcript: result.Transcript,
		ReplyText:  result.ReplyText,
		ReplyAudio: base64.StdEncoding.EncodeToString(result.ReplyAudio),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid JSON body")
		return
	}

	// Any string is a valid id here, including the empty one.
	s.coach.Reset(req.SessionID)

	writeJSON(w, http.StatusOK, resetResponse{SessionID: req.SessionID, Cleared: true})
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Field required: session_id")
		return
	}

	s.coach.SetContext(req.SessionID, application.InterviewContext{
		ResumeText:     req.ResumeText,
		JobDescription: req.JobDescription,
	})

	writeJSON(w, http.StatusOK, contextResponse{SessionID: req.SessionID, ContextSaved: true})
}

// handleUploadContext is the multipart form of handleContext: optional
// resume and job_description parts carry plain-text files.
func (s *Server) handleUploadContext(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Expected multipart form with session_id")
		return
	}
	defer r.MultipartForm.RemoveAll()

	sessionID := r.FormValue("session_id")
	if strings.TrimSpace(sessionID) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Field required: session_id")
		return
	}

	var ic application.InterviewContext
	for _, part := range []struct {
		field string
		dst   *string
	}{
		{"resume", &ic.ResumeText},
		{"job_description", &ic.JobDescription},
	} {
		text, err := formText(r, part.field)
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		*part.dst = text
	}

	s.coach.SetContext(sessionID, ic)

	writeJSON(w, http.StatusOK, contextResponse{SessionID: sessionID, ContextSaved: true})
}

// formText reads an optional text file part. A missing part is empty text.
func formText(r *http.Request, field string) (string, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("could not read %s upload", field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("could not read %s upload", field)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s must be a UTF-8 text file", field)
	}
	return string(data), nil
}

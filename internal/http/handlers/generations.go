package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"evideo/internal/domain"
	"evideo/internal/generate"
)

type createGenerationReq struct {
	Kind         string                `json:"kind"`
	ProjectHash  string                `json:"project_hash"`
	EmployeeHash string                `json:"employee_hash"`
	ContactHash  string                `json:"contact_hash"`
	Contact      domain.ContactDetails `json:"contact"`
}

// CreateGeneration resolves the project configuration and starts a
// generation. A repeated call while the contact's generation is loading
// returns the running job instead of starting a second one.
func (a *App) CreateGeneration(w http.ResponseWriter, r *http.Request) {
	var body createGenerationReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.fail(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.ProjectHash == "" {
		a.fail(w, http.StatusBadRequest, "project_hash is required")
		return
	}

	project, err := a.Directory.ProjectInfo(r.Context(), body.ProjectHash)
	if err != nil {
		a.Logger.Error().Err(err).Str("project", body.ProjectHash).Msg("project info lookup failed")
		a.fail(w, http.StatusBadGateway, "could not load project configuration")
		return
	}

	job, err := a.Generator.Start(generate.Request{
		Kind:         domain.JobKind(body.Kind),
		Project:      *project,
		EmployeeHash: body.EmployeeHash,
		ContactHash:  body.ContactHash,
		Snapshot:     domain.FormSnapshot{Contact: body.Contact},
	})
	if err != nil {
		a.fail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	a.json(w, http.StatusAccepted, job)
}

func (a *App) GetGeneration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, ok := a.Generator.Job(id)
	if !ok {
		a.fail(w, http.StatusNotFound, "unknown generation")
		return
	}
	a.json(w, http.StatusOK, job)
}

func (a *App) RetryGeneration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := a.Generator.Retry(id)
	if err != nil {
		a.fail(w, http.StatusConflict, err.Error())
		return
	}
	a.json(w, http.StatusAccepted, job)
}

func (a *App) CancelGeneration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := a.Generator.Job(id); !ok {
		a.fail(w, http.StatusNotFound, "unknown generation")
		return
	}
	a.Generator.Cancel(id)
	a.json(w, http.StatusAccepted, map[string]string{"status": "cancelling"})
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"evideo/internal/domain"
	"evideo/internal/generate"
	"evideo/internal/infra"
)

// Generator is the orchestrator surface the API needs.
type Generator interface {
	Start(req generate.Request) (domain.GenerationJob, error)
	Retry(jobID string) (domain.GenerationJob, error)
	Job(jobID string) (domain.GenerationJob, bool)
	Cancel(jobID string)
}

// ProjectDirectory resolves project configuration and employee sessions.
type ProjectDirectory interface {
	ProjectInfo(ctx context.Context, projectHash string) (*domain.ProjectInfo, error)
	Login(ctx context.Context, projectHash, code string) (*domain.Employee, error)
}

type App struct {
	Generator Generator
	Directory ProjectDirectory
	Logger    infra.Logger
}

func NewApp(gen Generator, dir ProjectDirectory, logger infra.Logger) *App {
	return &App{Generator: gen, Directory: dir, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) fail(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, map[string]string{"error": msg})
}

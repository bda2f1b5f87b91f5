// Package generate orchestrates artifact generation: it selects the
// generation path for a job kind, drives the render poll loop or the
// composer, uploads the result, persists the outcome and triggers the
// downstream side effects.
package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"evideo/internal/compose"
	"evideo/internal/domain"
	"evideo/internal/infra"
	"evideo/internal/kvstore"
	"evideo/internal/poll"
	"evideo/internal/render"
	"evideo/internal/storage"
	"evideo/pkg/slug"
)

// RenderClient starts remote render jobs and checks their status.
type RenderClient interface {
	StartRender(ctx context.Context, videoID string, props map[string]any) (string, error)
	PollStatus(ctx context.Context, renderID string) (render.Result, error)
}

// ArtifactComposer renders e-card and NFC card artifacts.
type ArtifactComposer interface {
	Compose(ctx context.Context, in compose.Input) (*compose.Artifact, error)
}

// Uploader pushes finished artifacts to object storage.
type Uploader interface {
	Upload(ctx context.Context, data []byte, fileName string, kind storage.MediaKind, scope storage.Scope) (storage.UploadedFile, error)
}

// Backend is the vendor project backend: the required contact save and the
// best-effort generation beacon.
type Backend interface {
	SaveContact(ctx context.Context, employeeHash, contactHash string, project domain.ProjectInfo, snap domain.FormSnapshot) error
	TrackVideoGenerated(ctx context.Context, subDomain, projectSlug, contactHash string) error
}

// Request describes one generation: which path to take and the session
// context it runs in. The session state is passed explicitly rather than
// read from ambient storage so the orchestrator stays testable.
type Request struct {
	Kind         domain.JobKind
	Project      domain.ProjectInfo
	EmployeeHash string
	ContactHash  string
	Snapshot     domain.FormSnapshot
}

// Options wires the orchestrator's collaborators.
type Options struct {
	Store    kvstore.Store
	Render   RenderClient
	Composer ArtifactComposer
	Uploads  Uploader
	Backend  Backend
	Logger   *infra.Logger
	Poll     poll.Config
}

type jobState struct {
	job    domain.GenerationJob
	req    Request
	cancel context.CancelFunc
	done   chan struct{}
}

// Orchestrator runs generations. One generation per contact may be in
// flight at a time; re-invoking while loading is a no-op that returns the
// running job.
type Orchestrator struct {
	store    kvstore.Store
	render   RenderClient
	composer ArtifactComposer
	uploads  Uploader
	backend  Backend
	logger   *infra.Logger
	poll     poll.Config

	rootCtx    context.Context
	rootCancel context.CancelFunc

	mu       sync.Mutex
	jobs     map[string]*jobState
	inFlight map[string]string // contact hash -> job id
}

// New constructs an orchestrator. Close cancels all in-flight generations.
func New(opts Options) (*Orchestrator, error) {
	if opts.Store == nil {
		return nil, errors.New("generate: store is required")
	}
	if opts.Render == nil || opts.Composer == nil || opts.Uploads == nil || opts.Backend == nil {
		return nil, errors.New("generate: all collaborators are required")
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	pollCfg := opts.Poll
	if pollCfg.Interval <= 0 {
		pollCfg.Interval = 15 * time.Second
	}
	if pollCfg.MaxAttempts <= 0 {
		pollCfg.MaxAttempts = 20
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		store:      opts.Store,
		render:     opts.Render,
		composer:   opts.Composer,
		uploads:    opts.Uploads,
		backend:    opts.Backend,
		logger:     logger,
		poll:       pollCfg,
		rootCtx:    ctx,
		rootCancel: cancel,
		jobs:       make(map[string]*jobState),
		inFlight:   make(map[string]string),
	}, nil
}

// Close cancels every in-flight generation.
func (o *Orchestrator) Close() { o.rootCancel() }

// Start begins a generation. If one is already loading for the same
// contact the running job is returned unchanged: no second render job is
// submitted.
func (o *Orchestrator) Start(req Request) (domain.GenerationJob, error) {
	if !req.Kind.Valid() {
		return domain.GenerationJob{}, fmt.Errorf("generate: unknown job kind %q", req.Kind)
	}
	if strings.TrimSpace(req.EmployeeHash) == "" || strings.TrimSpace(req.ContactHash) == "" {
		return domain.GenerationJob{}, errors.New("generate: employee and contact are required")
	}
	if _, err := req.Project.DefaultArtwork(); err != nil {
		return domain.GenerationJob{}, err
	}

	o.mu.Lock()
	if id, ok := o.inFlight[req.ContactHash]; ok {
		job := o.jobs[id].job
		o.mu.Unlock()
		return job, nil
	}

	now := time.Now().UTC()
	ctx, cancel := context.WithCancel(o.rootCtx)
	state := &jobState{
		job: domain.GenerationJob{
			ID:        uuid.NewString(),
			Kind:      req.Kind,
			Status:    domain.JobStatusLoading,
			CreatedAt: now,
			UpdatedAt: now,
		},
		req:    req,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	o.jobs[state.job.ID] = state
	o.inFlight[req.ContactHash] = state.job.ID
	job := state.job
	o.mu.Unlock()

	o.persistJob(job)
	go o.run(ctx, state)
	return job, nil
}

// Retry re-enters loading for a failed generation and re-runs the same
// path from scratch. Only jobs in the error state can be retried.
func (o *Orchestrator) Retry(jobID string) (domain.GenerationJob, error) {
	o.mu.Lock()
	state, ok := o.jobs[jobID]
	if !ok {
		o.mu.Unlock()
		return domain.GenerationJob{}, fmt.Errorf("generate: unknown job %q", jobID)
	}
	if state.job.Status != domain.JobStatusError {
		job := state.job
		o.mu.Unlock()
		return job, fmt.Errorf("generate: job %q is %s, only failed jobs can be retried", jobID, job.Status)
	}
	if _, busy := o.inFlight[state.req.ContactHash]; busy {
		job := state.job
		o.mu.Unlock()
		return job, nil
	}

	ctx, cancel := context.WithCancel(o.rootCtx)
	state.job.Status = domain.JobStatusLoading
	state.job.Attempts = 0
	state.job.ErrorMessage = ""
	state.job.UpdatedAt = time.Now().UTC()
	state.cancel = cancel
	state.done = make(chan struct{})
	o.inFlight[state.req.ContactHash] = jobID
	job := state.job
	o.mu.Unlock()

	o.persistJob(job)
	go o.run(ctx, state)
	return job, nil
}

// Job returns a snapshot of a job's current state.
func (o *Orchestrator) Job(jobID string) (domain.GenerationJob, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	state, ok := o.jobs[jobID]
	if !ok {
		return domain.GenerationJob{}, false
	}
	return state.job, true
}

// Cancel stops an in-flight generation. Cancellation suppresses downstream
// writes from the abandoned attempt.
func (o *Orchestrator) Cancel(jobID string) {
	o.mu.Lock()
	state, ok := o.jobs[jobID]
	o.mu.Unlock()
	if ok && state.cancel != nil {
		state.cancel()
	}
}

// Await blocks until the job reaches a terminal state or ctx expires.
func (o *Orchestrator) Await(ctx context.Context, jobID string) (domain.GenerationJob, error) {
	o.mu.Lock()
	state, ok := o.jobs[jobID]
	o.mu.Unlock()
	if !ok {
		return domain.GenerationJob{}, fmt.Errorf("generate: unknown job %q", jobID)
	}
	select {
	case <-ctx.Done():
		return domain.GenerationJob{}, ctx.Err()
	case <-state.done:
	}
	job, _ := o.Job(jobID)
	return job, nil
}

func (o *Orchestrator) run(ctx context.Context, state *jobState) {
	o.mu.Lock()
	done := state.done
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		if o.inFlight[state.req.ContactHash] == state.job.ID {
			delete(o.inFlight, state.req.ContactHash)
		}
		o.mu.Unlock()
		close(done)
	}()

	url, err := o.execute(ctx, state)
	if err == nil {
		err = o.finish(ctx, state, url)
	}
	if err != nil {
		o.fail(state, err)
		return
	}

	o.mu.Lock()
	state.job.Status = domain.JobStatusSuccess
	state.job.ArtifactURL = url
	state.job.ErrorMessage = ""
	state.job.UpdatedAt = time.Now().UTC()
	job := state.job
	o.mu.Unlock()
	o.persistJob(job)

	o.logger.Info().
		Str("job_id", job.ID).
		Str("kind", string(job.Kind)).
		Int("attempts", job.Attempts).
		Msg("generate: finished")
}

func (o *Orchestrator) execute(ctx context.Context, state *jobState) (string, error) {
	switch state.req.Kind {
	case domain.JobKindTemplateVideo:
		return o.runTemplateVideo(ctx, state)
	default:
		return o.runCardPath(ctx, state)
	}
}

// runTemplateVideo submits one render job and polls it at a fixed cadence
// until the renderer reports a finished artifact or the attempt budget
// runs out.
func (o *Orchestrator) runTemplateVideo(ctx context.Context, state *jobState) (string, error) {
	artwork, err := state.req.Project.DefaultArtwork()
	if err != nil {
		return "", err
	}

	renderID, err := o.render.StartRender(ctx, artwork.Name, renderProps(state.req.Snapshot.Contact))
	if err != nil {
		return "", err
	}

	var videoURL string
	attempts, err := poll.Until(ctx, o.poll, func(ctx context.Context) (bool, error) {
		res, err := o.render.PollStatus(ctx, renderID)
		if err != nil {
			return false, err
		}
		o.recordAttempt(state)
		if res.Terminal() {
			videoURL = res.URL
			return true, nil
		}
		return false, nil
	})
	if errors.Is(err, poll.ErrExhausted) {
		return "", fmt.Errorf("%w after %d attempts", domain.ErrRenderTimeout, attempts)
	}
	if err != nil {
		return "", err
	}
	return videoURL, nil
}

// runCardPath composes the artifact synchronously and uploads it.
func (o *Orchestrator) runCardPath(ctx context.Context, state *jobState) (string, error) {
	req := state.req
	artwork, err := req.Project.DefaultArtwork()
	if err != nil {
		return "", err
	}
	contact := req.Snapshot.Contact

	in := compose.Input{
		TemplateURL: artwork.Thumbnail,
		PhotoURL:    contact.Photo,
		Photo:       artwork.Settings.Photo,
		Output:      compose.OutputRaster,
	}
	fileName := slug.Make(contact.Name) + "-eCard.png"
	media := storage.MediaImage

	switch req.Kind {
	case domain.JobKindECardImage:
		in.Fields = compose.ECardFields(artwork.Settings, contact)
	case domain.JobKindECardPDF:
		in.Fields = compose.ECardFields(artwork.Settings, contact)
		in.Output = compose.OutputPDF
		in.InsertURL = artwork.Video
		fileName = slug.Make(contact.Name) + "-eCard.pdf"
		media = storage.MediaPDF
	case domain.JobKindNFCCard:
		in.TemplateURL = compose.NFCBackground(artwork, contact)
		in.Fields = compose.NFCFields(contact)
	}

	artifact, err := o.composer.Compose(ctx, in)
	if err != nil {
		return "", err
	}

	_, projectSlug, err := req.Project.DomainAndSlug()
	if err != nil {
		return "", err
	}
	uploaded, err := o.uploads.Upload(ctx, artifact.Data, fileName, media, storage.Scope{
		ProjectSlug: projectSlug,
		EmployeeID:  req.EmployeeHash,
	})
	if err != nil {
		return "", err
	}
	return uploaded.PublicURL, nil
}

// finish persists the updated snapshot and runs the downstream side
// effects: the required contact save and the best-effort beacon. A failed
// contact save restores the prior snapshot so the stored state never
// carries an artifact URL for a failed generation.
func (o *Orchestrator) finish(ctx context.Context, state *jobState, url string) error {
	req := state.req
	key := snapshotKey(req.ContactHash)

	prior, hadPrior, err := o.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("generate: read prior snapshot: %w", err)
	}

	snap := req.Snapshot
	snap.VideoDownloadURL = url
	if err := kvstore.PutJSON(ctx, o.store, key, snap); err != nil {
		return err
	}

	if err := o.backend.SaveContact(ctx, req.EmployeeHash, req.ContactHash, req.Project, snap); err != nil {
		o.restoreSnapshot(key, prior, hadPrior)
		return err
	}

	if subDomain, projectSlug, slugErr := req.Project.DomainAndSlug(); slugErr == nil {
		if trackErr := o.backend.TrackVideoGenerated(ctx, subDomain, projectSlug, req.ContactHash); trackErr != nil {
			o.logger.Warn().Err(trackErr).Str("job_id", state.job.ID).Msg("generate: tracking beacon failed")
		}
	}
	return nil
}

func (o *Orchestrator) restoreSnapshot(key string, prior []byte, hadPrior bool) {
	// Cleanup runs on the root context: it must proceed even when the
	// generation's own context is already cancelled.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(o.rootCtx), 5*time.Second)
	defer cancel()
	var err error
	if hadPrior {
		err = o.store.Set(ctx, key, prior)
	} else {
		err = o.store.Remove(ctx, key)
	}
	if err != nil {
		o.logger.Error().Err(err).Str("key", key).Msg("generate: snapshot restore failed")
	}
}

func (o *Orchestrator) fail(state *jobState, err error) {
	genErr := &domain.GenerationError{Message: userMessage(err), Err: err}

	o.mu.Lock()
	state.job.Status = domain.JobStatusError
	state.job.ErrorMessage = genErr.Message
	state.job.UpdatedAt = time.Now().UTC()
	job := state.job
	o.mu.Unlock()
	o.persistJob(job)

	o.logger.Error().Err(err).
		Str("job_id", job.ID).
		Str("kind", string(job.Kind)).
		Int("attempts", job.Attempts).
		Msg("generate: failed")
}

func (o *Orchestrator) recordAttempt(state *jobState) {
	o.mu.Lock()
	state.job.Attempts++
	state.job.UpdatedAt = time.Now().UTC()
	o.mu.Unlock()
}

// persistJob writes the job record to the store so a restart can show
// last-known state. Best-effort: the job's in-memory state is the source
// of truth while the process lives.
func (o *Orchestrator) persistJob(job domain.GenerationJob) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(o.rootCtx), 5*time.Second)
	defer cancel()
	if err := kvstore.PutJSON(ctx, o.store, jobKey(job.ID), job); err != nil {
		o.logger.Warn().Err(err).Str("job_id", job.ID).Msg("generate: persist job record failed")
	}
}

func snapshotKey(contactHash string) string { return "formData:" + contactHash }

func jobKey(jobID string) string { return "generation:" + jobID }

// renderProps flattens the contact record into the renderer's opaque
// property bag.
func renderProps(c domain.ContactDetails) map[string]any {
	props := map[string]any{}
	for _, name := range []string{"name", "speciality", "clinic_name", "clinic_address", "contact_no", "email", "photo"} {
		if v := c.Field(name); v != "" {
			props[name] = v
		}
	}
	for name, v := range c.Values {
		if v != "" {
			props[name] = v
		}
	}
	return props
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrRenderTimeout):
		return "Your video took too long to render. Please try again."
	case errors.Is(err, domain.ErrSubmission):
		return "We could not start the video render. Please try again."
	case errors.Is(err, domain.ErrCompose):
		return "We could not compose your card. Please try again."
	case errors.Is(err, domain.ErrUpload):
		return "We could not upload the generated file. Please try again."
	case errors.Is(err, context.Canceled):
		return "Generation was cancelled."
	}
	return "Generation failed. Please try again."
}

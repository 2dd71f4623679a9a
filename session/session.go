// Package session implements the upload session: a single-use state machine
// that resolves the listing category, archives the input files, submits the
// listing and waits for the inventory to sync.
//
// A session runs on its own goroutine once sent. The three requests are
// strictly sequential and every outcome, success or failure, ends in
// types.StateComplete with the error kind recording what happened.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pithecene-io/mpub/archive"
	"github.com/pithecene-io/mpub/iox"
	"github.com/pithecene-io/mpub/log"
	"github.com/pithecene-io/mpub/marketplace"
	"github.com/pithecene-io/mpub/metrics"
	"github.com/pithecene-io/mpub/types"
)

// Defaults applied by New.
const (
	DefaultRequestTimeout  = 10 * time.Second
	DefaultUploadTimeout   = 5 * time.Minute
	DefaultFixedCategoryID = 5
)

// CategoryMode selects which category id is submitted with the listing.
type CategoryMode string

const (
	// CategoryModeResolved submits the id found in the category list.
	CategoryModeResolved CategoryMode = "resolved"
	// CategoryModeFixed still resolves the category but submits
	// FixedCategoryID, as older clients did.
	CategoryModeFixed CategoryMode = "fixed"
)

// ParseCategoryMode parses a mode name. Empty means resolved.
func ParseCategoryMode(s string) (CategoryMode, error) {
	switch CategoryMode(s) {
	case "", CategoryModeResolved:
		return CategoryModeResolved, nil
	case CategoryModeFixed:
		return CategoryModeFixed, nil
	default:
		return "", fmt.Errorf("invalid category mode %q (valid: resolved, fixed)", s)
	}
}

// API is the marketplace surface used by a session.
// *marketplace.Client implements it.
type API interface {
	FetchCategories(ctx context.Context) ([]byte, error)
	SubmitListing(ctx context.Context, id marketplace.ItemID, listing marketplace.Listing, progress iox.ProgressFunc) (*marketplace.SubmitResult, error)
	SyncInventory(ctx context.Context) ([]byte, error)
}

// Config configures a single session. Listing fields are fixed for the
// session's lifetime.
type Config struct {
	// Title is the listing title.
	Title string
	// Description is the listing description.
	Description string
	// RootFile is the base name of the archive entry that loads the asset.
	RootFile string
	// ItemID selects update (non-zero) or create (zero).
	ItemID marketplace.ItemID
	// Files are the archive inputs, in order. Must be non-empty.
	Files []string
	// License is the license code submitted with the listing.
	License int

	// Category is the category name to resolve (default "Avatars").
	Category string
	// CategoryMode selects the submitted category id (default resolved).
	CategoryMode CategoryMode
	// FixedCategoryID is submitted in fixed mode (default 5).
	FixedCategoryID int

	// RequestTimeout bounds the category and inventory requests.
	RequestTimeout time.Duration
	// UploadTimeout bounds the listing request.
	UploadTimeout time.Duration

	// API performs the marketplace requests (required).
	API API
	// Archiver builds the archive. If nil, a ZipArchiver over local files is used.
	Archiver archive.Archiver
	// Observer receives notifications. Optional.
	Observer Observer

	// SessionID overrides the generated session id.
	SessionID string
	// LogOutput receives structured logs. Defaults to os.Stderr.
	LogOutput io.Writer
	// Collector records session metrics. If nil, one is created.
	Collector *metrics.Collector
}

// Result is the outcome of a completed session.
type Result struct {
	// Meta is the session identity.
	Meta types.SessionMeta
	// State is always StateComplete.
	State types.State
	// ErrorKind is ErrorNone on success.
	ErrorKind types.ErrorKind
	// Err is the terminal error, nil on success.
	Err error
	// CategoryID is the id submitted with the listing, 0 if never submitted.
	CategoryID int
	// Method and Path identify the listing request, empty if never issued.
	Method string
	Path   string
	// Status is the listing response status, 0 if none arrived.
	Status int
	// ResponseData is the listing response body.
	ResponseData []byte
	// Entries and Skipped describe the archive.
	Entries []archive.Entry
	Skipped []archive.Skipped
	// ArchiveBytes is the size of the archive blob.
	ArchiveBytes int64
	// StartedAt and Duration time the session.
	StartedAt time.Time
	Duration  time.Duration
	// Metrics is the final metrics snapshot.
	Metrics metrics.Snapshot
}

// Success reports whether the session completed without error.
func (r *Result) Success() bool {
	return r.ErrorKind == types.ErrorNone
}

// Session is one upload. It is single-use: Send may be called once.
// Accessors are safe for concurrent use.
type Session struct {
	cfg       Config
	meta      types.SessionMeta
	logger    *log.Logger
	collector *metrics.Collector
	observer  Observer

	done chan struct{}

	mu           sync.Mutex
	state        types.State
	err          *Error
	cancel       context.CancelFunc
	categoryID   int
	archive      *archive.Archive
	submit       *marketplace.SubmitResult
	responseData []byte
	startedAt    time.Time
	result       *Result
}

// New validates cfg, applies defaults and returns an idle session.
func New(cfg Config) (*Session, error) {
	if cfg.API == nil {
		return nil, errors.New("session API is required")
	}
	if len(cfg.Files) == 0 {
		return nil, errors.New("at least one file is required")
	}
	if cfg.Title == "" {
		return nil, errors.New("title is required")
	}
	if cfg.RootFile == "" {
		return nil, errors.New("root file is required")
	}

	mode, err := ParseCategoryMode(string(cfg.CategoryMode))
	if err != nil {
		return nil, err
	}
	cfg.CategoryMode = mode
	if cfg.Category == "" {
		cfg.Category = marketplace.DefaultCategoryName
	}
	if cfg.FixedCategoryID == 0 {
		cfg.FixedCategoryID = DefaultFixedCategoryID
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = DefaultUploadTimeout
	}
	if cfg.Archiver == nil {
		cfg.Archiver = &archive.ZipArchiver{}
	}
	cfg.ItemID = marketplace.ParseItemID(string(cfg.ItemID))
	cfg.Files = append([]string(nil), cfg.Files...)

	meta := types.SessionMeta{
		SessionID: cfg.SessionID,
		Operation: types.OperationCreate,
		Title:     cfg.Title,
	}
	if meta.SessionID == "" {
		meta.SessionID = uuid.NewString()
	}
	if !cfg.ItemID.IsZero() {
		id := cfg.ItemID.String()
		meta.Operation = types.OperationUpdate
		meta.ItemID = &id
	}
	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session metadata: %w", err)
	}

	logger := log.NewLogger(&meta)
	if cfg.LogOutput != nil {
		logger = logger.WithOutput(cfg.LogOutput)
	}

	collector := cfg.Collector
	if collector == nil {
		collector = metrics.NewCollector(meta.SessionID, string(meta.Operation), string(cfg.CategoryMode))
	}

	observer := cfg.Observer
	if observer == nil {
		observer = ObserverFuncs{}
	}

	return &Session{
		cfg:       cfg,
		meta:      meta,
		logger:    logger,
		collector: collector,
		observer:  observer,
		done:      make(chan struct{}),
		state:     types.StateIdle,
	}, nil
}

// Meta returns the session identity.
func (s *Session) Meta() types.SessionMeta { return s.meta }

// Send starts the workflow on a new goroutine and returns immediately.
// Cancelling ctx aborts the session. Send on a session that is not idle
// returns ErrAlreadyStarted and does nothing.
func (s *Session) Send(ctx context.Context) error {
	s.mu.Lock()
	if s.state != types.StateIdle || s.cancel != nil {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.startedAt = time.Now()
	s.mu.Unlock()

	go s.loop(runCtx, cancel)
	return nil
}

// Run sends the session and blocks until it completes.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	if err := s.Send(ctx); err != nil {
		return nil, err
	}
	<-s.done
	return s.Result(), nil
}

// Done is closed after the session completes and Completed has been delivered.
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait blocks until the session completes or ctx is done.
func (s *Session) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-s.done:
		return s.Result(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel aborts a running session. It is a no-op before Send and after
// completion.
func (s *Session) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// State returns the current state.
func (s *Session) State() types.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the terminal error, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		return nil
	}
	return s.err
}

// ErrorKind returns the current error kind.
func (s *Session) ErrorKind() types.ErrorKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		return types.ErrorNone
	}
	return s.err.Kind
}

// ResponseData returns a copy of the last listing response body.
func (s *Session) ResponseData() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.responseData...)
}

// Result returns the outcome, or nil while the session is running.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// loop is the executor: it feeds each event through Transition, applies the
// new state and performs the resulting effect until the session completes.
func (s *Session) loop(ctx context.Context, cancel context.CancelFunc) {
	defer close(s.done)
	defer cancel()

	s.collector.IncSessionStarted()
	s.logger.Info("starting upload session", map[string]any{
		"title":         s.cfg.Title,
		"files":         len(s.cfg.Files),
		"category":      s.cfg.Category,
		"category_mode": string(s.cfg.CategoryMode),
	})

	var ev Event = Started{}
	for {
		from := s.State()
		next, effect, err := Transition(from, ev)
		if err != nil {
			s.logger.Error("state machine rejected event", map[string]any{"error": err.Error()})
			ev = Failed{Err: &Error{Kind: types.ErrorUnknown, Op: "transition", Err: err}}
			continue
		}

		s.apply(ev, next)
		if next != from {
			s.observer.StateChanged(from, next)
		}
		if next.IsTerminal() {
			s.finish()
			return
		}

		if err := ctx.Err(); err != nil {
			ev = Failed{Err: &Error{Kind: types.ErrorCancelled, Op: effect.Op(), Err: err}}
			continue
		}
		ev = s.perform(ctx, effect)
	}
}

// apply records the event's data and the new state.
func (s *Session) apply(ev Event, next types.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e := ev.(type) {
	case CategoryResolved:
		s.categoryID = e.ID
	case ArchiveBuilt:
		s.archive = e.Archive
	case Failed:
		if s.err == nil {
			s.err = e.Err
		}
	}
	s.state = next
}

func (s *Session) perform(ctx context.Context, effect Effect) Event {
	switch effect {
	case EffectFetchCategory:
		return s.fetchCategory(ctx)
	case EffectBuildArchive:
		return s.buildArchive(ctx)
	case EffectUpload:
		return s.upload(ctx)
	case EffectSyncInventory:
		return s.syncInventory(ctx)
	default:
		return Failed{Err: &Error{Kind: types.ErrorUnknown, Op: effect.Op(), Err: fmt.Errorf("no handler for effect %d", effect)}}
	}
}

func (s *Session) fetchCategory(ctx context.Context) Event {
	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	s.collector.IncRequestIssued()
	body, err := s.cfg.API.FetchCategories(reqCtx)
	if err != nil {
		s.collector.IncRequestFailed()
		return s.fail(ctx, OpFetchCategory, err)
	}

	id, err := marketplace.ResolveCategoryID(body, s.cfg.Category)
	if err != nil {
		return s.fail(ctx, OpFetchCategory, err)
	}

	s.logger.Debug("category resolved", map[string]any{"category": s.cfg.Category, "category_id": id})
	return CategoryResolved{ID: id}
}

func (s *Session) buildArchive(ctx context.Context) Event {
	a, err := s.cfg.Archiver.Build(ctx, s.cfg.Files)
	if err != nil {
		return s.fail(ctx, OpBuildArchive, err)
	}

	for _, sk := range a.Skipped {
		s.logger.Warn("skipping unreadable file", map[string]any{
			"path":  sk.Path,
			"kind":  string(types.ErrorFileReadSkipped),
			"error": sk.Err.Error(),
		})
	}
	for _, name := range a.Duplicates() {
		s.logger.Warn("duplicate archive entry", map[string]any{"name": name})
	}
	if !a.Has(s.cfg.RootFile) {
		s.logger.Warn("root file not present in archive", map[string]any{"root_file": s.cfg.RootFile})
	}

	s.collector.RecordArchive(len(a.Entries), len(a.Skipped), int64(len(a.Data)))
	s.logger.Info("archive built", map[string]any{
		"entries": len(a.Entries),
		"skipped": len(a.Skipped),
		"bytes":   len(a.Data),
	})
	return ArchiveBuilt{Archive: a}
}

// submittedCategoryIDLocked returns the category id sent with the listing.
// s.mu must be held.
func (s *Session) submittedCategoryIDLocked() int {
	if s.cfg.CategoryMode == CategoryModeFixed {
		return s.cfg.FixedCategoryID
	}
	return s.categoryID
}

type submitOutcome struct {
	res *marketplace.SubmitResult
	err error
}

// upload submits the listing. The transport reads the body on its own
// goroutine; progress is handed back over a channel so the observer is only
// ever called from the session goroutine, and stop releases any late
// callback once the request has returned.
func (s *Session) upload(ctx context.Context) Event {
	s.mu.Lock()
	data := s.archive.Data
	categoryID := s.submittedCategoryIDLocked()
	s.mu.Unlock()

	listing := marketplace.NewListing(
		s.cfg.Title,
		s.cfg.Description,
		s.cfg.RootFile,
		[]int{categoryID},
		s.cfg.License,
		data,
	)

	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.UploadTimeout)
	defer cancel()

	progress := make(chan [2]int64)
	stop := make(chan struct{})
	outcome := make(chan submitOutcome, 1)

	s.collector.IncRequestIssued()
	go func() {
		res, err := s.cfg.API.SubmitListing(reqCtx, s.cfg.ItemID, listing, func(sent, total int64) {
			select {
			case progress <- [2]int64{sent, total}:
			case <-stop:
			}
		})
		outcome <- submitOutcome{res: res, err: err}
	}()

	var last int64
	var out submitOutcome
wait:
	for {
		select {
		case p := <-progress:
			sent, total := p[0], p[1]
			if sent < last || sent > total {
				continue
			}
			last = sent
			s.collector.ObserveUploaded(sent)
			s.observer.UploadProgress(sent, total)
		case out = <-outcome:
			close(stop)
			break wait
		}
	}

	if out.res != nil {
		s.collector.SetPayloadBytes(out.res.PayloadBytes)
		s.mu.Lock()
		s.submit = out.res
		s.responseData = out.res.Body
		s.mu.Unlock()
	}
	if out.err != nil {
		s.collector.IncRequestFailed()
		return s.fail(ctx, OpUpload, out.err)
	}

	s.logger.Info("listing submitted", map[string]any{
		"method": out.res.Method,
		"path":   out.res.Path,
		"status": out.res.Status,
	})
	return UploadFinished{Body: out.res.Body}
}

func (s *Session) syncInventory(ctx context.Context) Event {
	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	s.collector.IncRequestIssued()
	if _, err := s.cfg.API.SyncInventory(reqCtx); err != nil {
		s.collector.IncRequestFailed()
		return s.fail(ctx, OpSyncInventory, err)
	}
	return InventorySynced{}
}

func (s *Session) fail(ctx context.Context, op string, err error) Event {
	e := classify(ctx, op, err)
	s.logger.Error("session step failed", map[string]any{
		"op":    op,
		"kind":  string(e.Kind),
		"error": err.Error(),
	})
	return Failed{Err: e}
}

// finish builds the result and delivers the completion notification.
func (s *Session) finish() {
	s.mu.Lock()
	kind := types.ErrorNone
	var resErr error
	if s.err != nil {
		kind = s.err.Kind
		resErr = s.err
	}
	s.mu.Unlock()

	switch {
	case kind == types.ErrorNone:
		s.collector.IncSessionSucceeded()
	case kind == types.ErrorCancelled:
		s.collector.IncSessionCancelled()
	default:
		s.collector.IncSessionFailed(string(kind))
	}

	s.mu.Lock()
	res := &Result{
		Meta:         s.meta,
		State:        s.state,
		ErrorKind:    kind,
		Err:          resErr,
		ResponseData: append([]byte(nil), s.responseData...),
		StartedAt:    s.startedAt,
		Duration:     time.Since(s.startedAt),
	}
	if s.archive != nil {
		res.Entries = s.archive.Entries
		res.Skipped = s.archive.Skipped
		res.ArchiveBytes = int64(len(s.archive.Data))
	}
	if s.submit != nil {
		res.Method = s.submit.Method
		res.Path = s.submit.Path
		res.Status = s.submit.Status
		res.CategoryID = s.submittedCategoryIDLocked()
	}
	res.Metrics = s.collector.Snapshot()
	s.result = res
	s.mu.Unlock()

	fields := map[string]any{
		"error_kind":  string(kind),
		"duration_ms": res.Duration.Milliseconds(),
	}
	if resErr != nil {
		fields["error"] = resErr.Error()
		s.logger.Warn("upload session failed", fields)
	} else {
		s.logger.Info("upload session complete", fields)
	}

	s.observer.Completed(res)
}

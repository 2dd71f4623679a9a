package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mpub/adapter"
	redisadapter "github.com/pithecene-io/mpub/adapter/redis"
	"github.com/pithecene-io/mpub/adapter/webhook"
	"github.com/pithecene-io/mpub/archive"
	"github.com/pithecene-io/mpub/cli/config"
	"github.com/pithecene-io/mpub/cli/render"
	"github.com/pithecene-io/mpub/cli/tui"
	"github.com/pithecene-io/mpub/log"
	"github.com/pithecene-io/mpub/marketplace"
	"github.com/pithecene-io/mpub/session"
	"github.com/pithecene-io/mpub/source"
	"github.com/pithecene-io/mpub/types"
)

// Exit codes for upload.
const (
	exitSuccess      = 0
	exitFailed       = 1
	exitInvalidInput = 2
	exitCancelled    = 3
)

// UploadCommand returns the upload command, the only command that writes
// to the marketplace.
func UploadCommand() *cli.Command {
	flags := []cli.Flag{
		// Listing flags
		&cli.StringFlag{
			Name:  "title",
			Usage: "Listing title (required)",
		},
		&cli.StringFlag{
			Name:  "description",
			Usage: "Listing description",
		},
		&cli.StringFlag{
			Name:  "root-file",
			Usage: "Archive entry that loads the asset (required)",
		},
		&cli.StringFlag{
			Name:  "item-id",
			Usage: "Existing listing id to update (omit to create)",
		},
		&cli.StringFlag{
			Name:  "category",
			Usage: "Category name to resolve",
			Value: marketplace.DefaultCategoryName,
		},
		&cli.StringFlag{
			Name:  "category-mode",
			Usage: "Submitted category id: resolved or fixed",
			Value: string(session.CategoryModeResolved),
		},
		&cli.IntFlag{
			Name:  "license",
			Usage: "License code",
		},
		// Transfer flags
		&cli.DurationFlag{
			Name:  "upload-timeout",
			Usage: "Timeout for the listing upload request",
		},
		&cli.Int64Flag{
			Name:  "max-archive-bytes",
			Usage: "Maximum archive size in bytes (0 = no limit)",
		},
		// S3 input flags
		&cli.StringFlag{
			Name:  "s3-region",
			Usage: "AWS region for s3:// inputs (optional, uses default chain)",
		},
		&cli.StringFlag{
			Name:  "s3-endpoint",
			Usage: "Custom endpoint for S3-compatible providers",
		},
		&cli.BoolFlag{
			Name:  "s3-path-style",
			Usage: "Force path-style S3 addressing",
		},
		// Adapter flags
		&cli.StringFlag{
			Name:  "adapter",
			Usage: "Completion adapter: webhook or redis",
		},
		&cli.StringFlag{
			Name:  "adapter-url",
			Usage: "Webhook endpoint or Redis URL",
		},
		&cli.StringFlag{
			Name:  "adapter-channel",
			Usage: "Redis channel (redis adapter)",
		},
		&cli.StringFlag{
			Name:  "adapter-encoding",
			Usage: "Redis payload encoding: json or msgpack",
		},
		&cli.IntFlag{
			Name:  "adapter-retries",
			Usage: "Adapter retry attempts",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "Suppress result output",
		},
	}
	flags = append(flags, APIFlags()...)
	flags = append(flags, OutputFlags()...)

	return &cli.Command{
		Name:      "upload",
		Usage:     "Archive files and publish them as a marketplace listing",
		ArgsUsage: "FILE...",
		Flags:     flags,
		Action:    uploadAction,
	}
}

// uploadChoice holds the resolved upload configuration.
type uploadChoice struct {
	api           apiChoice
	uploadTimeout time.Duration

	title           string
	description     string
	rootFile        string
	itemID          string
	files           []string
	license         int
	category        string
	categoryMode    session.CategoryMode
	fixedCategoryID int
	maxArchiveBytes int64

	s3      source.S3Config
	adapter adapterChoice

	tui   bool
	quiet bool
}

// adapterChoice holds resolved completion adapter settings.
type adapterChoice struct {
	kind     string
	url      string
	channel  string
	encoding string
	headers  map[string]string
	timeout  time.Duration
	retries  int
}

// resolveUploadChoice merges flags over the config file and validates the
// result. Every error it returns is an input error.
func resolveUploadChoice(c *cli.Context, cfg *config.Config) (*uploadChoice, error) {
	choice := &uploadChoice{
		api:             resolveAPIChoice(c, cfg),
		uploadTimeout:   resolveDuration(c, "upload-timeout", cfg.API.UploadTimeout),
		title:           c.String("title"),
		description:     c.String("description"),
		rootFile:        c.String("root-file"),
		itemID:          c.String("item-id"),
		files:           c.Args().Slice(),
		license:         resolveInt(c, "license", cfg.Listing.License),
		category:        resolveString(c, "category", cfg.Listing.Category),
		fixedCategoryID: cfg.Listing.FixedCategoryID,
		maxArchiveBytes: resolveInt64(c, "max-archive-bytes", cfg.Archive.MaxBytes),
		s3: source.S3Config{
			Region:       resolveString(c, "s3-region", cfg.S3.Region),
			Endpoint:     resolveString(c, "s3-endpoint", cfg.S3.Endpoint),
			UsePathStyle: resolveBool(c, "s3-path-style", cfg.S3.PathStyle),
		},
		adapter: adapterChoice{
			kind:     resolveString(c, "adapter", cfg.Adapter.Type),
			url:      resolveString(c, "adapter-url", cfg.Adapter.URL),
			channel:  resolveString(c, "adapter-channel", cfg.Adapter.Channel),
			encoding: resolveString(c, "adapter-encoding", cfg.Adapter.Encoding),
			headers:  cfg.Adapter.Headers,
			timeout:  cfg.Adapter.Timeout.Duration,
			retries:  resolveInt(c, "adapter-retries", cfg.Adapter.Retries),
		},
		tui:   c.Bool("tui"),
		quiet: c.Bool("quiet"),
	}

	var errs []error
	if choice.title == "" {
		errs = append(errs, errors.New("--title is required"))
	}
	if choice.rootFile == "" {
		errs = append(errs, errors.New("--root-file is required"))
	}
	if len(choice.files) == 0 {
		errs = append(errs, errors.New("at least one FILE argument is required"))
	}
	if choice.license < 0 {
		errs = append(errs, fmt.Errorf("--license must be >= 0, got %d", choice.license))
	}
	if choice.maxArchiveBytes < 0 {
		errs = append(errs, fmt.Errorf("--max-archive-bytes must be >= 0, got %d", choice.maxArchiveBytes))
	}

	mode, err := session.ParseCategoryMode(resolveString(c, "category-mode", cfg.Listing.CategoryMode))
	if err != nil {
		errs = append(errs, fmt.Errorf("--category-mode: %w", err))
	}
	choice.categoryMode = mode

	switch choice.adapter.kind {
	case "":
	case "webhook", "redis":
		if choice.adapter.url == "" {
			errs = append(errs, fmt.Errorf("--adapter-url is required for %s adapter", choice.adapter.kind))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid --adapter %q (valid: webhook, redis)", choice.adapter.kind))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return choice, nil
}

// newOpener returns the archive input opener. The S3 client is only built
// when an input needs it.
func newOpener(ctx context.Context, files []string, cfg source.S3Config) (source.Opener, error) {
	var s3 source.Opener
	for _, f := range files {
		if source.Scheme(f) != "s3" {
			continue
		}
		client, err := source.NewS3FromConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s3 = client
		break
	}
	return source.NewMux(s3), nil
}

// newAdapter builds the completion adapter. It returns nil when none is
// configured.
func newAdapter(a adapterChoice) (adapter.Adapter, error) {
	switch a.kind {
	case "":
		return nil, nil
	case "webhook":
		w, err := webhook.New(webhook.Config{
			URL:     a.url,
			Headers: a.headers,
			Timeout: a.timeout,
			Retries: a.retries,
		})
		if err != nil {
			return nil, err
		}
		return w, nil
	case "redis":
		enc, err := redisadapter.ParseEncoding(a.encoding)
		if err != nil {
			return nil, err
		}
		r, err := redisadapter.New(redisadapter.Config{
			URL:      a.url,
			Channel:  a.channel,
			Encoding: enc,
			Timeout:  a.timeout,
			Retries:  a.retries,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown adapter: %s", a.kind)
	}
}

func (u *uploadChoice) sessionConfig(api session.API, opener source.Opener) session.Config {
	return session.Config{
		Title:           u.title,
		Description:     u.description,
		RootFile:        u.rootFile,
		ItemID:          marketplace.ItemID(u.itemID),
		Files:           u.files,
		License:         u.license,
		Category:        u.category,
		CategoryMode:    u.categoryMode,
		FixedCategoryID: u.fixedCategoryID,
		RequestTimeout:  u.api.timeout,
		UploadTimeout:   u.uploadTimeout,
		API:             api,
		Archiver: &archive.ZipArchiver{
			Opener:   opener,
			MaxBytes: u.maxArchiveBytes,
		},
	}
}

func uploadAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitInvalidInput)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), exitInvalidInput)
	}

	choice, err := resolveUploadChoice(c, cfg)
	if err != nil {
		return cli.Exit(err.Error(), exitInvalidInput)
	}

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	client, err := newClient(choice.api)
	if err != nil {
		return cli.Exit(err.Error(), exitInvalidInput)
	}

	opener, err := newOpener(ctx, choice.files, choice.s3)
	if err != nil {
		return cli.Exit(fmt.Sprintf("s3 setup failed: %v", err), exitInvalidInput)
	}

	pub, err := newAdapter(choice.adapter)
	if err != nil {
		return cli.Exit(fmt.Sprintf("adapter setup failed: %v", err), exitInvalidInput)
	}
	if pub != nil {
		defer func() { _ = pub.Close() }()
	}

	scfg := choice.sessionConfig(client, opener)

	var res *session.Result
	if choice.tui {
		res, err = runWithTUI(ctx, scfg)
	} else {
		res, err = runPlain(ctx, scfg)
	}
	if err != nil {
		return cli.Exit(err.Error(), exitInvalidInput)
	}

	publishCompletion(c.Context, pub, res, log.NewLogger(&res.Meta).Sugar())

	if !choice.quiet {
		if err := r.Render(summarize(res)); err != nil {
			return err
		}
	}

	return cli.Exit("", exitCodeFor(res))
}

func runPlain(ctx context.Context, scfg session.Config) (*session.Result, error) {
	s, err := session.New(scfg)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}

// runWithTUI drives the session from a Bubble Tea program. The session logs
// are discarded so they do not tear the progress view.
func runWithTUI(ctx context.Context, scfg session.Config) (*session.Result, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var s *session.Session
	model := tui.NewUploadModel(scfg.Title, len(scfg.Files), func() error {
		return s.Send(runCtx)
	}, cancel)
	prog := tea.NewProgram(model, tea.WithOutput(os.Stderr))

	scfg.Observer = tui.NewObserver(prog)
	scfg.LogOutput = io.Discard
	s, err := session.New(scfg)
	if err != nil {
		return nil, err
	}

	final, err := prog.Run()
	if err != nil {
		cancel()
		if s.State() == types.StateIdle {
			return nil, fmt.Errorf("tui: %w", err)
		}
		<-s.Done()
		return s.Result(), nil
	}
	if m, ok := final.(tui.UploadModel); ok && m.Err() != nil {
		return nil, m.Err()
	}

	<-s.Done()
	return s.Result(), nil
}

// publishCompletion notifies the configured adapter. Failures are logged and
// never change the upload outcome.
func publishCompletion(ctx context.Context, pub adapter.Adapter, res *session.Result, logger *log.SugaredLogger) {
	if pub == nil {
		return
	}
	event := adapter.NewUploadCompletedEvent(res, time.Now())
	if err := pub.Publish(ctx, event); err != nil {
		logger.Warnf("completion adapter publish failed: %v", err)
	}
}

// UploadSummary is the rendered result of an upload.
type UploadSummary struct {
	SessionID     string   `json:"session_id"`
	Operation     string   `json:"operation"`
	ItemID        string   `json:"item_id,omitempty"`
	Title         string   `json:"title"`
	State         string   `json:"state"`
	ErrorKind     string   `json:"error_kind"`
	Error         string   `json:"error,omitempty"`
	CategoryID    int      `json:"category_id"`
	Method        string   `json:"method,omitempty"`
	Path          string   `json:"path,omitempty"`
	HTTPStatus    int      `json:"http_status,omitempty"`
	FilesArchived int      `json:"files_archived"`
	FilesSkipped  []string `json:"files_skipped,omitempty"`
	ArchiveBytes  int64    `json:"archive_bytes"`
	BytesUploaded int64    `json:"bytes_uploaded"`
	Duration      string   `json:"duration"`
	Response      string   `json:"response,omitempty"`
}

func summarize(res *session.Result) UploadSummary {
	s := UploadSummary{
		SessionID:     res.Meta.SessionID,
		Operation:     string(res.Meta.Operation),
		Title:         res.Meta.Title,
		State:         string(res.State),
		ErrorKind:     string(res.ErrorKind),
		CategoryID:    res.CategoryID,
		Method:        res.Method,
		Path:          res.Path,
		HTTPStatus:    res.Status,
		FilesArchived: len(res.Entries),
		ArchiveBytes:  res.ArchiveBytes,
		BytesUploaded: res.Metrics.BytesUploaded,
		Duration:      res.Duration.Round(time.Millisecond).String(),
		Response:      string(res.ResponseData),
	}
	if res.Meta.ItemID != nil {
		s.ItemID = *res.Meta.ItemID
	}
	if res.Err != nil {
		s.Error = res.Err.Error()
	}
	for _, sk := range res.Skipped {
		s.FilesSkipped = append(s.FilesSkipped, sk.Path)
	}
	return s
}

func exitCodeFor(res *session.Result) int {
	switch {
	case res.ErrorKind == types.ErrorCancelled:
		return exitCancelled
	case res.ErrorKind.IsFailure():
		return exitFailed
	default:
		return exitSuccess
	}
}

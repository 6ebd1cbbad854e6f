package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/rackaudit/internal/client/config"
	"github.com/dmitrijs2005/rackaudit/internal/client/connectivity"
	"github.com/dmitrijs2005/rackaudit/internal/client/localdb"
	"github.com/dmitrijs2005/rackaudit/internal/client/models"
	"github.com/dmitrijs2005/rackaudit/internal/client/remote/objectstore"
	"github.com/dmitrijs2005/rackaudit/internal/client/remote/objectstore/gcsstore"
	"github.com/dmitrijs2005/rackaudit/internal/client/remote/objectstore/s3store"
	"github.com/dmitrijs2005/rackaudit/internal/client/remote/records"
	"github.com/dmitrijs2005/rackaudit/internal/client/repositories/localstore"
	"github.com/dmitrijs2005/rackaudit/internal/client/services"
	"github.com/dmitrijs2005/rackaudit/internal/logging"
	"golang.org/x/sync/errgroup"
)

// statusSource is a connectivity source that also knows its current mode.
type statusSource interface {
	connectivity.Source
	Mode() connectivity.Mode
}

type App struct {
	log     logging.Logger
	queue   *services.QueueService
	syncer  *services.SyncService
	records records.Repository
	source  statusSource
	// watch drives source until ctx is done.
	watch   func(ctx context.Context) error
	migrate func(ctx context.Context) error

	reader *bufio.Reader
	out    io.Writer

	// lastPhoto is the key of a captured photo not yet attached to a record.
	lastPhoto string
	closers   []func() error
}

// NewApp opens the local queue, prepares the remote stores and picks the
// connectivity source. Nothing here requires the network.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	app := &App{log: log, out: os.Stdout}

	localDB, err := localdb.Open(ctx, cfg.LocalDBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing local database: %w", err)
	}
	app.closers = append(app.closers, localDB.Close)

	remoteDB, err := records.Open(cfg.DatabaseDSN)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.closers = append(app.closers, remoteDB.Close)

	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	if c, ok := objects.(io.Closer); ok {
		app.closers = append(app.closers, c.Close)
	}

	repo := records.NewPostgresRepository(remoteDB)
	app.wire(localstore.NewSQLiteRepository(localDB), objects, repo, cfg)
	app.migrate = func(ctx context.Context) error { return records.RunMigrations(ctx, remoteDB) }

	if cfg.OnlineSignalFile != "" {
		fs := connectivity.NewFileSignal(cfg.OnlineSignalFile, log)
		app.source, app.watch = fs, fs.Run
	} else {
		pw := connectivity.NewPingWatcher(repo, cfg.OnlineCheckInterval, log)
		app.source = pw
		app.watch = func(ctx context.Context) error {
			pw.Run(ctx)
			return nil
		}
	}

	return app, nil
}

func (a *App) wire(store localstore.Repository, objects objectstore.Store, repo records.Repository, cfg *config.Config) {
	keys := models.NewKeyGenerator()
	a.records = repo
	a.queue = services.NewQueueService(store, keys, a.log)
	a.syncer = services.NewSyncService(store, objects, repo, keys, a.log, services.SyncOptions{
		PhotoPathPrefix: cfg.PhotoPathPrefix,
		EntryTimeout:    cfg.EntryTimeout,
		UploadRetries:   cfg.UploadRetries,
	})
}

func newObjectStore(ctx context.Context, cfg *config.Config) (objectstore.Store, error) {
	switch cfg.ObjectStoreBackend {
	case config.BackendGCS:
		return gcsstore.New(ctx, gcsstore.Options{
			Bucket:          cfg.GCS.Bucket,
			CredentialsFile: cfg.GCS.CredentialsFile,
			PublicBaseURL:   cfg.PublicBaseURL,
		})
	default:
		return s3store.New(ctx, s3store.Options{
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			Bucket:        cfg.S3.Bucket,
			Region:        cfg.S3.Region,
			BaseEndpoint:  cfg.S3.BaseEndpoint,
			PublicBaseURL: cfg.PublicBaseURL,
		})
	}
}

// Run binds the sync engine to the connectivity source, starts watching it
// and serves the REPL on in until the user exits or ctx is cancelled.
// Background drains are waited for before returning.
func (a *App) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unbind := connectivity.Bind(a.source, func() { a.syncer.TriggerSync(ctx) })
	defer unbind()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.watch(gctx) })

	a.reader = bufio.NewReader(in)
	replDone := make(chan struct{})
	go func() {
		defer close(replDone)
		printlnFn("Rack audit field client (type 'help' for commands)")
		runREPL(gctx, a, a.getStatus, a.reader)
	}()

	select {
	case <-replDone:
	case <-gctx.Done():
	}
	cancel()

	err := g.Wait()
	// The REPL may still be inside a command that triggers a sync.
	a.syncer.Close()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

func (a *App) getStatus() string {
	s := string(a.source.Mode())
	if a.syncer.Syncing() {
		s += " syncing"
	}
	return fmt.Sprintf("(%s)", s)
}

// Close releases the databases and the object store client.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}


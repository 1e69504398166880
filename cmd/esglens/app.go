package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/esglens/esglens/api"
	"github.com/esglens/esglens/config"
	"github.com/esglens/esglens/events"
	"github.com/esglens/esglens/index"
	"github.com/esglens/esglens/ingest"
	"github.com/esglens/esglens/llm"
	"github.com/esglens/esglens/rag"
	"github.com/esglens/esglens/retrieve"
)

// App wires the pipeline together. The store, retriever, and generator
// are constructed once and shared across commands.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *index.Store
	chunker   *index.Chunker
	retriever *retrieve.Retriever
	generator *rag.Generator
	processor *ingest.Processor
	publisher *events.Publisher
	handler   *api.Handler
}

// newApp builds the application from configuration.
func newApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	embed, err := index.NewEmbedding(cfg.Embedding.Provider, cfg.Embedding.Model, cfg.Embedding.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}

	store, err := index.NewStore(index.StoreConfig{
		Path:       cfg.Index.Path,
		Collection: cfg.Index.Collection,
	}, embed, logger)
	if err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}

	chunker, err := index.NewChunker(index.ChunkerConfig{
		ChunkSize: cfg.Chunker.ChunkSize,
		Overlap:   cfg.Chunker.Overlap,
	})
	if err != nil {
		return nil, fmt.Errorf("chunker: %w", err)
	}

	client, err := llm.NewClient(cfg.Model.Endpoints,
		llm.WithTimeout(cfg.Model.Timeout),
		llm.WithDefaultTemperature(cfg.Model.Temperature),
		llm.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("llm client: %w", err)
	}

	publisher, err := events.Connect(cfg.NATS.URL, logger)
	if err != nil {
		return nil, err
	}

	retriever := retrieve.New(store, logger)
	generator := rag.NewGenerator(retriever, client, rag.WithLogger(logger))
	processor := ingest.NewProcessor(chunker, store,
		ingest.WithPublisher(publisher),
		ingest.WithProcessorLogger(logger),
	)
	handler := api.NewHandler(generator, processor, store,
		api.WithPublisher(publisher),
		api.WithLogger(logger),
	)

	return &App{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		chunker:   chunker,
		retriever: retriever,
		generator: generator,
		processor: processor,
		publisher: publisher,
		handler:   handler,
	}, nil
}

// Close releases external connections.
func (a *App) Close() {
	a.publisher.Close()
}

// Serve runs the HTTP API and, when enabled, the document watcher,
// until the context is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if a.cfg.Ingest.Watch.Enabled {
		if err := a.startWatcher(ctx); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:    a.cfg.Server.Addr,
		Handler: a.handler.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP API listening", "addr", a.cfg.Server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startWatcher processes filesystem events from the documents directory.
func (a *App) startWatcher(ctx context.Context) error {
	watcher, err := ingest.NewWatcher(a.cfg.Ingest.Watch, a.cfg.Ingest.DocumentsDir, a.logger)
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	go func() {
		defer watcher.Stop()
		for event := range watcher.Events() {
			switch event.Operation {
			case ingest.WatchOpCreate, ingest.WatchOpModify:
				if err := a.ingestFile(ctx, event.AbsPath, event.Path); err != nil {
					a.logger.Error("Failed to ingest changed file", "path", event.Path, "error", err)
				}
			case ingest.WatchOpDelete:
				if err := a.processor.Remove(ctx, watchDocumentID(event.Path)); err != nil {
					a.logger.Error("Failed to remove deleted file", "path", event.Path, "error", err)
				}
			}
		}
	}()

	return nil
}

// IngestDir scans the documents directory and indexes every matching
// file. Returns the number of files indexed.
func (a *App) IngestDir(ctx context.Context, dir string) (int, error) {
	if dir == "" {
		dir = a.cfg.Ingest.DocumentsDir
	}

	files, err := ingest.Scan(dir, a.cfg.Ingest.Patterns)
	if err != nil {
		return 0, err
	}

	indexed := 0
	for _, rel := range files {
		if err := a.ingestFile(ctx, filepath.Join(dir, rel), rel); err != nil {
			a.logger.Error("Failed to ingest file", "path", rel, "error", err)
			continue
		}
		indexed++
	}

	return indexed, nil
}

// ingestFile indexes one file from disk. Watched files reuse a stable
// path-derived document ID so re-ingestion replaces prior chunks.
func (a *App) ingestFile(ctx context.Context, absPath, relPath string) error {
	content, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", relPath, err)
	}

	doc, err := ingest.NewDocument(filepath.Base(relPath), ingest.CategoryInternal)
	if err != nil {
		return err
	}
	doc.ID = watchDocumentID(relPath)

	return a.processor.Process(ctx, doc, content)
}

// Ask answers a single question from the command line.
func (a *App) Ask(ctx context.Context, query, frameworkFocus string) rag.Answer {
	return a.generator.Generate(ctx, rag.Request{
		Query:          query,
		FrameworkFocus: frameworkFocus,
	})
}

// Stats returns index statistics.
func (a *App) Stats() index.Stats {
	return a.store.Stats()
}

// watchDocumentID derives a stable document ID from a file path so the
// same file always maps to the same chunks.
func watchDocumentID(relPath string) string {
	return "file:" + filepath.ToSlash(relPath)
}

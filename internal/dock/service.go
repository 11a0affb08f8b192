// Package dock merges task records out of schema-flexible record-store
// databases into one ordered list and pushes edits back optimistically.
package dock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskdock/taskdock/internal/core/config"
	"github.com/taskdock/taskdock/internal/core/kv"
	"github.com/taskdock/taskdock/internal/remote"
	"github.com/taskdock/taskdock/internal/schema"
	"github.com/taskdock/taskdock/pkg/memo"
)

const (
	schemaNamespace = "schema"
	usersNamespace  = "users"
	usersKey        = "workspace"
	usersTTL        = 24 * time.Hour
)

// Service wraps the record-store API with per-session request memoization,
// a persistent schema side-cache, and the task-list domain logic.
type Service struct {
	api   remote.API
	cfg   *config.Config
	store kv.KV // nil disables the persistent side-cache
	pool  *WorkerPool
	log   zerolog.Logger

	schemas  *memo.Cache[*schema.Database]
	dbs      *memo.Cache[*remote.Database]
	titles   *memo.Cache[string]
	users    *memo.Cache[[]remote.User]
	profiles *memo.Cache[*remote.User]
}

// NewService creates a Service. store may be nil, which disables schema
// snapshots and the cached user list surviving across runs.
func NewService(api remote.API, cfg *config.Config, store kv.KV, log zerolog.Logger) *Service {
	return &Service{
		api:     api,
		cfg:     cfg,
		store:   store,
		pool:    NewWorkerPool(4),
		log:     log.With().Str("component", "dock-service").Logger(),
		schemas:  memo.New[*schema.Database](),
		dbs:      memo.New[*remote.Database](),
		titles:   memo.New[string](),
		users:    memo.New[[]remote.User](),
		profiles: memo.New[*remote.User](),
	}
}

// Database returns the raw database record, memoized per session.
func (s *Service) Database(ctx context.Context, id string) (*remote.Database, error) {
	return s.dbs.Do(ctx, id, func(ctx context.Context) (*remote.Database, error) {
		return s.api.GetDatabase(ctx, id)
	})
}

// Schema returns the derived schema for a database, memoized per session.
// On a fetch failure the last persisted snapshot is used when available,
// so transient outages degrade to slightly stale role inference instead of
// the schema-less fallback.
func (s *Service) Schema(ctx context.Context, id string) (*schema.Database, error) {
	return s.schemas.Do(ctx, id, func(ctx context.Context) (*schema.Database, error) {
		db, err := s.Database(ctx, id)
		if err != nil {
			if s.store != nil {
				snap := kv.Scoped[schema.Database](s.store, schemaNamespace)
				if cached, cerr := snap.Get(ctx, id); cerr == nil {
					s.log.Debug().Str("db", id).Msg("using schema snapshot after fetch failure")
					return &cached, nil
				}
			}
			return nil, fmt.Errorf("fetch database %s: %w", id, err)
		}

		sch := schema.Resolve(db, s.cfg.Completed)
		if s.store != nil {
			snap := kv.Scoped[schema.Database](s.store, schemaNamespace)
			if err := snap.Set(ctx, id, *sch); err != nil {
				s.log.Debug().Err(err).Str("db", id).Msg("persist schema snapshot")
			}
		}
		return sch, nil
	})
}

// DatabaseName resolves a display name for a database: the configured
// label, else the remote title, else the id.
func (s *Service) DatabaseName(ctx context.Context, id string) string {
	if name := s.cfg.DatabaseName(id); name != "" {
		return name
	}
	if db, err := s.Database(ctx, id); err == nil {
		if title := remote.PlainText(db.Title); title != "" {
			return title
		}
	}
	return id
}

// LoadOptions narrows a task load. The zero value loads every configured
// database.
type LoadOptions struct {
	// Database selects one configured database by id or configured label.
	Database string
}

// LoadTasks queries the selected databases in parallel and merges the
// open tasks into one ordered list. A database whose query fails
// contributes nothing; the load only errors when the selection is empty.
func (s *Service) LoadTasks(ctx context.Context, opts LoadOptions) ([]Task, error) {
	targets := s.cfg.Databases
	if opts.Database != "" {
		targets = nil
		for _, dbCfg := range s.cfg.Databases {
			if dbCfg.ID == opts.Database || dbCfg.Name == opts.Database {
				targets = append(targets, dbCfg)
			}
		}
		if len(targets) == 0 {
			return nil, fmt.Errorf("database %q is not configured", opts.Database)
		}
	}
	if len(targets) == 0 {
		return nil, ErrNoDatabases
	}

	results := make([][]Task, len(targets))

	var wg sync.WaitGroup
	for i, dbCfg := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.pool.RunContext(ctx, func() {
				tasks, err := s.loadDatabase(ctx, dbCfg)
				if err != nil {
					s.log.Error().Err(err).Str("db", dbCfg.ID).Msg("query failed, skipping database")
					return
				}
				results[i] = tasks
			})
			if err != nil {
				s.log.Debug().Err(err).Str("db", dbCfg.ID).Msg("query cancelled")
			}
		}()
	}
	wg.Wait()

	var merged []Task
	for _, tasks := range results {
		merged = append(merged, tasks...)
	}
	SortTasks(merged)
	return merged, nil
}

// loadDatabase pulls one database's open tasks: server-side filters from
// configuration with newest-created-first ordering, then client-side
// exclusion of archived, untitled, and completed records.
func (s *Service) loadDatabase(ctx context.Context, dbCfg config.DatabaseConfig) ([]Task, error) {
	sch, err := s.Schema(ctx, dbCfg.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("db", dbCfg.ID).Msg("no schema, falling back to record scan")
		sch = nil
	}

	req := &remote.QueryRequest{
		Filter: remote.CompileFilter(dbCfg.Filters, dbCfg.FilterOperator),
		Sorts: []remote.Sort{
			{Timestamp: remote.TimestampCreated, Direction: remote.SortDescending},
		},
	}

	var tasks []Task
	name := s.DatabaseName(ctx, dbCfg.ID)
	for {
		resp, err := s.api.QueryDatabase(ctx, dbCfg.ID, req)
		if err != nil {
			return nil, fmt.Errorf("query database %s: %w", dbCfg.ID, err)
		}

		for i := range resp.Results {
			page := &resp.Results[i]
			if page.Archived {
				continue
			}
			task := NewTask(page, sch, dbCfg.ID, name, s.cfg.Completed)
			if task.Title == "" || task.Complete {
				continue
			}
			tasks = append(tasks, task)
		}

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		req.StartCursor = resp.NextCursor
	}

	return tasks, nil
}

// TaskByID fetches one record directly by its full id. List queries
// exclude completed and archived records, so this is the only way to
// reach a task that has already dropped off the board, which is exactly
// what reopening needs.
func (s *Service) TaskByID(ctx context.Context, id string) (*Task, error) {
	page, err := s.api.GetPage(ctx, id)
	if err != nil {
		if remote.IsTerminalLookup(err) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("fetch task %s: %w", id, err)
	}

	dbID := page.Parent.DatabaseID
	var sch *schema.Database
	if dbID != "" {
		if sch, err = s.Schema(ctx, dbID); err != nil {
			s.log.Warn().Err(err).Str("db", dbID).Msg("no schema for fetched task")
			sch = nil
		}
	}
	task := NewTask(page, sch, dbID, s.DatabaseName(ctx, dbID), s.cfg.Completed)
	return &task, nil
}

// Users returns the workspace member list, memoized per session and
// persisted with a TTL so most runs never hit the remote.
func (s *Service) Users(ctx context.Context) ([]remote.User, error) {
	return s.users.Do(ctx, usersKey, func(ctx context.Context) ([]remote.User, error) {
		if s.store != nil {
			cache := kv.Scoped[[]remote.User](s.store, usersNamespace)
			if cached, err := cache.Get(ctx, usersKey); err == nil {
				return cached, nil
			}
		}

		users, err := s.api.ListUsers(ctx)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}

		if s.store != nil {
			cache := kv.Scoped[[]remote.User](s.store, usersNamespace)
			if err := cache.SetTTL(ctx, usersKey, users, usersTTL); err != nil {
				s.log.Debug().Err(err).Msg("persist user list")
			}
		}
		return users, nil
	})
}

// UserByName finds a workspace member by exact name, or by id when the
// name matches nothing.
func (s *Service) UserByName(ctx context.Context, name string) (*remote.User, error) {
	users, err := s.Users(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Name == name {
			return &users[i], nil
		}
	}
	for i := range users {
		if users[i].ID == name {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("no workspace user named %q", name)
}

// userByID resolves one member's profile directly, memoized per session.
// The workspace listing omits guests, so references to them carry a bare
// id. A terminal lookup caches a nil profile and the id renders as-is.
func (s *Service) userByID(ctx context.Context, id string) *remote.User {
	user, err := s.profiles.Do(ctx, id, func(ctx context.Context) (*remote.User, error) {
		u, err := s.api.GetUser(ctx, id)
		if err != nil {
			if remote.IsTerminalLookup(err) {
				s.log.Debug().Str("user", id).Msg("user profile not accessible")
				return nil, nil
			}
			return nil, err
		}
		return u, nil
	})
	if err != nil {
		return nil
	}
	return user
}

// PageTitle resolves a record id to its title, memoized per session.
// Unresolvable references degrade to the raw id.
func (s *Service) PageTitle(ctx context.Context, pageID string) string {
	title, err := s.titles.Do(ctx, pageID, func(ctx context.Context) (string, error) {
		page, err := s.api.GetPage(ctx, pageID)
		if err != nil {
			if remote.IsTerminalLookup(err) {
				s.log.Debug().Str("page", pageID).Msg("related record not accessible")
				return "", nil
			}
			return "", err
		}
		for _, name := range page.Properties.Names() {
			if p, ok := page.Properties.Get(name); ok && p.Type == remote.TypeTitle {
				return remote.PlainText(p.Title), nil
			}
		}
		return "", nil
	})
	if err != nil || title == "" {
		return pageID
	}
	return title
}

// Refresh drops every memoized result and clears the persistent schema
// and user caches, forcing the next load to hit the remote.
func (s *Service) Refresh(ctx context.Context) error {
	s.schemas.Reset()
	s.dbs.Reset()
	s.titles.Reset()
	s.users.Reset()
	s.profiles.Reset()

	if s.store == nil {
		return nil
	}
	for _, ns := range []string{schemaNamespace, usersNamespace} {
		if err := kv.ClearNamespace(ctx, s.store, ns); err != nil {
			return fmt.Errorf("clear %s cache: %w", ns, err)
		}
	}
	return nil
}

package dock

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskdock/taskdock/internal/core/config"
	"github.com/taskdock/taskdock/internal/remote"
)

// fakeAPI implements remote.API with pluggable behavior per endpoint.
type fakeAPI struct {
	mu sync.Mutex

	getDatabaseFn   func(ctx context.Context, id string) (*remote.Database, error)
	queryDatabaseFn func(ctx context.Context, id string, req *remote.QueryRequest) (*remote.QueryResponse, error)
	getPageFn       func(ctx context.Context, id string) (*remote.Page, error)
	createPageFn    func(ctx context.Context, req *remote.PageCreate) (*remote.Page, error)
	updatePageFn    func(ctx context.Context, id string, req *remote.PageUpdate) (*remote.Page, error)
	listUsersFn     func(ctx context.Context) ([]remote.User, error)
	getUserFn       func(ctx context.Context, id string) (*remote.User, error)

	getDatabaseCalls int
	queryCalls       int
	updateCalls      int
	listUsersCalls   int
	getUserCalls     int
}

func (f *fakeAPI) GetDatabase(ctx context.Context, id string) (*remote.Database, error) {
	f.mu.Lock()
	f.getDatabaseCalls++
	f.mu.Unlock()
	if f.getDatabaseFn == nil {
		return nil, fmt.Errorf("unexpected GetDatabase(%s)", id)
	}
	return f.getDatabaseFn(ctx, id)
}

func (f *fakeAPI) QueryDatabase(ctx context.Context, id string, req *remote.QueryRequest) (*remote.QueryResponse, error) {
	f.mu.Lock()
	f.queryCalls++
	f.mu.Unlock()
	if f.queryDatabaseFn == nil {
		return nil, fmt.Errorf("unexpected QueryDatabase(%s)", id)
	}
	return f.queryDatabaseFn(ctx, id, req)
}

func (f *fakeAPI) GetPage(ctx context.Context, id string) (*remote.Page, error) {
	if f.getPageFn == nil {
		return nil, fmt.Errorf("unexpected GetPage(%s)", id)
	}
	return f.getPageFn(ctx, id)
}

func (f *fakeAPI) CreatePage(ctx context.Context, req *remote.PageCreate) (*remote.Page, error) {
	if f.createPageFn == nil {
		return nil, fmt.Errorf("unexpected CreatePage")
	}
	return f.createPageFn(ctx, req)
}

func (f *fakeAPI) UpdatePage(ctx context.Context, id string, req *remote.PageUpdate) (*remote.Page, error) {
	f.mu.Lock()
	f.updateCalls++
	f.mu.Unlock()
	if f.updatePageFn == nil {
		return nil, fmt.Errorf("unexpected UpdatePage(%s)", id)
	}
	return f.updatePageFn(ctx, id, req)
}

func (f *fakeAPI) ListUsers(ctx context.Context) ([]remote.User, error) {
	f.mu.Lock()
	f.listUsersCalls++
	f.mu.Unlock()
	if f.listUsersFn == nil {
		return nil, fmt.Errorf("unexpected ListUsers")
	}
	return f.listUsersFn(ctx)
}

func (f *fakeAPI) GetUser(ctx context.Context, id string) (*remote.User, error) {
	f.mu.Lock()
	f.getUserCalls++
	f.mu.Unlock()
	if f.getUserFn == nil {
		return nil, fmt.Errorf("unexpected GetUser(%s)", id)
	}
	return f.getUserFn(ctx, id)
}

// memKV is an in-memory kv.KV for tests.
type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(_ context.Context, key string, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return fmt.Errorf("key %q: %w", key, sql.ErrNoRows)
	}
	return json.Unmarshal(raw, dest)
}

func (m *memKV) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *memKV) SetTTL(ctx context.Context, key string, value any, _ time.Duration) error {
	return m.Set(ctx, key, value)
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memKV) Has(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *memKV) ListKeys(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func testConfig(dbIDs ...string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.DataDir = "/tmp"
	for _, id := range dbIDs {
		cfg.Databases = append(cfg.Databases, config.DatabaseConfig{ID: id})
	}
	return &cfg
}

func newTestService(api remote.API, cfg *config.Config) *Service {
	return NewService(api, cfg, nil, zerolog.Nop())
}

// statusDatabase is a schema with a status property whose done group is 完了.
func statusDatabase(id string) *remote.Database {
	db := &remote.Database{
		ID:    id,
		Title: []remote.RichText{{PlainText: "Tasks"}},
	}
	db.Properties.Set("Name", remote.PropertyDef{Type: remote.TypeTitle})
	db.Properties.Set("期限", remote.PropertyDef{Type: remote.TypeDate})
	db.Properties.Set("Status", remote.PropertyDef{
		Type: remote.TypeStatus,
		Status: &remote.StatusDef{
			Options: []remote.Option{
				{ID: "o1", Name: "未着手", GroupID: "g1"},
				{ID: "o2", Name: "完了", GroupID: "g2"},
			},
			Groups: []remote.Group{
				{ID: "g1", Name: "To-do", OptionIDs: []string{"o1"}},
				{ID: "g2", Name: "Complete", OptionIDs: []string{"o2"}},
			},
		},
	})
	return db
}

// checkboxDatabase is a schema with a checkbox completion signal.
func checkboxDatabase(id string) *remote.Database {
	db := &remote.Database{
		ID:    id,
		Title: []remote.RichText{{PlainText: "Chores"}},
	}
	db.Properties.Set("Name", remote.PropertyDef{Type: remote.TypeTitle})
	db.Properties.Set("Done", remote.PropertyDef{Type: remote.TypeCheckbox})
	return db
}

type pageOpts struct {
	title   string
	status  string
	checked *bool
	due     string
	created time.Time
	archive bool
}

func makePage(id string, o pageOpts) remote.Page {
	p := remote.Page{
		ID:          id,
		CreatedTime: o.created,
		Archived:    o.archive,
	}
	p.Properties.Set("Name", remote.Property{
		Type:  remote.TypeTitle,
		Title: []remote.RichText{{PlainText: o.title}},
	})
	if o.due != "" {
		p.Properties.Set("期限", remote.Property{
			Type: remote.TypeDate,
			Date: &remote.DateValue{Start: o.due},
		})
	}
	if o.status != "" {
		p.Properties.Set("Status", remote.Property{
			Type:   remote.TypeStatus,
			Status: &remote.Option{Name: o.status},
		})
	}
	if o.checked != nil {
		p.Properties.Set("Done", remote.Property{
			Type:     remote.TypeCheckbox,
			Checkbox: *o.checked,
		})
	}
	return p
}

package dock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdock/taskdock/internal/remote"
	"github.com/taskdock/taskdock/internal/schema"
)

func loadOne(t *testing.T, svc *Service) Task {
	t.Helper()
	tasks, err := svc.LoadTasks(context.Background(), LoadOptions{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	return tasks[0]
}

func statusService(t *testing.T, capture *map[string]any) (*Service, Task) {
	t.Helper()
	api := &fakeAPI{
		getDatabaseFn: func(_ context.Context, id string) (*remote.Database, error) {
			return statusDatabase(id), nil
		},
		queryDatabaseFn: func(_ context.Context, _ string, _ *remote.QueryRequest) (*remote.QueryResponse, error) {
			return &remote.QueryResponse{Results: []remote.Page{
				makePage("t1", pageOpts{title: "Write report", status: "未着手"}),
			}}, nil
		},
		updatePageFn: func(_ context.Context, id string, req *remote.PageUpdate) (*remote.Page, error) {
			*capture = req.Properties
			page := makePage(id, pageOpts{title: "Write report", status: "完了"})
			return &page, nil
		},
	}
	svc := newTestService(api, testConfig("db-1"))
	return svc, loadOne(t, svc)
}

func TestComplete_StatusDatabase(t *testing.T) {
	var got map[string]any
	svc, task := statusService(t, &got)

	page, err := svc.Complete(context.Background(), &task)
	require.NoError(t, err)

	require.Contains(t, got, "Status")
	assert.Equal(t, remote.StatusPatch("完了"), got["Status"])
	assert.True(t, schema.IsComplete(page, task.Schema, schema.DefaultVocabulary()))
}

func TestReopen_StatusDatabase(t *testing.T) {
	var got map[string]any
	svc, task := statusService(t, &got)

	_, err := svc.Reopen(context.Background(), &task)
	require.NoError(t, err)
	assert.Equal(t, remote.StatusPatch("未着手"), got["Status"])
}

func TestComplete_StatusOverrideFromConfig(t *testing.T) {
	var got map[string]any
	svc, task := statusService(t, &got)
	svc.cfg.CompleteStatus = "Shipped"

	_, err := svc.Complete(context.Background(), &task)
	require.NoError(t, err)
	assert.Equal(t, remote.StatusPatch("Shipped"), got["Status"])
}

func TestComplete_CheckboxDatabase(t *testing.T) {
	var got map[string]any
	api := &fakeAPI{
		getDatabaseFn: func(_ context.Context, id string) (*remote.Database, error) {
			return checkboxDatabase(id), nil
		},
		queryDatabaseFn: func(_ context.Context, _ string, _ *remote.QueryRequest) (*remote.QueryResponse, error) {
			return &remote.QueryResponse{Results: []remote.Page{
				makePage("t1", pageOpts{title: "Water plants", checked: boolPtr(false)}),
			}}, nil
		},
		updatePageFn: func(_ context.Context, id string, req *remote.PageUpdate) (*remote.Page, error) {
			got = req.Properties
			page := makePage(id, pageOpts{title: "Water plants", checked: boolPtr(true)})
			return &page, nil
		},
	}
	svc := newTestService(api, testConfig("db-1"))
	task := loadOne(t, svc)

	_, err := svc.Complete(context.Background(), &task)
	require.NoError(t, err)
	assert.Equal(t, remote.CheckboxPatch(true), got["Done"])
}

func TestComplete_SchemaLessRecordScan(t *testing.T) {
	var got map[string]any
	api := &fakeAPI{
		getDatabaseFn: func(_ context.Context, _ string) (*remote.Database, error) {
			return nil, &remote.APIError{Status: 500}
		},
		queryDatabaseFn: func(_ context.Context, _ string, _ *remote.QueryRequest) (*remote.QueryResponse, error) {
			return &remote.QueryResponse{Results: []remote.Page{
				makePage("t1", pageOpts{title: "Mystery", checked: boolPtr(false)}),
			}}, nil
		},
		updatePageFn: func(_ context.Context, id string, req *remote.PageUpdate) (*remote.Page, error) {
			got = req.Properties
			page := makePage(id, pageOpts{title: "Mystery", checked: boolPtr(true)})
			return &page, nil
		},
	}
	svc := newTestService(api, testConfig("db-1"))
	task := loadOne(t, svc)
	require.Nil(t, task.Schema)

	_, err := svc.Complete(context.Background(), &task)
	require.NoError(t, err)
	assert.Equal(t, remote.CheckboxPatch(true), got["Done"])
}

func TestComplete_NoSignal(t *testing.T) {
	page := remote.Page{ID: "t1"}
	page.Properties.Set("Name", remote.Property{
		Type:  remote.TypeTitle,
		Title: []remote.RichText{{PlainText: "Bare"}},
	})
	task := Task{Page: &page}

	svc := newTestService(&fakeAPI{}, testConfig())
	_, err := svc.Complete(context.Background(), &task)
	assert.ErrorIs(t, err, ErrNoCompletionSignal)
}

func TestSetDue_WritesAndClears(t *testing.T) {
	var got map[string]any
	svc, task := statusService(t, &got)
	ctx := context.Background()

	_, err := svc.SetDue(ctx, &task, "2024-04-01")
	require.NoError(t, err)
	assert.Equal(t, remote.DatePatch("2024-04-01"), got["期限"])

	_, err = svc.SetDue(ctx, &task, "")
	require.NoError(t, err)
	assert.Equal(t, remote.DatePatch(""), got["期限"])
}

func TestSetTags_RequiresTagProperty(t *testing.T) {
	var got map[string]any
	svc, task := statusService(t, &got)

	_, err := svc.SetTags(context.Background(), &task, []string{"home"})
	assert.ErrorIs(t, err, ErrNoProperty)
}

func TestSetAssignees_ResolvesNames(t *testing.T) {
	var got map[string]any
	api := &fakeAPI{
		getDatabaseFn: func(_ context.Context, id string) (*remote.Database, error) {
			db := statusDatabase(id)
			db.Properties.Set("Assignee", remote.PropertyDef{Type: remote.TypePeople})
			return db, nil
		},
		queryDatabaseFn: func(_ context.Context, _ string, _ *remote.QueryRequest) (*remote.QueryResponse, error) {
			return &remote.QueryResponse{Results: []remote.Page{
				makePage("t1", pageOpts{title: "Write report", status: "未着手"}),
			}}, nil
		},
		updatePageFn: func(_ context.Context, id string, req *remote.PageUpdate) (*remote.Page, error) {
			got = req.Properties
			page := makePage(id, pageOpts{title: "Write report", status: "未着手"})
			return &page, nil
		},
		listUsersFn: func(_ context.Context) ([]remote.User, error) {
			return []remote.User{{ID: "u1", Name: "Ada"}}, nil
		},
	}
	svc := newTestService(api, testConfig("db-1"))
	task := loadOne(t, svc)

	_, err := svc.SetAssignees(context.Background(), &task, []string{"Ada"})
	require.NoError(t, err)
	assert.Equal(t, remote.PeoplePatch([]string{"u1"}), got["Assignee"])
}

func TestRename(t *testing.T) {
	var got map[string]any
	svc, task := statusService(t, &got)

	_, err := svc.Rename(context.Background(), &task, "Ship report")
	require.NoError(t, err)
	assert.Equal(t, remote.TitlePatch("Ship report"), got["Name"])
}

func TestAddTask(t *testing.T) {
	var created *remote.PageCreate
	api := &fakeAPI{
		getDatabaseFn: func(_ context.Context, id string) (*remote.Database, error) {
			db := statusDatabase(id)
			db.Properties.Set("Tags", remote.PropertyDef{Type: remote.TypeMultiSelect})
			return db, nil
		},
		createPageFn: func(_ context.Context, req *remote.PageCreate) (*remote.Page, error) {
			created = req
			page := makePage("new-1", pageOpts{title: "Buy milk"})
			return &page, nil
		},
	}
	svc := newTestService(api, testConfig("db-1"))

	page, err := svc.AddTask(context.Background(), "db-1", "Buy milk", "2024-04-01", []string{"home"})
	require.NoError(t, err)
	assert.Equal(t, "new-1", page.ID)

	require.NotNil(t, created)
	assert.Equal(t, "db-1", created.Parent.DatabaseID)
	assert.Equal(t, remote.TitlePatch("Buy milk"), created.Properties["Name"])
	assert.Equal(t, remote.DatePatch("2024-04-01"), created.Properties["期限"])
	assert.Equal(t, remote.MultiSelectPatch([]string{"home"}), created.Properties["Tags"])

	// New records land in the not-started column instead of the store's
	// default status.
	assert.Equal(t, remote.StatusPatch("未着手"), created.Properties["Status"])
}

func TestAddTask_InitialStatusOverride(t *testing.T) {
	var created *remote.PageCreate
	api := &fakeAPI{
		getDatabaseFn: func(_ context.Context, id string) (*remote.Database, error) {
			return statusDatabase(id), nil
		},
		createPageFn: func(_ context.Context, req *remote.PageCreate) (*remote.Page, error) {
			created = req
			page := makePage("new-1", pageOpts{title: "Buy milk"})
			return &page, nil
		},
	}
	svc := newTestService(api, testConfig("db-1"))
	svc.cfg.ReopenStatus = "Backlog"

	_, err := svc.AddTask(context.Background(), "db-1", "Buy milk", "", nil)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, remote.StatusPatch("Backlog"), created.Properties["Status"])
}

func TestAddTask_ChecklistGetsNoStatus(t *testing.T) {
	var created *remote.PageCreate
	api := &fakeAPI{
		getDatabaseFn: func(_ context.Context, id string) (*remote.Database, error) {
			return checkboxDatabase(id), nil
		},
		createPageFn: func(_ context.Context, req *remote.PageCreate) (*remote.Page, error) {
			created = req
			page := makePage("new-1", pageOpts{title: "Water plants"})
			return &page, nil
		},
	}
	svc := newTestService(api, testConfig("db-1"))

	_, err := svc.AddTask(context.Background(), "db-1", "Water plants", "", nil)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Len(t, created.Properties, 1)
	assert.Contains(t, created.Properties, "Name")
}

func TestArchive(t *testing.T) {
	var archived *bool
	api := &fakeAPI{
		updatePageFn: func(_ context.Context, id string, req *remote.PageUpdate) (*remote.Page, error) {
			archived = req.Archived
			page := makePage(id, pageOpts{title: "Bye", archive: true})
			return &page, nil
		},
	}
	svc := newTestService(api, testConfig())

	page := makePage("t1", pageOpts{title: "Bye"})
	task := Task{Page: &page}
	require.NoError(t, svc.Archive(context.Background(), &task))
	require.NotNil(t, archived)
	assert.True(t, *archived)
}

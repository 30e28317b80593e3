package resource_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/mocks"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/resource"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/testutil"
)

type (
	owner struct {
		resource.Base `bson:",inline"`
		Name          string `bson:"name" json:"name" validate:"required"`
	}

	option struct {
		Label string `bson:"label" json:"label"`
		Count int    `bson:"count" json:"count"`
	}

	task struct {
		resource.Base `bson:",inline"`
		Title         string                `bson:"title" json:"title" validate:"required"`
		Code          string                `bson:"code" json:"code" validate:"required"`
		Status        string                `bson:"status" json:"status" validate:"required,oneof=open done archived"`
		Year          int                   `bson:"year,omitempty" json:"year,omitempty"`
		Owner         resource.Ref[owner]   `bson:"owner,omitempty" json:"owner"`
		Watchers      []resource.Ref[owner] `bson:"watchers,omitempty" json:"watchers,omitempty"`
		Options       []option              `bson:"options,omitempty" json:"options,omitempty"`
		Remarks       string                `bson:"remarks,omitempty" json:"remarks,omitempty"`
	}
)

const taskCreated = "taskCreated"

var taskDef = resource.Definition[task]{
	Name:       "task",
	Collection: "tasks",
	Event:      taskCreated,
	Unique:     []string{"code"},
	Filters:    []string{"status", "year", "owner", "watchers"},
	Prepare: func(_ context.Context, t *task) error {
		if t.Status == "" {
			t.Status = "open"
		}
		return nil
	},
	Check: func(_ context.Context, t *task) error {
		if t.Title == "forbidden" {
			return core.NewFieldError("title", "is forbidden")
		}
		return nil
	},
	Links: func(t *task) []resource.Link {
		return []resource.Link{
			resource.One("owner", "owners", &t.Owner).Enforced(),
			resource.Many("watchers", "owners", t.Watchers),
		}
	},
}

// recorder is a core.Observer keeping every observation.
type recorder struct {
	mu         sync.Mutex
	ops        []string
	broadcasts []string
}

func (r *recorder) ObserveOperation(res, op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	outcome := "ok"
	if err != nil {
		outcome = "err"
	}
	r.ops = append(r.ops, res+"."+op+"."+outcome)
}

func (r *recorder) ObserveBroadcast(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcasts = append(r.broadcasts, event)
}

type fixture struct {
	tasks  *resource.Service[task, *task]
	owners *resource.Service[owner, *owner]
	bcast  *mocks.MockBroadcaster
	obs    *recorder
	now    time.Time
}

func setup(t *testing.T) *fixture {
	deps, _ := testutil.NewDeps(t)
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	testutil.FreezeTime(t, now)

	f := &fixture{
		bcast: mocks.NewMockBroadcaster(gomock.NewController(t)),
		obs:   &recorder{},
		now:   now,
	}
	deps.Broadcaster = f.bcast
	deps.Observer = f.obs

	f.owners = resource.NewService(resource.Definition[owner]{Name: "owner", Collection: "owners"}, deps)
	f.tasks = resource.NewService(taskDef, deps)
	require.NoError(t, resource.EnsureIndexes(context.Background(), f.tasks, f.owners))
	return f
}

func (f *fixture) owner(t *testing.T, name string) *owner {
	t.Helper()
	o, err := f.owners.Create(context.Background(), &owner{Name: name})
	require.NoError(t, err)
	return o
}

func (f *fixture) task(t *testing.T, tk *task) *task {
	t.Helper()
	f.bcast.EXPECT().Emit(taskCreated, gomock.Any())
	created, err := f.tasks.Create(context.Background(), tk)
	require.NoError(t, err)
	return created
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	flds := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		flds[f.Field] = f.Error
	}
	return flds
}

func TestService_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	o := f.owner(t, "Ada")

	var emitted interface{}
	f.bcast.EXPECT().Emit(taskCreated, gomock.Any()).Times(1).Do(func(_ string, payload interface{}) {
		emitted = payload
	})
	created, err := f.tasks.Create(ctx, &task{Title: "Essay", Code: "T1", Owner: resource.NewRef[owner](o.ID)})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.True(t, f.now.Equal(created.CreatedAt))
	assert.Equal(t, "open", created.Status, "default applied by Prepare")
	assert.Same(t, created, emitted)
	assert.Equal(t, []string{taskCreated}, f.obs.broadcasts)

	got, err := f.tasks.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Essay", got.Title)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	require.NotNil(t, got.Owner.Doc, "owner is populated on read")
	assert.Equal(t, "Ada", got.Owner.Doc.Name)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, created.ID, body["id"])
	assert.Equal(t, map[string]interface{}{"id": o.ID, "name": "Ada", "createdAt": "2026-05-04T10:00:00Z"}, body["owner"])
}

func TestService_Create_invalid(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	o := f.owner(t, "Ada")
	// no Emit expectation: any broadcast fails the test

	tests := []struct {
		name    string
		doc     *task
		wantFld map[string]string
	}{
		{
			name:    "missing required",
			doc:     &task{Code: "T1"},
			wantFld: map[string]string{"title": "this field is required"},
		},
		{
			name:    "enum",
			doc:     &task{Title: "Essay", Code: "T1", Status: "lost"},
			wantFld: map[string]string{"status": "status must be one of [open done archived]"},
		},
		{
			name:    "enforced reference",
			doc:     &task{Title: "Essay", Code: "T1", Owner: resource.NewRef[owner]("ghost")},
			wantFld: map[string]string{"owner": `"ghost" does not exist`},
		},
		{
			name:    "check hook",
			doc:     &task{Title: "forbidden", Code: "T1", Owner: resource.NewRef[owner](o.ID)},
			wantFld: map[string]string{"title": "is forbidden"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tasks.Create(ctx, tt.doc)
			assert.Equal(t, tt.wantFld, fieldErrors(t, err))
		})
	}

	n, err := f.tasks.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing is stored")
	assert.Empty(t, f.obs.broadcasts)
}

func TestService_Create_duplicate(t *testing.T) {
	f := setup(t)
	f.task(t, &task{Title: "Essay", Code: "T1"})

	_, err := f.tasks.Create(context.Background(), &task{Title: "Other", Code: "T1"})
	assert.Equal(t, map[string]string{"code": "a task with this code already exists"}, fieldErrors(t, err))
}

func TestService_List(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ada, bob := f.owner(t, "Ada"), f.owner(t, "Bob")

	f.task(t, &task{Title: "one", Code: "1", Year: 1, Owner: resource.NewRef[owner](ada.ID)})
	f.task(t, &task{Title: "two", Code: "2", Year: 2, Status: "done", Owner: resource.NewRef[owner](bob.ID)})
	f.task(t, &task{Title: "three", Code: "3", Year: 2,
		Watchers: []resource.Ref[owner]{resource.NewRef[owner](ada.ID), resource.NewRef[owner]("gone")}})

	titles := func(tasks []*task) []string {
		out := make([]string, 0, len(tasks))
		for _, tk := range tasks {
			out = append(out, tk.Title)
		}
		return out
	}

	tests := []struct {
		name   string
		params map[string]string
		want   []string
	}{
		{name: "all", params: nil, want: []string{"one", "two", "three"}},
		{name: "enum", params: map[string]string{"status": "done"}, want: []string{"two"}},
		{name: "integer", params: map[string]string{"year": "2"}, want: []string{"two", "three"}},
		{name: "reference", params: map[string]string{"owner": ada.ID}, want: []string{"one"}},
		{name: "array of references", params: map[string]string{"watchers": ada.ID}, want: []string{"three"}},
		{name: "unknown keys and empty values are ignored", params: map[string]string{"title": "one", "status": ""}, want: []string{"one", "two", "three"}},
		{name: "no match", params: map[string]string{"status": "archived"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := f.tasks.ParseFilter(tt.params)
			require.NoError(t, err)
			got, err := f.tasks.List(ctx, filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}

	t.Run("populates every reference", func(t *testing.T) {
		got, err := f.tasks.List(ctx, nil)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "Ada", got[0].Owner.Doc.Name)
		assert.Equal(t, "Bob", got[1].Owner.Doc.Name)
		require.Len(t, got[2].Watchers, 2)
		assert.Equal(t, "Ada", got[2].Watchers[0].Doc.Name)
		assert.Nil(t, got[2].Watchers[1].Doc, "dangling reference keeps its raw id")

		data, err := json.Marshal(got[2].Watchers[1])
		require.NoError(t, err)
		assert.JSONEq(t, `"gone"`, string(data))
		assert.True(t, got[2].Owner.IsZero())
	})
}

func TestService_ParseFilter_invalid(t *testing.T) {
	f := setup(t)
	_, err := f.tasks.ParseFilter(map[string]string{"year": "twenty"})
	assert.Equal(t, map[string]string{"year": "must be an integer"}, fieldErrors(t, err))
}

func TestService_Get_notFound(t *testing.T) {
	f := setup(t)

	_, err := f.tasks.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotFound))
	var nf *core.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, `task "nope" not found`, nf.Error())
	assert.Contains(t, f.obs.ops, "task.get.err")
}

func TestService_Transition(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tk := f.task(t, &task{Title: "Essay", Code: "T1"})

	got, err := f.tasks.Transition(ctx, tk.ID, "status", "open", "done", core.Fields{"remarks": "well done"})
	require.NoError(t, err)
	assert.Equal(t, "done", got.Status)
	assert.Equal(t, "well done", got.Remarks)

	// already there: idempotent, extra fields untouched
	got, err = f.tasks.Transition(ctx, tk.ID, "status", "open", "done", core.Fields{"remarks": "again"})
	require.NoError(t, err)
	assert.Equal(t, "done", got.Status)
	assert.Equal(t, "well done", got.Remarks)

	_, err = f.tasks.Transition(ctx, tk.ID, "status", "open", "archived", nil)
	assert.Equal(t, map[string]string{"status": `cannot change from "done" to "archived"`}, fieldErrors(t, err))

	_, err = f.tasks.Transition(ctx, "nope", "status", "open", "done", nil)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestService_PatchIf(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tk := f.task(t, &task{Title: "Essay", Code: "T1", Year: 1})

	got, err := f.tasks.PatchIf(ctx, tk.ID, core.Filter{"year": 1}, core.Fields{"year": 2}, "year")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Year)

	_, err = f.tasks.PatchIf(ctx, tk.ID, core.Filter{"year": 1}, core.Fields{"year": 3}, "year")
	assert.Equal(t, map[string]string{"year": "was modified concurrently, retry"}, fieldErrors(t, err))

	_, err = f.tasks.Patch(ctx, "nope", core.Fields{"year": 3})
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestService_Increment(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tk := f.task(t, &task{Title: "Poll", Code: "P1", Options: []option{{Label: "yes"}, {Label: "no"}}})

	const votes = 20
	var wg sync.WaitGroup
	for i := 0; i < votes; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.tasks.Increment(ctx, tk.ID, "options", i%2, "count")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := f.tasks.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, []option{{Label: "yes", Count: votes / 2}, {Label: "no", Count: votes / 2}}, got.Options)

	for _, index := range []int{-1, 2, 99} {
		_, err = f.tasks.Increment(ctx, tk.ID, "options", index, "count")
		assert.Contains(t, fieldErrors(t, err), "options", "index %d", index)
	}

	_, err = f.tasks.Increment(ctx, "nope", "options", 0, "count")
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestService_observer(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	tk := f.task(t, &task{Title: "Essay", Code: "T1"})
	_, _ = f.tasks.List(ctx, nil)
	_, _ = f.tasks.Create(ctx, &task{Code: "T2"})

	assert.Equal(t, []string{"task.create.ok", "task.list.ok", "task.create.err"}, f.obs.ops)
	assert.Equal(t, "task", f.tasks.Name())
	assert.Equal(t, "tasks", f.tasks.Collection())
	assert.Equal(t, tk.ID, resource.IDOf(tk))
}

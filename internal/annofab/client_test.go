package annofab

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/huangsam/annofabcli/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler, creds contract.Credentials) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, creds, WithRetry(3, time.Millisecond))
	require.NoError(t, err)
	return c
}

var patCreds = contract.Credentials{PAT: "secret"}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		creds   contract.Credentials
		wantErr bool
	}{
		{"pat", contract.Credentials{PAT: "x"}, false},
		{"user and password", contract.Credentials{UserID: "u", Password: "p"}, false},
		{"user only", contract.Credentials{UserID: "u"}, true},
		{"empty", contract.Credentials{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("https://annofab.com/", tt.creds)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAPIURL(t *testing.T) {
	c, err := New("https://annofab.com/", patCreds)
	require.NoError(t, err)
	assert.Equal(t, "https://annofab.com/api/v1/projects/p%201/tasks", c.apiURL(projectPath("p 1", "tasks"), nil))
	assert.Equal(t, "https://annofab.com/api/v1/login?v=3", c.apiURL("login", map[string][]string{"v": {"3"}}))
}

func TestPATAuthorization(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/v1/projects/prj", r.URL.Path)
		writeJSON(w, schema.Project{ProjectID: "prj", Title: "Cars"})
	}), patCreds)

	p, err := c.GetProject(context.Background(), "prj")
	require.NoError(t, err)
	assert.Equal(t, "Cars", p.Title)
}

func TestLoginAndReloginOn401(t *testing.T) {
	var logins, calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/login", func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body.UserID)
		n := logins.Add(1)
		writeJSON(w, map[string]any{"token": map[string]string{"id_token": "tok" + strconv.Itoa(int(n))}})
	})
	mux.HandleFunc("GET /api/v1/projects/prj/tasks/t1", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			assert.Equal(t, "tok1", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "tok2", r.Header.Get("Authorization"))
		writeJSON(w, schema.Task{TaskID: "t1"})
	})
	c := newTestClient(t, mux, contract.Credentials{UserID: "alice", Password: "pw"})

	task, err := c.GetTask(context.Background(), "prj", "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", task.TaskID)
	assert.Equal(t, int32(2), logins.Load())
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, schema.Project{ProjectID: "prj"})
	}), patCreds)

	_, err := c.GetProject(context.Background(), "prj")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"errors":[{"error_code":"NOT_FOUND"}]}`)
	}), patCreds)

	_, err := c.GetProject(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "NOT_FOUND")
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryGivesUp(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}), patCreds)

	_, err := c.GetProject(context.Background(), "prj")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetAllTasksPaging(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "200", q.Get("limit"))
		assert.Equal(t, "complete", q.Get("status"))
		assert.Equal(t, "true", q.Get("no_user"))
		page, _ := strconv.Atoi(q.Get("page"))
		switch page {
		case 1:
			writeJSON(w, schema.ListResponse[schema.Task]{List: []schema.Task{{TaskID: "a"}, {TaskID: "b"}}, PageNo: 1, TotalCount: 3})
		case 2:
			writeJSON(w, schema.ListResponse[schema.Task]{List: []schema.Task{{TaskID: "c"}}, PageNo: 2, TotalCount: 3})
		default:
			t.Errorf("unexpected page %d", page)
		}
	}), patCreds)

	tasks, err := c.GetAllTasks(context.Background(), "prj", schema.TaskQueryForAPI{Status: schema.CompleteStatus, NoUser: true})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "c", tasks[2].TaskID)
}

func TestGetAllAnnotationListQuery(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var q schema.AnnotationQueryForAPI
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("query")), &q))
		assert.Equal(t, "lbl-car", q.LabelID)
		writeJSON(w, schema.ListResponse[schema.SingleAnnotation]{TotalCount: 0})
	}), patCreds)

	list, err := c.GetAllAnnotationList(context.Background(), "prj", schema.AnnotationQueryForAPI{LabelID: "lbl-car"})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBatchUpdateChunks(t *testing.T) {
	var sizes []int
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		var items []schema.BatchAnnotationRequestItem
		require.NoError(t, json.NewDecoder(r.Body).Decode(&items))
		sizes = append(sizes, len(items))
		writeJSON(w, []any{})
	}), patCreds)

	items := make([]schema.BatchAnnotationRequestItem, 250)
	require.NoError(t, c.BatchUpdateAnnotations(context.Background(), "prj", items))
	assert.Equal(t, []int{100, 100, 50}, sizes)
}

func TestGetAnnotationSpecsHistoryID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("v"))
		assert.Equal(t, "h1", r.URL.Query().Get("history_id"))
		writeJSON(w, schema.AnnotationSpecs{ProjectID: "prj", HistoryID: "h1"})
	}), patCreds)

	s, err := c.GetAnnotationSpecs(context.Background(), "prj", "h1")
	require.NoError(t, err)
	assert.Equal(t, "h1", s.HistoryID)
}

func TestWaitForJob(t *testing.T) {
	tests := []struct {
		name     string
		statuses []schema.JobStatus
		maxTries int
		want     schema.JobStatus
		wantErr  bool
	}{
		{"succeeds after polling", []schema.JobStatus{schema.JobProgress, schema.JobSucceeded}, 5, schema.JobSucceeded, false},
		{"failed job", []schema.JobStatus{schema.JobFailed}, 5, schema.JobFailed, false},
		{"times out", []schema.JobStatus{schema.JobProgress, schema.JobProgress, schema.JobProgress}, 2, schema.JobProgress, true},
		{"no job", nil, 3, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, string(schema.GenAnnotationJob), r.URL.Query().Get("type"))
				n := int(calls.Add(1)) - 1
				var list []schema.ProjectJob
				if n < len(tt.statuses) {
					list = []schema.ProjectJob{{JobStatus: tt.statuses[n]}}
				}
				writeJSON(w, schema.ListResponse[schema.ProjectJob]{List: list, TotalCount: len(list)})
			}), patCreds)

			got, err := c.WaitForJob(context.Background(), "prj", schema.GenAnnotationJob, time.Millisecond, tt.maxTries)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArchiveURLAndDownload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /signed/archive.zip", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, "zipdata")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	mux.HandleFunc("GET /api/v1/projects/prj/annotation-archive", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+"/signed/archive.zip", http.StatusFound)
	})

	c, err := New(srv.URL, patCreds, WithRetry(1, time.Millisecond))
	require.NoError(t, err)

	u, err := c.GetSimpleAnnotationArchiveURL(context.Background(), "prj")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/signed/archive.zip", u)

	dest := filepath.Join(t.TempDir(), "out", "archive.zip")
	require.NoError(t, c.DownloadFile(context.Background(), u, dest))
	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "zipdata", string(b))
}

func slowBody(delay time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "zip")
		w.(http.Flusher).Flush()
		select {
		case <-time.After(delay):
			_, _ = io.WriteString(w, "data")
		case <-r.Context().Done():
		}
	}
}

func TestDownloadFile_OutlivesRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(slowBody(300 * time.Millisecond))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, patCreds, WithRetry(1, time.Millisecond), WithHTTPClient(&http.Client{Timeout: 100 * time.Millisecond}))
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "archive.zip")
	require.NoError(t, c.DownloadFile(context.Background(), srv.URL+"/archive.zip", dest))
	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "zipdata", string(b))
}

func TestDownloadFile_ContextBoundsTransfer(t *testing.T) {
	srv := httptest.NewServer(slowBody(time.Minute))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, patCreds, WithRetry(1, time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err = c.DownloadFile(ctx, srv.URL+"/archive.zip", filepath.Join(t.TempDir(), "archive.zip"))
	assert.Error(t, err)
}

func TestDownloadClient(t *testing.T) {
	tests := []struct {
		name       string
		in         *http.Client
		wantHeader time.Duration
	}{
		{name: "default", in: &http.Client{Timeout: DefaultTimeout}, wantHeader: DefaultTimeout},
		{name: "custom timeout", in: &http.Client{Timeout: 5 * time.Second}, wantHeader: 5 * time.Second},
		{name: "no timeout", in: &http.Client{}, wantHeader: DefaultTimeout},
		{
			name:       "transport setting kept",
			in:         &http.Client{Timeout: time.Second, Transport: &http.Transport{ResponseHeaderTimeout: 3 * time.Second}},
			wantHeader: 3 * time.Second,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := downloadClient(tt.in)
			assert.Zero(t, d.Timeout)
			tr, ok := d.Transport.(*http.Transport)
			require.True(t, ok)
			assert.Equal(t, tt.wantHeader, tr.ResponseHeaderTimeout)
		})
	}
}

package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrorec/replay"
	"macrorec/storage"
)

// fakeController records which commands were invoked.
type fakeController struct {
	calls      []string
	installErr error
	startErr   error
	replayErr  error
	progress   float64
	recordings []storage.Recording
	deleteErr  error
}

func (f *fakeController) InstallHooks() error {
	f.calls = append(f.calls, "install")
	return f.installErr
}

func (f *fakeController) UninstallHooks() error {
	f.calls = append(f.calls, "uninstall")
	return nil
}

func (f *fakeController) StartRecording() error {
	f.calls = append(f.calls, "record-start")
	return f.startErr
}

func (f *fakeController) StopRecording() (*storage.Recording, error) {
	f.calls = append(f.calls, "record-stop")
	return &storage.Recording{ID: "abc", Name: "macro", EventCount: 2}, nil
}

func (f *fakeController) LoadRecording(id string) error {
	f.calls = append(f.calls, "load:"+id)
	if id == "missing" {
		return storage.ErrNotFound
	}
	return nil
}

func (f *fakeController) LoadRecordingFile(path string) error {
	f.calls = append(f.calls, "load-file:"+path)
	return nil
}

func (f *fakeController) StartReplay(speed float64) error {
	f.calls = append(f.calls, "replay-start")
	return f.replayErr
}

func (f *fakeController) StopReplay() {
	f.calls = append(f.calls, "replay-stop")
}

func (f *fakeController) ReplayProgress() float64 { return f.progress }

func (f *fakeController) Recordings(limit, offset int) ([]storage.Recording, error) {
	return f.recordings, nil
}

func (f *fakeController) DeleteRecording(id string) error {
	f.calls = append(f.calls, "delete:"+id)
	return f.deleteErr
}

func (f *fakeController) DailyStats(days int) ([]storage.DailyStats, error) {
	return nil, nil
}

func (f *fakeController) Stats() (*storage.OverallStats, error) {
	return &storage.OverallStats{TotalRecordings: 3}, nil
}

func (f *fakeController) StatusSnapshot() Status {
	return Status{Recording: true, Progress: f.progress}
}

func newTestServer(ctrl Controller) *Server {
	return &Server{ctrl: ctrl, port: 0, hub: NewHub()}
}

func TestHandleStartRecording(t *testing.T) {
	ctrl := &fakeController{}
	s := newTestServer(ctrl)

	w := httptest.NewRecorder()
	s.handleStartRecording(w, httptest.NewRequest(http.MethodPost, "/api/record/start", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"record-start"}, ctrl.calls)
}

func TestHandleStartRecording_MethodNotAllowed(t *testing.T) {
	s := newTestServer(&fakeController{})

	w := httptest.NewRecorder()
	s.handleStartRecording(w, httptest.NewRequest(http.MethodGet, "/api/record/start", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandleStopRecording_ReturnsRecording(t *testing.T) {
	s := newTestServer(&fakeController{})

	w := httptest.NewRecorder()
	s.handleStopRecording(w, httptest.NewRequest(http.MethodPost, "/api/record/stop", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Recording *storage.Recording `json:"recording"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Recording)
	assert.Equal(t, "abc", resp.Recording.ID)
}

func TestHandleStartReplay_LoadsThenStarts(t *testing.T) {
	ctrl := &fakeController{}
	s := newTestServer(ctrl)

	body := strings.NewReader(`{"id":"abc","speed":2.0}`)
	w := httptest.NewRecorder()
	s.handleStartReplay(w, httptest.NewRequest(http.MethodPost, "/api/replay/start", body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"load:abc", "replay-start"}, ctrl.calls)
}

func TestHandleStartReplay_UnknownRecording(t *testing.T) {
	s := newTestServer(&fakeController{})

	body := strings.NewReader(`{"id":"missing"}`)
	w := httptest.NewRecorder()
	s.handleStartReplay(w, httptest.NewRequest(http.MethodPost, "/api/replay/start", body))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleStartReplay_InvalidSpeed(t *testing.T) {
	ctrl := &fakeController{replayErr: replay.ErrInvalidSpeed}
	s := newTestServer(ctrl)

	body := strings.NewReader(`{"speed":-1}`)
	w := httptest.NewRecorder()
	s.handleStartReplay(w, httptest.NewRequest(http.MethodPost, "/api/replay/start", body))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleReplayProgress(t *testing.T) {
	s := newTestServer(&fakeController{progress: 42.5})

	w := httptest.NewRecorder()
	s.handleReplayProgress(w, httptest.NewRequest(http.MethodGet, "/api/replay/progress", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]float64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 42.5, resp["progress"])
}

func TestHandleRecordings(t *testing.T) {
	ctrl := &fakeController{recordings: []storage.Recording{{ID: "a"}, {ID: "b"}}}
	s := newTestServer(ctrl)

	w := httptest.NewRecorder()
	s.handleRecordings(w, httptest.NewRequest(http.MethodGet, "/api/recordings?limit=10", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Recordings []storage.Recording `json:"recordings"`
		Limit      int                 `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Recordings, 2)
	assert.Equal(t, 10, resp.Limit)
}

func TestHandleRecordingByID_Delete(t *testing.T) {
	ctrl := &fakeController{}
	s := newTestServer(ctrl)

	w := httptest.NewRecorder()
	s.handleRecordingByID(w, httptest.NewRequest(http.MethodDelete, "/api/recordings/abc", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"delete:abc"}, ctrl.calls)
}

func TestHandleRecordingByID_NotFound(t *testing.T) {
	ctrl := &fakeController{deleteErr: storage.ErrNotFound}
	s := newTestServer(ctrl)

	w := httptest.NewRecorder()
	s.handleRecordingByID(w, httptest.NewRequest(http.MethodDelete, "/api/recordings/zzz", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleInstallHooks_Conflict(t *testing.T) {
	ctrl := &fakeController{installErr: assert.AnError}
	s := newTestServer(ctrl)

	w := httptest.NewRecorder()
	s.handleInstallHooks(w, httptest.NewRequest(http.MethodPost, "/api/hooks/install", nil))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandleStatus(t *testing.T) {
	s := newTestServer(&fakeController{progress: 10})

	w := httptest.NewRecorder()
	s.handleStatus(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var st Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.True(t, st.Recording)
	assert.Equal(t, 10.0, st.Progress)
}

package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/dfa"
	"github.com/aretw0/dfa/pkg/adapters/memory"
	"github.com/aretw0/dfa/pkg/domain"
	"github.com/aretw0/dfa/pkg/ports"
)

const endsInOne = "q0,q1\n0,1\nq0\nq1\nq0,0,q0\nq0,1,q1\nq1,0,q0\nq1,1,q1\n"

var (
	memoryBroken = ports.Spec{Data: []byte("q0\n"), Format: "text"}
	memoryValid  = ports.Spec{Data: []byte("s\na\ns\ns\ns,a,s\n"), Format: "text"}
)

func newEngine(t *testing.T, spec string, load bool, opts ...dfa.Option) (*dfa.Engine, *memory.Loader) {
	t.Helper()
	loader := memory.NewLoader(spec)
	eng, err := dfa.New("", append([]dfa.Option{dfa.WithLoader(loader)}, opts...)...)
	require.NoError(t, err)
	if load {
		_, err = eng.Load(context.Background())
		require.NoError(t, err)
	}
	return eng, loader
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestClassify(t *testing.T) {
	eng, _ := newEngine(t, endsInOne, true)
	h := NewHandler(eng)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantResp   ClassifyResponse
	}{
		{"accept", `{"input":"0,1"}`, http.StatusOK, ClassifyResponse{Verdict: "accept", Accepted: true}},
		{"reject", `{"input":"1,0"}`, http.StatusOK, ClassifyResponse{Verdict: "reject"}},
		{"symbols", `{"symbols":["1"]}`, http.StatusOK, ClassifyResponse{Verdict: "accept", Accepted: true}},
		{"empty", `{}`, http.StatusOK, ClassifyResponse{Verdict: "reject"}},
		{
			"trace", `{"input":"1,0","trace":true}`, http.StatusOK,
			ClassifyResponse{Verdict: "reject", Trace: []string{"q0", "q1", "q0"}},
		},
		{
			"unknown symbol", `{"input":"1,2","trace":true}`, http.StatusUnprocessableEntity,
			ClassifyResponse{Verdict: "reject", Trace: []string{"q0", "q1"}, Error: `no transition from state "q1" on symbol "2"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/classify", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			var got ClassifyResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.wantResp, got)
		})
	}

	w := do(t, h, http.MethodPost, "/classify", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotLoaded(t *testing.T) {
	eng, _ := newEngine(t, endsInOne, false)
	h := NewHandler(eng)

	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodPost, "/classify", `{"input":"1"}`).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/automaton", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodPost, "/classify/batch", "1\n").Code)

	w := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","loaded":false}`, w.Body.String())
}

func TestClassifyBatch(t *testing.T) {
	eng, _ := newEngine(t, endsInOne, true)
	h := NewHandler(eng)

	w := do(t, h, http.MethodPost, "/classify/batch?workers=2", "0,1\n1,0\n\n1,2\n")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/x-ndjson", w.Header().Get("Content-Type"))
	assert.Equal(t, "4", w.Header().Get("X-Total"))
	assert.Equal(t, "1", w.Header().Get("X-Failed"))

	var verdicts []string
	scanner := bufio.NewScanner(w.Body)
	for scanner.Scan() {
		var rec struct {
			Verdict string `json:"verdict"`
		}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		verdicts = append(verdicts, rec.Verdict)
	}
	assert.Equal(t, []string{"accept", "reject", "reject", "reject"}, verdicts)

	w = do(t, h, http.MethodPost, "/classify/batch?policy=abort", "1\n1,2\n")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, h, http.MethodPost, "/classify/batch?policy=nope", "1\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, workers := range []string{"0", "3abc", "-1", "1.5"} {
		w = do(t, h, http.MethodPost, "/classify/batch?workers="+workers, "1\n")
		assert.Equal(t, http.StatusBadRequest, w.Code, workers)
	}
}

func TestBodyTooLarge(t *testing.T) {
	eng, _ := newEngine(t, endsInOne, true)
	h := NewHandler(eng, WithMaxBodySize(64))

	big := strings.Repeat("0,1\n", 64)
	w := do(t, h, http.MethodPost, "/classify/batch", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())

	w = do(t, h, http.MethodPost, "/classify", `{"input":"`+strings.Repeat("0,", 64)+`1"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())

	w = do(t, h, http.MethodPost, "/classify/batch", "0,1\n1\n")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-Total"))
}

func TestGetAutomatonAndGraph(t *testing.T) {
	eng, _ := newEngine(t, endsInOne, true)
	h := NewHandler(eng)

	w := do(t, h, http.MethodGet, "/automaton", "")
	require.Equal(t, http.StatusOK, w.Code)
	var def domain.Definition
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &def))
	assert.Equal(t, []string{"q0", "q1"}, def.States)
	assert.Equal(t, "q0", def.Start)
	assert.Len(t, def.Rules, 4)

	w = do(t, h, http.MethodGet, "/graph", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stateDiagram-v2")

	w = do(t, h, http.MethodGet, "/graph?format=mermaid&input=0,1", "")
	assert.Contains(t, w.Body.String(), "class q1 current")

	w = do(t, h, http.MethodGet, "/graph?format=dot", "")
	assert.Contains(t, w.Body.String(), "digraph DFA")

	w = do(t, h, http.MethodGet, "/graph?format=markdown", "")
	assert.Contains(t, w.Body.String(), "| State | 0 | 1 |")

	w = do(t, h, http.MethodGet, "/graph?format=svg", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReload(t *testing.T) {
	eng, loader := newEngine(t, endsInOne, true)
	h := NewHandler(eng)

	require.NoError(t, loader.Save(context.Background(), &memoryBroken))
	w := do(t, h, http.MethodPost, "/reload", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// previous automaton still serves
	w = do(t, h, http.MethodPost, "/classify", `{"input":"1"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, loader.Save(context.Background(), &memoryValid))
	w = do(t, h, http.MethodPost, "/reload", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"states":1,"symbols":1}`, w.Body.String())
}

func TestMetricsAndInfo(t *testing.T) {
	eng, _ := newEngine(t, endsInOne, true)

	h := NewHandler(eng)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/metrics", "").Code)

	h = NewHandler(eng, WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("dfa_up 1\n"))
	})))
	assert.Equal(t, "dfa_up 1\n", do(t, h, http.MethodGet, "/metrics", "").Body.String())

	w := do(t, h, http.MethodGet, "/info", "")
	assert.Contains(t, w.Body.String(), dfa.Version)

	w = do(t, h, http.MethodOptions, "/classify", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSubscribeEvents(t *testing.T) {
	streams := NewStreamManager()
	eng, _ := newEngine(t, endsInOne, false, dfa.WithLifecycleHooks(streams.Hooks()))
	h := NewHandler(eng, WithStreams(streams))

	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	// the subscription is registered before the ping is flushed
	_, err = eng.Load(context.Background())
	require.NoError(t, err)

	var data string
	for data == "" {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: {") {
			data = strings.TrimPrefix(strings.TrimSpace(line), "data: ")
		}
	}
	assert.JSONEq(t, `{"source":"memory","states":2,"symbols":2,"ok":true}`, data)
}

func TestStreamManager_UnsubscribeIsIdempotent(t *testing.T) {
	sm := NewStreamManager()
	ch, cancel := sm.Subscribe()
	sm.Broadcast("x")
	assert.Equal(t, "x", <-ch)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	sm.Broadcast("ignored")
}

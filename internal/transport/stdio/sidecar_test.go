package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/tuskheart/internal/service/audit"
	"github.com/sandevgo/tuskheart/internal/service/emotion"
	"github.com/sandevgo/tuskheart/pkg/srv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeComposer struct {
	mu   sync.Mutex
	reqs []emotion.Request
}

func (f *fakeComposer) Compose(ctx context.Context, req emotion.Request) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if req.IsCrisisMode || req.Subject.Key() == "" {
		return "", false
	}
	return "context for " + req.Subject.Key(), true
}

func decodeAll(t *testing.T, out *bytes.Buffer) []Response {
	t.Helper()
	var resps []Response
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		var r Response
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &r))
		resps = append(resps, r)
	}
	return resps
}

func TestSidecar_AnswersEachLine(t *testing.T) {
	in := strings.Join([]string{
		`{"user_id":"u-1"}`,
		``,
		`{"device_id":"d-9","crisis":true}`,
		`not json`,
		`{"device_id":"d-9","trigger":"scheduled"}`,
		`{}`,
	}, "\n")
	composer := &fakeComposer{}
	var out bytes.Buffer

	err := NewSidecar(composer, strings.NewReader(in), &out).Start(context.Background())
	assert.ErrorIs(t, err, srv.ErrStopped)

	resps := decodeAll(t, &out)
	require.Len(t, resps, 5)
	assert.Equal(t, Response{Context: "context for u-1", OK: true}, resps[0])
	assert.Equal(t, Response{}, resps[1], "crisis yields no context")
	assert.Equal(t, Response{Error: "malformed request"}, resps[2])
	assert.Equal(t, Response{Context: "context for d-9", OK: true}, resps[3])
	assert.Equal(t, Response{}, resps[4])

	require.Len(t, composer.reqs, 4)
	assert.Equal(t, audit.TriggerChatTurn, composer.reqs[0].Trigger)
	assert.True(t, composer.reqs[1].IsCrisisMode)
	assert.Equal(t, audit.TriggerScheduled, composer.reqs[2].Trigger)
}

func TestSidecar_OversizedLineDoesNotStopTheLoop(t *testing.T) {
	huge := `{"user_id":"` + strings.Repeat("x", 70*1024) + `"}`
	in := huge + "\n" + `{"user_id":"u-1"}` + "\n"
	composer := &fakeComposer{}
	var out bytes.Buffer

	err := NewSidecar(composer, strings.NewReader(in), &out).Start(context.Background())
	assert.ErrorIs(t, err, srv.ErrStopped)

	resps := decodeAll(t, &out)
	require.Len(t, resps, 2)
	assert.Equal(t, Response{Error: "malformed request"}, resps[0])
	assert.Equal(t, Response{Context: "context for u-1", OK: true}, resps[1])
	require.Len(t, composer.reqs, 1, "the oversized line never reaches the composer")
}

func TestReadLine(t *testing.T) {
	r := bufio.NewReaderSize(strings.NewReader("short\n"+strings.Repeat("y", 40)+"\nok\r\ntail"), 16)

	tests := []inputLine{
		{text: "short"},
		{tooLong: true},
		{text: "ok"},
		{text: "tail"},
	}
	for i, want := range tests {
		got, err := readLine(r, 20)
		require.NoError(t, err, "line %d", i)
		assert.Equal(t, want, got, "line %d", i)
	}

	_, err := readLine(r, 20)
	assert.ErrorIs(t, err, io.EOF)
}

func TestSidecar_StopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewSidecar(&fakeComposer{}, pr, io.Discard).Start(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sidecar did not stop")
	}
}

func TestSidecar_ResponseShape(t *testing.T) {
	b, err := json.Marshal(Response{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"context":"","ok":false}`, string(b))
}

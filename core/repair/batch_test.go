package repair

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/leofalp/jsonmend/providers/completion"
)

func TestLoadAll_KeepsOrderAndIsolatesFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	loader, _ := newTestLoader(nil, Options{})
	payloads := []RawPayload{
		NewPayload(`{"i": 0}`, "a"),
		NewPayload(``, "b"),
		NewPayload(`{'i': 2,}`, "c"),
		NewPayload(`[3]`, "d"),
	}

	results := loader.LoadAll(context.Background(), payloads, 2)
	require.Len(t, results, 4)

	for i, result := range results {
		assert.Equal(t, payloads[i].Source, result.Payload.Source)
		require.NotNil(t, result.Session)
		assert.Equal(t, payloads[i].Source, result.Session.Payload().Source)
	}
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, ErrPreprocess)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, map[string]any{"i": num("2")}, results[2].Value)
	assert.Equal(t, []any{num("3")}, results[3].Value)
}

func TestLoadAll_BoundsConcurrency(t *testing.T) {
	defer goleak.VerifyNone(t)

	var mu sync.Mutex
	inFlight, peak := 0, 0
	service := completion.Func(func(context.Context, string, string) (string, error) {
		mu.Lock()
		inFlight++
		peak = max(peak, inFlight)
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return `{"ok": true}`, nil
	})
	loader, _ := newTestLoader(service, Options{})

	payloads := make([]RawPayload, 10)
	for i := range payloads {
		payloads[i] = NewPayload(fmt.Sprintf(`{"n": %d`, i), "")
	}

	results := loader.LoadAll(context.Background(), payloads, 3)
	for _, result := range results {
		require.NoError(t, result.Err)
	}
	assert.LessOrEqual(t, peak, 3)
	assert.GreaterOrEqual(t, peak, 1)
}

func TestLoadAll_Canceled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader, _ := newTestLoader(blockingService, Options{})
	results := loader.LoadAll(ctx, []RawPayload{NewPayload(`{"a": 1`, ""), NewPayload(`{"b": 2`, "")}, 0)

	for _, result := range results {
		assert.ErrorIs(t, result.Err, ErrUnrepairable)
		assert.ErrorIs(t, result.Err, context.Canceled)
	}
}

func TestLoadAll_CanceledSkipsValidPayloads(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	service := script(reply{text: "unused"})
	loader, _ := newTestLoader(service, Options{})
	results := loader.LoadAll(ctx, []RawPayload{NewPayload(`{"a":1}`, ""), NewPayload(`[1, 2]`, "")}, 0)

	for _, result := range results {
		assert.Nil(t, result.Value)
		assert.ErrorIs(t, result.Err, ErrUnrepairable)
		assert.ErrorIs(t, result.Err, context.Canceled)
		require.NotNil(t, result.Session)
		assert.Equal(t, 0, result.Session.Len())
	}
	assert.Equal(t, 0, service.Calls())
}

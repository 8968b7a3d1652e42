package completion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/jsonmend/providers/observability"
	"github.com/leofalp/jsonmend/providers/observability/obstest"
)

func TestObserve_Success(t *testing.T) {
	recorder := obstest.New()
	service := Observe(echo("m"), recorder, "stub")

	reply, err := service.Complete(context.Background(), "fast", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "m:fast:prompt", reply)

	spans := recorder.Spans(observability.SpanCompletion)
	require.Len(t, spans, 1)
	assert.True(t, spans[0].Ended)
	assert.Equal(t, observability.StatusOK, spans[0].Status)

	tier, _ := obstest.Attr(spans[0].Attrs, observability.AttrCompletionTier)
	assert.Equal(t, "fast", tier)

	assert.Equal(t, int64(1), recorder.Count(observability.MetricCompletionCalls))
	assert.Len(t, recorder.Samples(observability.MetricCompletionDuration), 1)
}

func TestObserve_Failure(t *testing.T) {
	recorder := obstest.New()
	failing := Func(func(context.Context, string, string) (string, error) {
		return "", FromStatus("stub", 503, "")
	})

	_, err := Observe(failing, recorder, "stub").Complete(context.Background(), "strong", "p")
	require.ErrorIs(t, err, ErrUnavailable)

	spans := recorder.Spans(observability.SpanCompletion)
	require.Len(t, spans, 1)
	assert.Equal(t, observability.StatusError, spans[0].Status)
	assert.Len(t, spans[0].Errors, 1)

	logs := recorder.Logs()
	require.NotEmpty(t, logs)
	assert.Equal(t, "warn", logs[0].Level)
	transient, _ := obstest.Attr(logs[0].Attrs, observability.AttrCompletionTransient)
	assert.Equal(t, true, transient)
}

func TestObserve_NilProvider(t *testing.T) {
	_, wrapped := Observe(echo("m"), nil, "stub").(*observed)
	assert.False(t, wrapped)
}

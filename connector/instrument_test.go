package connector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ssheladiya/graph-explorer/query"
)

func TestInstrument_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	f := FetcherFunc(func(ctx context.Context, q string) ([]byte, error) {
		if q == "fail" {
			return nil, errors.New("down")
		}
		return []byte(`{"ok":true}`), nil
	})

	inst, err := Instrument(f, InstrumentOptions{
		Tracer:  tp.Tracer("test"),
		Meter:   noop.NewMeterProvider().Meter("test"),
		Dialect: query.SPARQL,
	})
	require.NoError(t, err)

	body, err := inst.Fetch(context.Background(), "SELECT * {}")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(body))

	_, err = inst.Fetch(context.Background(), "fail")
	assert.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, SpanFetch, spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "sparql", attrs["graphexplorer.dialect"])
	assert.NotEmpty(t, attrs["graphexplorer.request_id"])
	assert.Equal(t, "11", attrs["graphexplorer.query_length"])
}

func TestInstrument_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	f := FetcherFunc(func(ctx context.Context, q string) ([]byte, error) {
		if q == "bad" {
			return []byte(`{"code":"X","detailedMessage":"y"}`), nil
		}
		return []byte(`[]`), nil
	})

	inst, err := Instrument(f, InstrumentOptions{Meter: mp.Meter("test"), Dialect: query.Gremlin})
	require.NoError(t, err)

	for _, q := range []string{"g.V()", "g.E()", "bad"} {
		_, err := inst.Fetch(context.Background(), q)
		require.NoError(t, err, "error bodies are reported by the executor, not the fetcher")
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	outcomes := map[string]int64{}
	var sawHistogram bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				require.Equal(t, MetricFetchCount, m.Name)
				for _, dp := range data.DataPoints {
					outcome, _ := dp.Attributes.Value("outcome")
					outcomes[outcome.AsString()] += dp.Value
				}
			case metricdata.Histogram[float64]:
				require.Equal(t, MetricFetchLatency, m.Name)
				sawHistogram = true
			}
		}
	}

	assert.Equal(t, int64(2), outcomes["success"])
	assert.Equal(t, int64(1), outcomes["error"])
	assert.True(t, sawHistogram)
}

func TestInstrument_NoSignals(t *testing.T) {
	inst, err := Instrument(FetcherFunc(func(ctx context.Context, q string) ([]byte, error) {
		return []byte(q), nil
	}), InstrumentOptions{})
	require.NoError(t, err)

	body, err := inst.Fetch(context.Background(), "g.V()")
	require.NoError(t, err)
	assert.Equal(t, "g.V()", string(body))
}

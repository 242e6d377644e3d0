package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tbourn/go-contact-backend/internal/config"
)

// keepGlobals restores the global provider and propagator after the test.
func keepGlobals(t *testing.T) {
	t.Helper()
	tp, prop := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(prop)
	})
}

func enabled(name string, insecure bool) config.OTELConfig {
	return config.OTELConfig{
		Enabled:     true,
		Insecure:    insecure,
		Endpoint:    "localhost:4317",
		ServiceName: name,
		SampleRatio: 1,
	}
}

func TestSetupOTel_Disabled_NoOp(t *testing.T) {
	keepGlobals(t)
	before := otel.GetTracerProvider()

	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{Endpoint: "ignored:4317"}, "v0.0.0")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown returned error: %v", err)
	}
	if otel.GetTracerProvider() != before {
		t.Fatalf("disabled tracing must not replace the provider")
	}
}

func TestSetupOTel_InstallsProvider(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []struct {
		name string
		ctx  context.Context
		cfg  config.OTELConfig
	}{
		{"insecure", context.Background(), enabled("contact-insecure", true)},
		{"tls", context.Background(), enabled("contact-tls", false)},
		// The gRPC client connects lazily, so a dead context is fine.
		{"canceled context", canceled, enabled("contact-canceled", true)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			keepGlobals(t)

			shutdown, err := SetupOTel(tc.ctx, tc.cfg, "v1.2.3")
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
				t.Fatalf("expected *sdktrace.TracerProvider, got %T", otel.GetTracerProvider())
			}

			ctx, span := Tracer().Start(context.Background(), "submission.submit")
			carrier := propagation.MapCarrier{}
			otel.GetTextMapPropagator().Inject(ctx, carrier)
			span.End()
			if !strings.HasPrefix(carrier.Get("traceparent"), "00-") {
				t.Fatalf("traceparent not injected: %v", carrier)
			}

			sctx, done := context.WithTimeout(context.Background(), 250*time.Millisecond)
			defer done()
			_ = shutdown(sctx)
		})
	}
}

func TestSetupOTel_FailuresLeaveGlobalsIntact(t *testing.T) {
	cases := []struct {
		name    string
		breakIt func(t *testing.T)
		want    string
	}{
		{
			name: "exporter",
			breakIt: func(t *testing.T) {
				orig := newOTLPExporterFn
				t.Cleanup(func() { newOTLPExporterFn = orig })
				newOTLPExporterFn = func(context.Context, otlptrace.Client) (*otlptrace.Exporter, error) {
					return nil, errors.New("boom-exporter")
				}
			},
			want: "otlp exporter: boom-exporter",
		},
		{
			name: "resource",
			breakIt: func(t *testing.T) {
				orig := newServiceResourceFn
				t.Cleanup(func() { newServiceResourceFn = orig })
				newServiceResourceFn = func(context.Context, string, string) (*resource.Resource, error) {
					return nil, errors.New("boom-resource")
				}
			},
			want: "otel resource: boom-resource",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			keepGlobals(t)
			tc.breakIt(t)
			tp, prop := otel.GetTracerProvider(), otel.GetTextMapPropagator()

			_, err := SetupOTel(context.Background(), enabled("svc", true), "v0")
			if err == nil || err.Error() != tc.want {
				t.Fatalf("err = %v; want %q", err, tc.want)
			}
			if otel.GetTracerProvider() != tp || otel.GetTextMapPropagator() != prop {
				t.Fatalf("globals changed on failure")
			}
		})
	}
}

func TestServiceResource_Attributes(t *testing.T) {
	res, err := newServiceResourceFn(context.Background(), "contactd", "v2.0.0")
	if err != nil {
		t.Fatalf("resource: %v", err)
	}
	want := map[attribute.Key]string{
		"service.name":    "contactd",
		"service.version": "v2.0.0",
		"app.component":   "contact-form",
	}
	got := map[attribute.Key]string{}
	for _, kv := range res.Attributes() {
		got[kv.Key] = kv.Value.Emit()
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("resource %s = %q; want %q", k, got[k], v)
		}
	}
}

func TestExporterOptions(t *testing.T) {
	if n := len(exporterOptions(enabled("a", true))); n != 2 {
		t.Fatalf("insecure options = %d; want 2", n)
	}
	if n := len(exporterOptions(enabled("a", false))); n != 2 {
		t.Fatalf("tls options = %d; want 2", n)
	}
}

func TestTracer_RecordsApplicationSpans(t *testing.T) {
	keepGlobals(t)
	rec := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))

	_, span := Tracer().Start(context.Background(), "submission.submit")
	span.End()

	ended := rec.Ended()
	if len(ended) != 1 {
		t.Fatalf("ended spans = %d; want 1", len(ended))
	}
	if got := ended[0].InstrumentationScope().Name; got != InstrumentationName {
		t.Fatalf("scope = %q; want %q", got, InstrumentationName)
	}
}

func TestFlush(t *testing.T) {
	Flush(nil, time.Second)

	var called bool
	Flush(func(ctx context.Context) error {
		called = true
		if _, ok := ctx.Deadline(); !ok {
			t.Fatalf("expected a deadline on the shutdown context")
		}
		return errors.New("exporter gone")
	}, 50*time.Millisecond)
	if !called {
		t.Fatalf("shutdown not invoked")
	}
}

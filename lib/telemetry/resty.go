package telemetry

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentResty traces every request/response exchange made by the
// client under the given tracer name.
func InstrumentResty(client *resty.Client, tracerName string) {
	tracer := otel.Tracer(tracerName)

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		ctx, _ := tracer.Start(req.Context(), req.Method)
		req.SetContext(ctx)
		return nil
	})
	client.OnAfterResponse(onAfterResponse)
	client.OnError(onError)
}

func onAfterResponse(_ *resty.Client, res *resty.Response) error {
	span := trace.SpanFromContext(res.Request.Context())
	defer span.End()

	// the request attributes are set here since res.Request.RawRequest
	// is nil in OnBeforeRequest
	span.SetName(fmt.Sprintf("http %s", res.Request.Method))
	span.SetAttributes(
		attribute.String("url", res.Request.URL),
		attribute.Int("status_code", res.StatusCode()),
		attribute.String("content_type", res.Header().Get("Content-Type")),
		attribute.Int("body_bytes", len(res.Body())),
	)
	return nil
}

func onError(req *resty.Request, err error) {
	span := trace.SpanFromContext(req.Context())
	defer span.End()

	span.SetName(fmt.Sprintf("http %s", req.Method))
	span.SetAttributes(attribute.String("url", req.URL))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

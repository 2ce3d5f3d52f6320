// Package template loads the OTP email layout from object storage.
package template

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/storage"
	"go.opentelemetry.io/otel/codes"
)

const maxTemplateSize = 64 << 10

// Object serves the layout stored at bucket/key. The body is downloaded
// again only when the object's ETag changes.
type Object struct {
	reader storage.Reader
	bucket string
	key    string
	ins    instrument.Instrumentation

	mu   sync.Mutex
	etag string
	body string
}

func NewObject(reader storage.Reader, bucket, key string, ins instrument.Instrumentation) *Object {
	return &Object{reader: reader, bucket: bucket, key: key, ins: ins}
}

func (o *Object) Template(ctx context.Context) (_ string, err error) {
	ctx, span := o.ins.Tracer("otp.outbound.template").Start(ctx, "Template")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	info, err := o.reader.StatObject(ctx, o.bucket, o.key)
	if err != nil {
		return "", err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if info.ETag != "" && info.ETag == o.etag {
		return o.body, nil
	}

	rc, info, err := o.reader.GetObject(ctx, o.bucket, o.key)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	b, err := io.ReadAll(io.LimitReader(rc, maxTemplateSize+1))
	if err != nil {
		return "", err
	}
	if len(b) > maxTemplateSize {
		return "", fmt.Errorf("template: %s/%s exceeds %d bytes", o.bucket, o.key, maxTemplateSize)
	}

	o.etag, o.body = info.ETag, string(b)
	return o.body, nil
}

package extlog

import (
	"context"
	"io"
	"testing"
)

func BenchmarkContextHandler(b *testing.B) {
	f, err := NewTemplateFormatter(NewEnv(nil), FormatterConfig{Source: DefaultTemplate})
	if err != nil {
		b.Fatal(err)
	}
	h := NewHandler(&Config{
		Writer:    io.Discard,
		Formatter: f,
	})
	log := New(h, WithInjectors(RequestIDInjector, TraceInjector))
	ctx := requestContext("http://bench.local/items?page=2")

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			log.InfoContext(ctx, "test")
		}
	})
}

func BenchmarkContextHandlerNoRequest(b *testing.B) {
	log := New(NewHandler(&Config{Writer: io.Discard}))

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			log.InfoContext(context.Background(), "test")
		}
	})
}

// Package build generates batches of routers.
//
// A Builder runs an optional compile step (forge build), generates every
// requested router in parallel and delivers the documents to its targets.
// Generation finishes for the whole batch before anything is written: when
// one router fails, no file of the batch is touched.
//
// # Usage
//
//	b, err := build.NewFromConfig(ctx, cfg, build.Options{})
//	if err != nil {
//	    return err
//	}
//	result, err := b.Build(ctx, requests)
//	if err != nil {
//	    return err
//	}
//
//	for _, r := range result.Routers {
//	    fmt.Println("Generated router file:", r.Outputs[0].Location)
//	}
//
// Each batch and each router gets an OpenTelemetry span from the global
// tracer provider.
package build

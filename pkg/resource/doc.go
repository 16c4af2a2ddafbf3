// Package resource caches middle-tier resources in the user session and
// revalidates them with conditional requests.
//
// Each [Source] names a resource server and the Basic credentials this
// application uses for it. [Fetcher.EnsureFresh] looks at the session slot
// for a source key and:
//
//   - returns immediately while the cached Expires is in the future;
//   - otherwise issues a GET carrying If-None-Match when an ETag is cached;
//   - stores the outcome: new data on 200, carried-forward data on 304,
//     an unauthorized marker on 401, and a cleared slot (plus an error log)
//     on 403, any other status or a transport error.
//
// [Classify] is the status mapping used by the fetcher and is total over
// all status codes.
//
//	f := resource.NewFetcher(client, sources,
//		resource.WithLogger(log),
//		resource.WithMetrics(resource.NewMetrics(prometheus.DefaultRegisterer)),
//	)
//	if err := f.EnsureFresh(ctx, sess, "middle"); err != nil {
//		return err // unknown key
//	}
package resource

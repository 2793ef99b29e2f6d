// Package prefetch warms the query cache with several color lists in
// parallel, e.g. at process start.
//
// # Usage
//
//	warmer := prefetch.NewWarmer(queryCache, prefetch.DefaultConfig())
//	report, err := warmer.Warm(ctx, []string{"bestOf", "wikipedia"})
//	if err != nil {
//		log.Warn().Err(err).Strs("failed", report.FailedNames()).Msg("prefetch incomplete")
//	}
//
// Failures of individual lists do not stop the other workers; they are
// collected in Report.Failed and are not cached, so a later GetList retries.
package prefetch

// Package explorer compiles graph exploration requests into Gremlin,
// openCypher and SPARQL queries and runs them through a caller supplied
// transport.
//
// The query builders live in the query package and its dialect
// subpackages; this package ties them to a connector.Fetcher and the
// optional decorators around it.
//
// # Core Concepts
//
//   - Requests: value objects such as query.KeywordSearchRequest and
//     query.NeighborsRequest whose zero values are sensible defaults
//   - Builders: one per dialect, pure functions from request to query text
//   - Fetcher: sends query text to the database and returns the raw body
//   - Decorators: instrumentation, Redis response cache and deduplication
//
// # Getting Started
//
//	fetch := connector.FetcherFunc(func(ctx context.Context, q string) ([]byte, error) {
//		return postToDatabase(ctx, q)
//	})
//
//	exp, err := explorer.New(query.Gremlin, fetch,
//		explorer.WithLogger(logger),
//		explorer.WithMeter(otel.Meter("my-app")),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer explorer.CloseWithLog(exp, logger, "explorer")
//
//	res, err := exp.FetchNeighbors(ctx, query.NewNeighbors("124").
//		WithNeighborTypes("airport").
//		WithPage(0, 10))
//
// The body of a Result is returned untouched; decoding it is up to the
// caller. Bodies shaped like a database error fail with an error matching
// connector.ErrQueryFailed.
//
// # SPARQL neighbors
//
// SPARQL neighbor expansion takes two round trips. FetchNeighbors returns
// the neighbor subjects and their literal attributes; the caller then asks
// FetchSubjectPredicates for the predicates that link the expanded resource
// to those subjects.
//
// # Error Handling
//
// Errors are returned as *ExplorerError values carrying the failed
// operation and a kind:
//
//	res, err := exp.KeywordSearch(ctx, req)
//	if errors.Is(err, &explorer.ExplorerError{Kind: explorer.KindTimeout}) {
//		// retry with a larger deadline
//	}
//	if errors.Is(err, connector.ErrQueryFailed) {
//		// the database rejected the query
//	}
//
// Cancelled searches return context.Canceled unwrapped.
package explorer

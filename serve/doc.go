// Package serve exposes query compilation over gRPC.
//
// The server hosts one unary service, graphexplorer.v1.QueryCompiler, whose
// Compile method takes a google.protobuf.Struct of the form
//
//	{"dialect": "sparql", "operation": "neighbors", "request": {...}}
//
// and answers {"dialect", "operation", "query"}. The request object carries
// the same JSON fields as the query package request types. The standard gRPC
// health service is registered alongside it.
//
// # Usage
//
//	func main() {
//	    err := serve.Compiler(context.Background(),
//	        serve.WithPort(50051),
//	        serve.WithGracefulShutdown(30*time.Second),
//	        serve.WithRegistryFromEnv(),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// Clients call the service with NewCompilerClient:
//
//	conn, _ := grpc.NewClient("localhost:50051",
//	    grpc.WithTransportCredentials(insecure.NewCredentials()))
//	q, err := serve.NewCompilerClient(conn).Compile(ctx, query.Gremlin,
//	    query.OpNeighborsCount, query.NeighborsCountRequest{VertexID: "124"})
//
// # Shutdown
//
// Serve returns when its context is cancelled or on SIGINT/SIGTERM. Active
// RPCs get GracefulTimeout to finish before the server is stopped hard, and
// a registered instance is removed from the registry first.
package serve

package rpc

// serviceProto is the single .proto source the daemon parses at
// startup via jhump/protoreflect's protoparse, exactly the
// "no generated .pb.go stubs needed" reflection-based approach the
// teacher's internal/evaluator/builtins_grpc.go uses for its dynamic
// gRPC client, here repurposed into a dynamic server: the descriptor
// is produced from this string instead of a .proto file on disk.
const serviceProto = `
syntax = "proto3";
package vetta;

service Analyzer {
	rpc AnalyzeFile (AnalyzeFileRequest) returns (AnalyzeFileResponse);
}

message AnalyzeFileRequest {
	string path = 1;
}

message AnalyzeFileResponse {
	string run_id = 1;
	string issues_json = 2;
}
`

const (
	serviceName = "vetta.Analyzer"
	methodName  = "AnalyzeFile"
)

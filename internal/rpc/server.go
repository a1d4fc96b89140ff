// Package rpc implements the `vetta analyze --serve` daemon: a
// long-lived process exposing one dynamic gRPC method,
// vetta.Analyzer/AnalyzeFile, so editor integrations can query a
// warm, already-scanned codebase without re-running the CLI per file.
//
// The service descriptor is parsed at startup from an in-memory .proto
// string (no generated .pb.go stubs), and requests are decoded/encoded
// as dynamic.Message — the same reflection-based technique the
// teacher's internal/evaluator/builtins_grpc.go uses for its dynamic
// gRPC *client*, repurposed here into a dynamic *server*. Libraries:
// github.com/jhump/protoreflect (desc, desc/protoparse, dynamic),
// google.golang.org/grpc, google.golang.org/protobuf.
package rpc

import (
	"context"
	"fmt"
	"net"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
)

// AnalyzeFunc answers one AnalyzeFile request for path with a run id and
// that run's JSON report bytes, exactly what internal/report.WriteJSON
// produces for the run. cmd/vetta's implementation answers every request
// with the report of the analysis it ran at startup; it does not
// re-analyze path.
type AnalyzeFunc func(ctx context.Context, path string) (runID string, issuesJSON []byte, err error)

// Server wraps a grpc.Server bound to the dynamically-parsed
// vetta.Analyzer service.
type Server struct {
	grpcServer *grpc.Server
	analyze    AnalyzeFunc
}

// New parses the embedded proto descriptor and registers the dynamic
// handler against analyze.
func New(analyze AnalyzeFunc) (*Server, error) {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{
			"vetta.proto": serviceProto,
		}),
	}
	fds, err := parser.ParseFiles("vetta.proto")
	if err != nil {
		return nil, fmt.Errorf("rpc: parsing service descriptor: %w", err)
	}
	if len(fds) == 0 {
		return nil, fmt.Errorf("rpc: no file descriptors produced")
	}
	sd := fds[0].FindService(serviceName)
	if sd == nil {
		return nil, fmt.Errorf("rpc: service %s not found in descriptor", serviceName)
	}
	md := sd.FindMethodByName(methodName)
	if md == nil {
		return nil, fmt.Errorf("rpc: method %s not found in service %s", methodName, serviceName)
	}

	handler := &dynamicHandler{analyze: analyze, md: md}
	grpcDesc := &grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*any)(nil),
		Methods: []grpc.MethodDesc{{
			MethodName: methodName,
			Handler: func(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
				return srv.(*dynamicHandler).handleUnary(ctx, dec)
			},
		}},
		Metadata: fds[0].GetName(),
	}

	s := grpc.NewServer()
	s.RegisterService(grpcDesc, handler)
	return &Server{grpcServer: s, analyze: analyze}, nil
}

// Serve listens on addr and blocks serving RPCs until the listener or
// server errors, mirroring the teacher's own grpcServe builtin.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("rpc: listen %s: %w", addr, err)
	}
	return s.grpcServer.Serve(lis)
}

// Stop gracefully stops the daemon, mirroring the teacher's grpcStop.
func (s *Server) Stop() { s.grpcServer.GracefulStop() }

type dynamicHandler struct {
	analyze AnalyzeFunc
	md      *desc.MethodDescriptor
}

func (h *dynamicHandler) handleUnary(ctx context.Context, dec func(any) error) (any, error) {
	reqMsg := dynamic.NewMessage(h.md.GetInputType())
	if err := dec(reqMsg); err != nil {
		return nil, err
	}
	path, _ := reqMsg.TryGetFieldByName("path")
	pathStr, _ := path.(string)

	runID, issuesJSON, err := h.analyze(ctx, pathStr)
	if err != nil {
		return nil, err
	}

	respMsg := dynamic.NewMessage(h.md.GetOutputType())
	if err := respMsg.TrySetFieldByName("run_id", runID); err != nil {
		return nil, err
	}
	if err := respMsg.TrySetFieldByName("issues_json", string(issuesJSON)); err != nil {
		return nil, err
	}
	return respMsg, nil
}

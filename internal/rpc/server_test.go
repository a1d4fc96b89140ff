package rpc

import (
	"context"
	"testing"

	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
)

func TestNewBuildsServerFromEmbeddedProto(t *testing.T) {
	s, err := New(func(ctx context.Context, path string) (string, []byte, error) {
		return "run-1", []byte(`{"issues":[]}`), nil
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.grpcServer == nil {
		t.Fatalf("expected a non-nil grpc server")
	}
}

func TestHandleUnaryInvokesAnalyzeAndEncodesResponse(t *testing.T) {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{"vetta.proto": serviceProto}),
	}
	fds, err := parser.ParseFiles("vetta.proto")
	if err != nil {
		t.Fatalf("ParseFiles: %v", err)
	}
	sd := fds[0].FindService(serviceName)
	md := sd.FindMethodByName(methodName)

	var gotPath string
	h := &dynamicHandler{md: md, analyze: func(ctx context.Context, path string) (string, []byte, error) {
		gotPath = path
		return "run-42", []byte(`{"issues":[]}`), nil
	}}

	reqMsg := dynamic.NewMessage(md.GetInputType())
	if err := reqMsg.TrySetFieldByName("path", "a.fx"); err != nil {
		t.Fatalf("TrySetFieldByName: %v", err)
	}

	resp, err := h.handleUnary(context.Background(), func(v any) error {
		msg := v.(*dynamic.Message)
		bytes, marshalErr := reqMsg.Marshal()
		if marshalErr != nil {
			return marshalErr
		}
		return msg.Unmarshal(bytes)
	})
	if err != nil {
		t.Fatalf("handleUnary: %v", err)
	}
	if gotPath != "a.fx" {
		t.Fatalf("expected analyze to receive path a.fx, got %q", gotPath)
	}
	respMsg := resp.(*dynamic.Message)
	runID, _ := respMsg.TryGetFieldByName("run_id")
	if runID != "run-42" {
		t.Fatalf("expected run_id run-42, got %v", runID)
	}
}

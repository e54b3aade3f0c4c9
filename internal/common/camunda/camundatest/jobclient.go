// Package camundatest provides an in-memory worker.JobClient for handler tests.
package camundatest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"google.golang.org/grpc"
)

const (
	MethodComplete   = "CompleteJob"
	MethodFail       = "FailJob"
	MethodThrowError = "ThrowError"
)

// Call is one command that reached the gateway.
type Call struct {
	Method       string
	JobKey       int64
	Retries      int32
	ErrorCode    string
	ErrorMessage string
	Variables    map[string]interface{}
	// CtxErr is the command context's error when it was sent.
	CtxErr error
}

// JobClient builds the real zeebe commands over a recording gateway.
type JobClient struct {
	gateway *gateway
}

var _ worker.JobClient = (*JobClient)(nil)

func NewJobClient() *JobClient {
	return &JobClient{gateway: &gateway{}}
}

// FailWith makes every following command return err.
func (c *JobClient) FailWith(err error) {
	c.gateway.mu.Lock()
	defer c.gateway.mu.Unlock()
	c.gateway.err = err
}

// Calls returns the recorded commands in send order.
func (c *JobClient) Calls() []Call {
	c.gateway.mu.Lock()
	defer c.gateway.mu.Unlock()
	return append([]Call(nil), c.gateway.calls...)
}

func (c *JobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.gateway, noRetry)
}

func (c *JobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.gateway, noRetry)
}

func (c *JobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.gateway, noRetry)
}

func noRetry(context.Context, error) bool { return false }

// gateway implements the three job commands; any other GatewayClient method panics.
type gateway struct {
	pb.GatewayClient

	mu    sync.Mutex
	calls []Call
	err   error
}

// record behaves like a gRPC call: an expired context fails the command.
func (g *gateway) record(ctx context.Context, call Call, variables string) error {
	call.CtxErr = ctx.Err()
	if variables != "" {
		_ = json.Unmarshal([]byte(variables), &call.Variables)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call)
	if call.CtxErr != nil {
		return call.CtxErr
	}
	return g.err
}

func (g *gateway) CompleteJob(ctx context.Context, in *pb.CompleteJobRequest, _ ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	if err := g.record(ctx, Call{Method: MethodComplete, JobKey: in.GetJobKey()}, in.GetVariables()); err != nil {
		return nil, err
	}
	return &pb.CompleteJobResponse{}, nil
}

func (g *gateway) FailJob(ctx context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	call := Call{
		Method:       MethodFail,
		JobKey:       in.GetJobKey(),
		Retries:      in.GetRetries(),
		ErrorMessage: in.GetErrorMessage(),
	}
	if err := g.record(ctx, call, in.GetVariables()); err != nil {
		return nil, err
	}
	return &pb.FailJobResponse{}, nil
}

func (g *gateway) ThrowError(ctx context.Context, in *pb.ThrowErrorRequest, _ ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	call := Call{
		Method:       MethodThrowError,
		JobKey:       in.GetJobKey(),
		ErrorCode:    in.GetErrorCode(),
		ErrorMessage: in.GetErrorMessage(),
	}
	if err := g.record(ctx, call, in.GetVariables()); err != nil {
		return nil, err
	}
	return &pb.ThrowErrorResponse{}, nil
}

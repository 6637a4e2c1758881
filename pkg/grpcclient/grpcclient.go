package grpcclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/resolver"
	"google.golang.org/grpc/status"
)

const (
	ResolverDefaultScheme = "dns"

	defaultLoadBalancingPolicy = "round_robin"
)

// GRPCClient wraps a gRPC client connection with metrics support. It
// satisfies grpc.ClientConnInterface so service clients can be built on it
// directly.
type GRPCClient struct {
	Conn                *grpc.ClientConn
	DeadLine            int64
	externalServiceName string
	timing              func(name string, value time.Duration, tags []string)
	count               func(name string, value int64, tags []string)
}

// NewConnFromConfig creates a new gRPC connection from the provided configuration
func NewConnFromConfig(config *Config, externalServiceName string, timing func(name string, value time.Duration, tags []string), count func(name string, value int64, tags []string)) *GRPCClient {
	conn, err := getGRPCConnections(*config)
	if err != nil {
		log.Panic().Msgf("error while GRPC connection initialization. %s", err)
	}
	conn.externalServiceName = externalServiceName
	conn.timing = timing
	conn.count = count
	return conn
}

func getGRPCConnections(config Config) (*GRPCClient, error) {
	resolver.SetDefaultScheme(ResolverDefaultScheme)
	policy := config.LoadBalancingPolicy
	if policy == "" {
		policy = defaultLoadBalancingPolicy
	}
	target := config.Host + ":" + config.Port
	opts := []grpc.DialOption{
		grpc.WithDefaultServiceConfig(fmt.Sprintf(`{"loadBalancingPolicy":%q}`, policy)),
	}
	if len(config.EtcdEndpoints) > 0 {
		builder, err := NewEtcdResolverBuilder(config.EtcdEndpoints)
		if err != nil {
			return nil, err
		}
		opts = append(opts, grpc.WithResolvers(builder))
		target = EtcdScheme + ":///" + config.Host
	}
	if config.PlainText {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	} else {
		creds := credentials.NewTLS(&tls.Config{InsecureSkipVerify: true})
		opts = append(opts, grpc.WithTransportCredentials(creds))
	}
	gConn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	return &GRPCClient{Conn: gConn, DeadLine: int64(config.DeadLine)}, nil
}

// Invoke is a wrapper around grpc.ClientConn.Invoke with metrics support
func (c *GRPCClient) Invoke(ctx context.Context, method string, args any, reply any, opts ...grpc.CallOption) error {
	startTime := time.Now()
	err := c.Conn.Invoke(ctx, method, args, reply, opts...)
	code := statusCode(err)
	latency := time.Since(startTime)
	if c.timing != nil {
		c.timing("inference.grpc.invoke.latency", latency, BuildExternalGRPCServiceLatencyTags(c.externalServiceName, method, code))
	}
	if c.count != nil {
		c.count("inference.grpc.invoke.count", 1, BuildExternalGRPCServiceCountTags(c.externalServiceName, method, code))
	}
	return err
}

// NewStream is a wrapper around grpc.ClientConn.NewStream with metrics
// support. Only stream creation is counted; per-message accounting is the
// caller's concern.
func (c *GRPCClient) NewStream(ctx context.Context, desc *grpc.StreamDesc, method string, opts ...grpc.CallOption) (grpc.ClientStream, error) {
	stream, err := c.Conn.NewStream(ctx, desc, method, opts...)
	if c.count != nil {
		c.count("inference.grpc.stream.count", 1, BuildExternalGRPCServiceCountTags(c.externalServiceName, method, statusCode(err)))
	}
	return stream, err
}

// Close tears down the underlying connection.
func (c *GRPCClient) Close() error {
	return c.Conn.Close()
}

func statusCode(err error) int {
	if err == nil {
		return 0
	}
	if e, ok := status.FromError(err); ok {
		return int(e.Code())
	}
	return 0
}

// BuildExternalGRPCServiceLatencyTags builds tags for latency metrics
func BuildExternalGRPCServiceLatencyTags(service, method string, statusCode int) []string {
	return []string{
		"communication_protocol:grpc",
		"external_service:" + service,
		"method:" + method,
		"grpc_status_code:" + strconv.Itoa(statusCode),
	}
}

// BuildExternalGRPCServiceCountTags builds tags for count metrics
func BuildExternalGRPCServiceCountTags(service, method string, statusCode int) []string {
	return []string{
		"communication_protocol:grpc",
		"external_service:" + service,
		"method:" + method,
		"grpc_status_code:" + strconv.Itoa(statusCode),
	}
}

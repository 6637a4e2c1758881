package grpcclient

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	clientv3 "go.etcd.io/etcd/client/v3"
	"google.golang.org/grpc/resolver"
)

// EtcdScheme is the target scheme handled by the etcd resolver, used as
// etcd:///<key-prefix>. Every value stored under the prefix is one
// host:port backend address.
const EtcdScheme = "etcd"

const etcdDialTimeout = 5 * time.Second

// NewEtcdResolverBuilder connects to the etcd cluster and returns a
// resolver builder for discovery-driven deployments.
func NewEtcdResolverBuilder(endpoints []string) (resolver.Builder, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: etcdDialTimeout,
	})
	if err != nil {
		return nil, err
	}
	return &etcdResolverBuilder{cli: cli}, nil
}

type etcdResolverBuilder struct {
	cli *clientv3.Client
}

func (b *etcdResolverBuilder) Scheme() string {
	return EtcdScheme
}

func (b *etcdResolverBuilder) Build(target resolver.Target, cc resolver.ClientConn, _ resolver.BuildOptions) (resolver.Resolver, error) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &etcdResolver{
		cli:    b.cli,
		prefix: target.Endpoint(),
		cc:     cc,
		ctx:    ctx,
		cancel: cancel,
	}
	if err := r.resolve(); err != nil {
		cancel()
		return nil, err
	}
	go r.watch()
	return r, nil
}

type etcdResolver struct {
	cli    *clientv3.Client
	prefix string
	cc     resolver.ClientConn
	ctx    context.Context
	cancel context.CancelFunc
}

func (r *etcdResolver) resolve() error {
	ctx, cancel := context.WithTimeout(r.ctx, etcdDialTimeout)
	defer cancel()
	resp, err := r.cli.Get(ctx, r.prefix, clientv3.WithPrefix())
	if err != nil {
		return err
	}
	addrs := make([]resolver.Address, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		addrs = append(addrs, resolver.Address{Addr: string(kv.Value)})
	}
	return r.cc.UpdateState(resolver.State{Addresses: addrs})
}

func (r *etcdResolver) watch() {
	ch := r.cli.Watch(r.ctx, r.prefix, clientv3.WithPrefix())
	for range ch {
		if err := r.resolve(); err != nil {
			log.Error().Err(err).Msgf("re-resolving backends under etcd prefix %s failed", r.prefix)
			r.cc.ReportError(err)
		}
	}
}

func (r *etcdResolver) ResolveNow(resolver.ResolveNowOptions) {
	if err := r.resolve(); err != nil {
		r.cc.ReportError(err)
	}
}

func (r *etcdResolver) Close() {
	r.cancel()
}

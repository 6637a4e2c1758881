package grpcclient

// Config holds the connection settings for one inference server endpoint.
// EtcdEndpoints switches address resolution from host:port to an etcd
// prefix watch; Host then names the key prefix to watch.
type Config struct {
	Host                string
	Port                string
	DeadLine            int
	LoadBalancingPolicy string
	PlainText           bool
	EtcdEndpoints       []string
}

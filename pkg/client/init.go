package client

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nieksand/triton-inference-server/pkg/grpcclient"
)

const (
	Version1 = 1

	V1Prefix = "TRITON_CLIENT_V1_"
)

var (
	registry = make(map[int]InferenceServerClient)
	mut      sync.Mutex
)

// InitClient initialises the client for the given version
func InitClient(version int, conf *ClientConfig, timing func(name string, value time.Duration, tags []string), count func(name string, value int64, tags []string)) InferenceServerClient {
	mut.Lock()
	defer mut.Unlock()
	if registry[version] != nil {
		log.Panic().Msgf("Client for version %d already initialised", version)
	}
	switch version {
	case Version1:
		registry[version] = NewClientV1(conf, timing, count)
	}
	return registry[version]
}

// InitClientFromEnv initialises the client for the given version with
// configuration read from viper-bound environment keys.
func InitClientFromEnv(version int, timing func(name string, value time.Duration, tags []string), count func(name string, value int64, tags []string)) InferenceServerClient {
	conf, err := grpcclient.ConfigFromEnv(V1Prefix)
	if err != nil {
		log.Panic().Err(err).Msgf("Invalid inference client configs")
	}
	return InitClient(version, &ClientConfig{
		Host:                conf.Host,
		Port:                conf.Port,
		DeadLine:            conf.DeadLine,
		PlainText:           conf.PlainText,
		LoadBalancingPolicy: conf.LoadBalancingPolicy,
		EtcdEndpoints:       conf.EtcdEndpoints,
	}, timing, count)
}

// GetInstance returns the client for the given version
func GetInstance(version int) InferenceServerClient {
	if registry[version] == nil {
		log.Panic().Msgf("Client for version %d not initialised", version)
	}
	return registry[version]
}

package grpcclient

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestConfigFromEnv(t *testing.T) {
	viper.Set("TRITON_CLIENT_V1_HOST", "localhost")
	viper.Set("TRITON_CLIENT_V1_PORT", "8001")
	viper.Set("TRITON_CLIENT_V1_DEADLINE_MS", 500)
	viper.Set("TRITON_CLIENT_V1_PLAIN_TEXT", true)
	defer viper.Reset()

	config, err := ConfigFromEnv("TRITON_CLIENT_V1_")
	assert.NoError(t, err)
	assert.Equal(t, "localhost", config.Host)
	assert.Equal(t, "8001", config.Port)
	assert.Equal(t, 500, config.DeadLine)
	assert.True(t, config.PlainText)
	assert.Empty(t, config.EtcdEndpoints)
}

func TestConfigFromEnvMissingHost(t *testing.T) {
	viper.Reset()
	_, err := ConfigFromEnv("TRITON_CLIENT_V1_")
	assert.Error(t, err)
}

func TestConfigFromEnvMissingDeadline(t *testing.T) {
	viper.Set("TRITON_CLIENT_V1_HOST", "localhost")
	viper.Set("TRITON_CLIENT_V1_PORT", "8001")
	defer viper.Reset()

	_, err := ConfigFromEnv("TRITON_CLIENT_V1_")
	assert.Error(t, err)
}

func TestConfigFromEnvEtcdDiscovery(t *testing.T) {
	viper.Set("TRITON_CLIENT_V1_HOST", "/services/triton")
	viper.Set("TRITON_CLIENT_V1_DEADLINE_MS", 500)
	viper.Set("TRITON_CLIENT_V1_ETCD_ENDPOINTS", []string{"etcd-0:2379", "etcd-1:2379"})
	defer viper.Reset()

	config, err := ConfigFromEnv("TRITON_CLIENT_V1_")
	assert.NoError(t, err)
	assert.Equal(t, []string{"etcd-0:2379", "etcd-1:2379"}, config.EtcdEndpoints)
	assert.Empty(t, config.Port)
}

func TestBuildGRPCServiceTags(t *testing.T) {
	tags := BuildExternalGRPCServiceLatencyTags("triton", "/inference.GRPCInferenceService/ModelInfer", 0)
	assert.Equal(t, []string{
		"communication_protocol:grpc",
		"external_service:triton",
		"method:/inference.GRPCInferenceService/ModelInfer",
		"grpc_status_code:0",
	}, tags)
}

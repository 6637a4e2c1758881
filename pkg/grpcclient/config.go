package grpcclient

import (
	"fmt"

	"github.com/spf13/viper"
)

// Environment key suffixes appended to the caller's prefix.
const (
	envHost                = "HOST"
	envPort                = "PORT"
	envDeadlineMS          = "DEADLINE_MS"
	envPlainText           = "PLAIN_TEXT"
	envLoadBalancingPolicy = "LOAD_BALANCING_POLICY"
	envEtcdEndpoints       = "ETCD_ENDPOINTS"
)

// ConfigFromEnv builds a Config from viper-bound environment keys under the
// given prefix, e.g. prefix "TRITON_CLIENT_V1_" reads TRITON_CLIENT_V1_HOST.
func ConfigFromEnv(prefix string) (*Config, error) {
	viper.AutomaticEnv()
	config := &Config{
		Host:                viper.GetString(prefix + envHost),
		Port:                viper.GetString(prefix + envPort),
		DeadLine:            viper.GetInt(prefix + envDeadlineMS),
		PlainText:           viper.GetBool(prefix + envPlainText),
		LoadBalancingPolicy: viper.GetString(prefix + envLoadBalancingPolicy),
		EtcdEndpoints:       viper.GetStringSlice(prefix + envEtcdEndpoints),
	}
	if len(config.Host) == 0 {
		return nil, fmt.Errorf("%s%s is not set", prefix, envHost)
	}
	if len(config.Port) == 0 && len(config.EtcdEndpoints) == 0 {
		return nil, fmt.Errorf("%s%s is not set", prefix, envPort)
	}
	if config.DeadLine <= 0 {
		return nil, fmt.Errorf("%s%s must be a positive millisecond value", prefix, envDeadlineMS)
	}
	return config, nil
}

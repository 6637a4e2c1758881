package metric

// Tag is one statsd key:value pair.
type Tag struct {
	Key   string
	Value string
}

const (
	TagEnv                   = "env"
	TagService               = "service"
	TagMethod                = "method"
	TagExternalService       = "external_service"
	TagGrpcStatusCode        = "grpc_status_code"
	TagCommunicationProtocol = "communication_protocol"

	TagValueCommunicationProtocolGrpc = "grpc"
)

// NewTag builds one tag.
func NewTag(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// TagAsString renders a key/value pair in statsd form.
func TagAsString(key, value string) string {
	return key + ":" + value
}

// BuildTag renders tags into the statsd string slice form.
func BuildTag(tags ...Tag) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, TagAsString(tag.Key, tag.Value))
	}
	return out
}

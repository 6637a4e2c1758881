package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/spf13/viper"

	"github.com/nieksand/triton-inference-server/pkg/client"
	"github.com/nieksand/triton-inference-server/pkg/codec"
	"github.com/nieksand/triton-inference-server/pkg/infer"
	"github.com/nieksand/triton-inference-server/pkg/metric"
	"github.com/nieksand/triton-inference-server/pkg/shm"
)

type CLIConfig struct {
	Host          string
	Port          string
	PlainText     bool
	Timeout       int
	Model         string
	SequenceModel string
	UseSharedMem  bool
	UseStreaming  bool
	EtcdServer    string
}

func main() {
	config := parseCLIArgs()

	fmt.Println("🚀 Triton Inference Server Go SDK - Walkthrough")
	fmt.Printf("Connecting to %s:%s (plaintext=%v)\n", config.Host, config.Port, config.PlainText)

	viper.AutomaticEnv()
	metric.Init()

	clientConfig := &client.ClientConfig{
		Host:      config.Host,
		Port:      config.Port,
		DeadLine:  config.Timeout,
		PlainText: config.PlainText,
	}
	if config.EtcdServer != "" {
		clientConfig.EtcdEndpoints = strings.Split(config.EtcdServer, ",")
	}

	c := client.InitClient(client.Version1, clientConfig, metric.Timing, metric.Count)
	defer c.Close()

	ctx := context.Background()

	if !checkHealth(ctx, c, config.Model) {
		os.Exit(1)
	}

	if config.UseSharedMem {
		runSharedMemoryInfer(ctx, c, config.Model)
	} else {
		runInfer(ctx, c, config.Model)
	}

	runSequence(ctx, c, config.SequenceModel, config.UseStreaming)
}

func parseCLIArgs() *CLIConfig {
	config := &CLIConfig{}

	flag.StringVar(&config.Host, "host", "localhost", "Inference server host")
	flag.StringVar(&config.Port, "port", "8001", "Inference server gRPC port")
	flag.BoolVar(&config.PlainText, "plaintext", true, "Use plaintext connection (no TLS)")
	flag.IntVar(&config.Timeout, "timeout", 30000, "Request timeout in milliseconds")
	flag.StringVar(&config.Model, "model", "simple", "Model for the unary inference demo")
	flag.StringVar(&config.SequenceModel, "sequence-model", "simple_sequence", "Model for the streamed sequence demo")
	flag.BoolVar(&config.UseSharedMem, "shm", false, "Pass the input through system shared memory")
	flag.BoolVar(&config.UseStreaming, "streaming", true, "Drive the sequence over one bidirectional stream")
	flag.StringVar(&config.EtcdServer, "etcd", "", "Comma-separated etcd endpoints for server discovery")

	flag.Parse()

	return config
}

func checkHealth(ctx context.Context, c client.InferenceServerClient, model string) bool {
	live, err := c.IsServerLive(ctx)
	if err != nil || !live {
		fmt.Printf("❌ Server is not live: %v\n", err)
		return false
	}
	ready, err := c.IsServerReady(ctx)
	if err != nil || !ready {
		fmt.Printf("❌ Server is not ready: %v\n", err)
		return false
	}

	meta, err := c.ServerMetadata(ctx)
	if err != nil {
		fmt.Printf("❌ Error fetching server metadata: %v\n", err)
		return false
	}
	fmt.Printf("✅ Server %s (version %s) is live and ready\n", meta.Name, meta.Version)

	modelReady, err := c.IsModelReady(ctx, model, "")
	if err != nil || !modelReady {
		fmt.Printf("❌ Model %s is not ready: %v\n", model, err)
		return false
	}

	modelMeta, err := c.ModelMetadata(ctx, model, "")
	if err != nil {
		fmt.Printf("❌ Error fetching model metadata: %v\n", err)
		return false
	}
	fmt.Printf("📦 Model %s: %d inputs, %d outputs, platform %s\n",
		modelMeta.Name, len(modelMeta.Inputs), len(modelMeta.Outputs), modelMeta.Platform)
	return true
}

// runInfer mirrors the classic "simple" example: two int32 input vectors,
// the model returns their sum and difference.
func runInfer(ctx context.Context, c client.InferenceServerClient, model string) {
	values0 := make([]int32, 16)
	values1 := make([]int32, 16)
	for i := range values0 {
		values0[i] = int32(i)
		values1[i] = 1
	}

	input0 := infer.NewInferInput("INPUT0", codec.TypeInt32, []int64{1, 16})
	input1 := infer.NewInferInput("INPUT1", codec.TypeInt32, []int64{1, 16})
	if err := input0.SetData(values0); err != nil {
		fmt.Printf("❌ Error encoding INPUT0: %v\n", err)
		return
	}
	if err := input1.SetData(values1); err != nil {
		fmt.Printf("❌ Error encoding INPUT1: %v\n", err)
		return
	}

	result, err := c.Infer(ctx,
		[]*infer.InferInput{input0, input1},
		[]*infer.InferOutput{infer.NewInferOutput("OUTPUT0"), infer.NewInferOutput("OUTPUT1")},
		model, "", "demo-1")
	if err != nil {
		fmt.Printf("❌ Inference failed: %v\n", err)
		return
	}

	sum, err := result.Output("OUTPUT0")
	if err != nil {
		fmt.Printf("❌ Error decoding OUTPUT0: %v\n", err)
		return
	}
	diff, err := result.Output("OUTPUT1")
	if err != nil {
		fmt.Printf("❌ Error decoding OUTPUT1: %v\n", err)
		return
	}
	fmt.Printf("🧮 OUTPUT0 (sum):  %v\n", sum)
	fmt.Printf("🧮 OUTPUT1 (diff): %v\n", diff)
}

// runSharedMemoryInfer passes INPUT0 through a registered system
// shared-memory region instead of the request body.
func runSharedMemoryInfer(ctx context.Context, c client.InferenceServerClient, model string) {
	values := make([]int32, 16)
	for i := range values {
		values[i] = int32(i)
	}
	raw, err := codec.Encode(values, codec.TypeInt32)
	if err != nil {
		fmt.Printf("❌ Error encoding input: %v\n", err)
		return
	}

	region, err := shm.CreateSharedMemoryRegion("input0_data", "/input0_simple", int64(len(raw)))
	if err != nil {
		fmt.Printf("❌ Error creating shared memory region: %v\n", err)
		return
	}
	defer region.Destroy()
	defer c.UnregisterSystemSharedMemory(ctx, region.Name)

	if err := region.SetData(0, raw); err != nil {
		fmt.Printf("❌ Error writing shared memory: %v\n", err)
		return
	}
	if err := c.RegisterSystemSharedMemory(ctx, region.Name, region.Key, uint64(region.ByteSize), 0); err != nil {
		fmt.Printf("❌ Error registering shared memory: %v\n", err)
		return
	}
	fmt.Printf("🧷 Registered shared memory region %s (%d bytes)\n", region.Name, region.ByteSize)

	input0 := infer.NewInferInput("INPUT0", codec.TypeInt32, []int64{1, 16})
	input0.SetSharedMemory(region.Name, region.ByteSize, 0)
	input1 := infer.NewInferInput("INPUT1", codec.TypeInt32, []int64{1, 16})
	if err := input1.SetData(make([]int32, 16)); err != nil {
		fmt.Printf("❌ Error encoding INPUT1: %v\n", err)
		return
	}

	result, err := c.Infer(ctx,
		[]*infer.InferInput{input0, input1},
		[]*infer.InferOutput{infer.NewInferOutput("OUTPUT0")},
		model, "", "demo-shm")
	if err != nil {
		fmt.Printf("❌ Inference failed: %v\n", err)
		return
	}
	out, err := result.Output("OUTPUT0")
	if err != nil {
		fmt.Printf("❌ Error decoding OUTPUT0: %v\n", err)
		return
	}
	fmt.Printf("🧮 OUTPUT0 via shared memory: %v\n", out)
}

// runSequence drives one stateful sequence: the model accumulates the
// input values across the sequence's requests.
func runSequence(ctx context.Context, c client.InferenceServerClient, model string, streaming bool) {
	values := []int32{0, 5, 10, 15}

	done := make(chan struct{})
	received := 0
	seq := infer.NewSequenceMetadata(42, func(result *infer.InferResult, err error, sequenceID int64) {
		if err != nil {
			fmt.Printf("❌ Sequence %d response error: %v\n", sequenceID, err)
		} else if out, derr := result.Output("OUTPUT"); derr == nil {
			fmt.Printf("🔁 Sequence %d response %s: %v\n", sequenceID, result.ID(), out)
		}
		received++
		if received == len(values) {
			close(done)
		}
	})

	pool := workerpool.New(2)
	defer pool.StopWait()

	opts := []client.SequenceOption{client.WithResponsePool(pool)}
	if !streaming {
		opts = append(opts, client.WithoutStreaming())
	}
	if err := c.AsyncSequenceInfer(ctx, seq, model, "", opts...); err != nil {
		fmt.Printf("❌ Error starting sequence: %v\n", err)
		return
	}

	for i, v := range values {
		in := infer.NewInferInput("INPUT", codec.TypeInt32, []int64{1, 1})
		if err := in.SetData([]int32{v}); err != nil {
			fmt.Printf("❌ Error encoding sequence input: %v\n", err)
			return
		}
		requestID := fmt.Sprintf("seq-42-%d", i)
		if err := seq.AddRequest([]*infer.InferInput{in}, []*infer.InferOutput{infer.NewInferOutput("OUTPUT")}, requestID, i == len(values)-1); err != nil {
			fmt.Printf("❌ Error queueing sequence request: %v\n", err)
			return
		}
	}

	select {
	case <-done:
		fmt.Println("✅ Sequence complete")
	case <-time.After(time.Minute):
		fmt.Println("❌ Timed out waiting for sequence responses")
	}
}

// tfhecuda_info lists the registered backends and the devices of one of them. With -check it also copies a
// buffer to every device and back, concurrently, and verifies its contents.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gomlx/tfhecuda/backend"
	_ "github.com/gomlx/tfhecuda/backend/cudalib"
	_ "github.com/gomlx/tfhecuda/backend/emulator"
	"github.com/gomlx/tfhecuda/cuda"
	"github.com/google/go-cmp/cmp"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/types/known/structpb"
	"k8s.io/klog/v2"
)

var (
	flagBackend = flag.String("backend", "",
		fmt.Sprintf("Backend to inspect. Defaults to $%s, or to %q when compiled in, else %q.",
			backend.BackendEnv, backend.CUDABackend, backend.EmulatorBackend))
	flagFormat = flag.String("format", "text", "Output format: text, json or prototext.")
	flagCheck  = flag.Bool("check", false, "Copy a buffer to every device and back, and check its contents.")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `tfhecuda_info prints the backends available to github.com/gomlx/tfhecuda, and the devices of one of them.

$ tfhecuda_info -backend=emulator -check -format=json

Usage:
`)
		flag.PrintDefaults()
	}
	klog.InitFlags(flag.CommandLine)
	flag.Parse()

	b := must.M1(selectBackend(*flagBackend))
	klog.V(1).Infof("Inspecting backend %q", b.Name())
	info := buildReport(b, *flagCheck)
	fmt.Println(must.M1(formatReport(info, *flagFormat)))
	if failed, _ := info.AsMap()["failed"].(bool); failed {
		os.Exit(1)
	}
}

func selectBackend(name string) (backend.Backend, error) {
	if name == "" {
		return backend.Default()
	}
	return backend.Get(name)
}

// families lists the kernel families implemented by b.
func families(b backend.Backend) []any {
	var names []any
	add := func(ok bool, name string) {
		if ok {
			names = append(names, name)
		}
	}
	_, ok := b.(backend.BootstrapKernels)
	add(ok, "bootstrap")
	_, ok = b.(backend.KeyswitchKernels)
	add(ok, "keyswitch")
	_, ok = b.(backend.KeyConversionKernels)
	add(ok, "key-conversion")
	_, ok = b.(backend.LinearKernels)
	add(ok, "linear")
	_, ok = b.(backend.IntegerKernels)
	add(ok, "integer")
	_, ok = b.(backend.IntegerPBSKernels)
	add(ok, "integer-pbs")
	return names
}

// buildReport queries b and, if check is set, runs the round trip on every device.
func buildReport(b backend.Backend, check bool) *structpb.Struct {
	registered := backend.Registered()
	backends := make([]any, len(registered))
	for i, name := range registered {
		backends[i] = name
	}

	numGPUs := int(b.GetNumberOfGPUs())
	devices := make([]any, numGPUs)
	checks := make([]error, numGPUs)
	if check {
		var g errgroup.Group
		for gpuIndex := range numGPUs {
			g.Go(func() error {
				checks[gpuIndex] = roundTrip(cuda.NewDevice(b, uint32(gpuIndex)))
				return nil
			})
		}
		_ = g.Wait()
	}
	var failed bool
	for gpuIndex := range numGPUs {
		device := cuda.NewDevice(b, uint32(gpuIndex))
		entry := map[string]any{
			"gpu":               gpuIndex,
			"max_shared_memory": device.MaxSharedMemory(),
		}
		if check {
			entry["round_trip"] = "ok"
			if err := checks[gpuIndex]; err != nil {
				entry["round_trip"] = err.Error()
				failed = true
			}
		}
		devices[gpuIndex] = entry
	}

	return must.M1(structpb.NewStruct(map[string]any{
		"registered": backends,
		"backend":    b.Name(),
		"kernels":    families(b),
		"devices":    devices,
		"failed":     failed,
	}))
}

const roundTripLen = 12

// roundTrip copies [1..12] to the device and back on a new stream.
func roundTrip(device cuda.Device) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = errors.Errorf("%v", r)
		}
	}()
	s := cuda.NewStream(device)
	defer s.Destroy()
	want := make([]uint64, roundTripLen)
	for i := range want {
		want[i] = uint64(i + 1)
	}
	v := cuda.VecFromHost(s, want)
	defer v.Destroy()
	if diff := cmp.Diff(want, cuda.VecToHost(s, v)); diff != "" {
		return errors.Errorf("round trip on %s returned different contents (-want +got):\n%s", device, diff)
	}
	klog.V(2).Infof("Round trip on %s ok", device)
	return nil
}

func formatReport(info *structpb.Struct, format string) (string, error) {
	switch strings.ToLower(format) {
	case "json":
		blob, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(info)
		return string(blob), errors.WithStack(err)
	case "prototext":
		blob, err := prototext.MarshalOptions{Multiline: true}.Marshal(info)
		return string(blob), errors.WithStack(err)
	case "text":
		return formatText(info), nil
	}
	return "", errors.Errorf("unknown format %q, valid values are text, json and prototext", format)
}

func formatText(info *structpb.Struct) string {
	m := info.AsMap()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Registered backends: %v\n", m["registered"])
	fmt.Fprintf(&sb, "Backend: %s\n", m["backend"])
	fmt.Fprintf(&sb, "Kernel families: %v\n", m["kernels"])
	devices, _ := m["devices"].([]any)
	fmt.Fprintf(&sb, "Devices: %d\n", len(devices))
	for _, d := range devices {
		entry := d.(map[string]any)
		// Numbers come back from structpb as float64.
		fmt.Fprintf(&sb, "  GPU #%d: max shared memory %d bytes", int(entry["gpu"].(float64)),
			int(entry["max_shared_memory"].(float64)))
		if status, ok := entry["round_trip"]; ok {
			fmt.Fprintf(&sb, ", round trip: %s", status)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Command fgdemo schedules a representative frame headlessly and prints
// the resulting execution order, barriers, and statistics. It needs no
// GPU: passes record against framegraph.NopEncoder.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gputypes"
)

func main() {
	var (
		width   = flag.Int("width", 1920, "frame width")
		height  = flag.Int("height", 1080, "frame height")
		frames  = flag.Int("frames", 3, "number of frames to schedule")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		framegraph.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	graph := framegraph.New(nil)

	for frame := 0; frame < *frames; frame++ {
		dt := 1.0 / 60.0
		//nolint:gosec // G115: frame counter is non-negative
		graph.BeginFrame(uint64(frame), dt, float64(frame)*dt)

		declareFrame(graph, uint32(*width), uint32(*height))

		graph.Compile()

		fmt.Printf("frame %d: %s\n", frame, graph.Stats())
		for _, pass := range graph.SortedPasses() {
			fmt.Printf("  %-12s %-8s", pass.Name(), pass.Type())
			for _, b := range pass.PreBarriers() {
				node := graph.Resource(b.Handle)
				fmt.Printf("  [%s: %s -> %s]", node.Name(), b.OldLayout, b.NewLayout)
			}
			fmt.Println()
		}

		graph.Execute(framegraph.NopEncoder{})
		graph.EndFrame()
	}
}

// declareFrame builds a shadow + scene + blur + UI frame, the shape most
// real renderers take.
func declareFrame(graph *framegraph.RenderGraph, width, height uint32) {
	shadowDesc := framegraph.DefaultTextureDescriptor(2048, 2048, gputypes.TextureFormatDepth24PlusStencil8)
	shadowDesc.Label = "shadow_map"
	shadowDesc.Usage = gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding

	colorDesc := framegraph.DefaultTextureDescriptor(width, height, gputypes.TextureFormatRGBA8Unorm)
	colorDesc.Label = "scene_color"

	shadow := graph.CreateTransientTexture("shadow_map", shadowDesc)
	sceneColor := graph.CreateTransientTexture("scene_color", colorDesc)
	blurred := graph.CreateTransientTexture("blurred", colorDesc)
	backbuffer := graph.ImportTexture("backbuffer", nil, nil, framegraph.LayoutColorAttachment)

	particles := graph.CreateTransientBuffer("particles", framegraph.BufferDescriptor{
		Label: "particles",
		Size:  256 * 1024,
		Usage: gputypes.BufferUsageStorage,
	})

	graph.AddComputePass("simulate").
		Write(particles, framegraph.LayoutGeneral).
		SetExecute(func(ctx *framegraph.PassContext) {
			log.Printf("simulate: frame %d, dt %.4f", ctx.FrameIndex, ctx.DeltaTime)
		})

	graph.AddGraphicsPass("shadow").
		Write(shadow, framegraph.LayoutDepthAttachment).
		SetDepthAttachment(shadow, gputypes.LoadOpClear, gputypes.StoreOpStore, 1.0)

	graph.AddGraphicsPass("scene").
		Read(shadow, framegraph.LayoutShaderReadOnly).
		Read(particles, framegraph.LayoutShaderReadOnly).
		Write(sceneColor, framegraph.LayoutColorAttachment).
		SetColorAttachment(0, sceneColor, gputypes.LoadOpClear, gputypes.StoreOpStore,
			gputypes.Color{R: 0.05, G: 0.05, B: 0.08, A: 1})

	graph.AddComputePass("blur").
		Read(sceneColor, framegraph.LayoutShaderReadOnly).
		Write(blurred, framegraph.LayoutGeneral)

	graph.AddGraphicsPass("composite").
		Read(blurred, framegraph.LayoutShaderReadOnly).
		Write(backbuffer, framegraph.LayoutColorAttachment).
		SetColorAttachment(0, backbuffer, gputypes.LoadOpLoad, gputypes.StoreOpStore, gputypes.Color{})

	graph.AddGraphicsPass("ui").
		DependsOn("composite").
		Write(backbuffer, framegraph.LayoutColorAttachment).
		SetColorAttachment(0, backbuffer, gputypes.LoadOpLoad, gputypes.StoreOpStore, gputypes.Color{})
}

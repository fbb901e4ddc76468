// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// likho writes text as synthetic handwriting, using a handwriting synthesis model.
//
// Example:
//
//	likho -model=~/models/handwriting.bin -text="Hello, World!" -out=/tmp -png=/tmp/hello.png
//
// To try the pipeline without a trained model, -make_zero_model=<path> writes an all-zero model
// (that scribbles randomly) and uses it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/Eeman1113/likho/pkg/ml/generation"
	"github.com/Eeman1113/likho/pkg/ml/strokes"
	"github.com/Eeman1113/likho/pkg/ml/weights/blob"
	"github.com/Eeman1113/likho/pkg/render/preview"
	"github.com/Eeman1113/likho/pkg/render/svg"
	"github.com/Eeman1113/likho/pkg/scribe"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagModel = flag.String("model", "", "Path or http(s) URL of the model file. "+
		"A leading \"~\" is expanded to the home directory.")
	flagText = flag.String("text", "", "Text to write. Use \"\\n\" to separate lines, each written "+
		"separately and then stacked.")
	flagSpeed = flag.Float64("speed", generation.DefaultSpeed, fmt.Sprintf("Writing speed, from %g to %g.",
		generation.MinSpeed, generation.MaxSpeed))
	flagBias = flag.Float64("bias", generation.DefaultBias, fmt.Sprintf("Legibility, from %g to %g: higher "+
		"values write more regular strokes.", generation.MinBias, generation.MaxBias))
	flagWidth = flag.Float64("width", generation.DefaultStrokeWidth, fmt.Sprintf("Stroke width, from %g to %g.",
		generation.MinStrokeWidth, generation.MaxStrokeWidth))
	flagStyle = flag.Int("style", 0, fmt.Sprintf("Writing style, from 1 to %d, or 0 for none.",
		len(generation.StylePresets)))
	flagSeed     = flag.Uint64("seed", 0, "Random seed for sampling. 0 uses a time-based seed.")
	flagSettings = flag.String("set", "", "Sampling settings, overriding the flags: a list separated by \";\" "+
		"of \"<param>=<value>\" (params: speed, bias, width, style, seed, max_steps), "+
		"or \"file:<path>\" to read settings from a file.")
	flagOut       = flag.String("out", ".", "Directory where to export the SVG file, named after the text.")
	flagPNG       = flag.String("png", "", "If set, also saves a preview image to this path. The extension selects the format.")
	flagSmooth    = flag.Int("smooth", 0, "If > 0, smooths the strokes with B-splines, using this many points per segment.")
	flagSpacing   = flag.Float64("line_spacing", 10, "Vertical space between lines.")
	flagSummary   = flag.Bool("summary", false, "Display a summary of the model and of the generation runs.")
	flagLayers    = flag.Bool("layers", false, "List the layers of the model. Also listed with -summary.")
	flagZeroModel = flag.String("make_zero_model", "", "Write an all-zero model to this path, and use it "+
		"if -model is not set.")
	flagOverwrite = flag.Bool("overwrite", false, "Allow -make_zero_model to overwrite an existing file.")
	flagProgress  = flag.Bool("progress", true, "Display a progress bar when downloading the model.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if len(flag.Args()) > 0 {
		klog.Errorf("Unexpected arguments %q, the text is given with -text. See 'likho -help'.", flag.Args())
		os.Exit(1)
	}
	err := exceptions.TryCatch[error](run)
	if err != nil {
		klog.Errorf("likho failed: %+v", err)
		os.Exit(1)
	}
}

func run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *flagZeroModel != "" {
		must.M(writeZeroModel(*flagZeroModel, *flagOverwrite))
		fmt.Printf("Zero model written to %q\n", *flagZeroModel)
		if *flagModel == "" {
			*flagModel = *flagZeroModel
		}
	}
	if *flagModel == "" {
		exceptions.Panicf("missing -model, see 'likho -help'")
	}

	params := paramsFromFlags()
	session := scribe.New(scribe.Options{
		Load:         blob.LoadOptions{ShowProgress: *flagProgress},
		SmoothPoints: *flagSmooth,
	})
	must.M(session.Load(ctx, *flagModel))
	if *flagSummary {
		modelSummary(session)
	}
	if *flagSummary || *flagLayers {
		layersTable(session.Weights())
	}
	if *flagText == "" {
		return
	}

	lines := splitLines(*flagText)
	results := must.M1(session.WriteLines(ctx, lines, params))
	drawings := make([]*strokes.Drawing, len(results))
	for ii, result := range results {
		drawings[ii] = result.Drawing
	}
	drawing := strokes.Stack(drawings, *flagSpacing)
	if *flagSummary {
		runsTable(results)
	}

	svgPath := must.M1(svg.ExportFile(*flagOut, strings.Join(lines, " "), drawing))
	fmt.Printf("Handwriting saved to %q\n", svgPath)
	if *flagPNG != "" {
		must.M(preview.Save(*flagPNG, drawing))
		fmt.Printf("Preview saved to %q\n", *flagPNG)
	}
}

// paramsFromFlags builds the sampling parameters from the flags and -set, clamped to the valid ranges.
func paramsFromFlags() generation.Params {
	params := generation.DefaultParams()
	params.Speed = *flagSpeed
	params.Bias = *flagBias
	params.StrokeWidth = *flagWidth
	params.Style = must.M1(generation.StylePreset(*flagStyle))
	params.Seed = *flagSeed
	if *flagSettings != "" {
		paramsSet := must.M1(generation.ParseSettings(&params, *flagSettings))
		klog.V(1).Infof("Settings from -set: %v", paramsSet)
	}
	clamped := params.Clamp()
	if clamped != params {
		klog.Warningf("Sampling parameters clamped to the valid ranges: %s", clamped)
	}
	must.M(clamped.Validate())
	return clamped
}

// splitLines splits the text on new lines or on a literal "\n", dropping empty lines.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, `\n`, "\n")
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

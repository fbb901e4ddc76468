// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"time"

	"github.com/Eeman1113/likho/pkg/core/tensors"
	"github.com/Eeman1113/likho/pkg/ml/layers/synthesis"
	"github.com/Eeman1113/likho/pkg/ml/weights"
	"github.com/Eeman1113/likho/pkg/scribe"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// modelSummary prints the model source, sizes and dimensions.
func modelSummary(session *scribe.Session) {
	ws := session.Weights()
	fmt.Println(titleStyle.Render("Model"))
	t := newTable(nil, lipgloss.Right, lipgloss.Left)
	t.Row(false, "source", session.Source())
	t.Row(false, "loaded", humanize.Time(session.LoadedAt()))
	t.Row(false, "# layers", humanize.Comma(int64(ws.Len())))
	t.Row(false, "# parameters", humanize.Comma(int64(ws.NumParameters())))
	t.Row(false, "# bytes", humanize.Bytes(uint64(ws.Memory())))
	var numSparse int
	ws.Enumerate(func(_ string, tensor *tensors.Tensor) {
		if tensor.Storage() == tensors.StorageSparse {
			numSparse++
		}
	})
	t.Row(false, "# sparse layers", humanize.Comma(int64(numSparse)))
	if model, err := synthesis.New(ws); err == nil {
		config := model.Config()
		t.Row(false, "hidden", humanize.Comma(int64(config.Hidden)))
		t.Row(false, "window", humanize.Comma(int64(config.Window)))
		t.Row(false, "mixtures", humanize.Comma(int64(config.Mixtures)))
		t.Row(false, "vocabulary", humanize.Comma(int64(config.Vocabulary)))
		t.Row(false, "styles", humanize.Comma(int64(config.Styles)))
	}
	fmt.Println(t.Render())
}

// layersTable lists the layers of the model. Layers not used by the synthesis model are highlighted.
func layersTable(ws *weights.Set) {
	used := make(map[string]bool)
	for _, name := range synthesis.RequiredLayers {
		used[name] = true
	}
	used[synthesis.LayerStyles] = true

	fmt.Println(titleStyle.Render("Layers"))
	t := newTable([]string{"Name", "Shape", "Storage", "Non-zeros", "Size", "Bytes"},
		lipgloss.Left, lipgloss.Left, lipgloss.Left, lipgloss.Right)
	ws.Enumerate(func(name string, tensor *tensors.Tensor) {
		storage := tensor.Storage().String()
		if tensor.Storage() == tensors.StorageSparse {
			storage = fmt.Sprintf("%s/%s", storage, tensor.Encoding())
		}
		t.Row(!used[name], name, tensor.Shape().String(), storage,
			humanize.Comma(int64(tensor.NonZeros())),
			humanize.Comma(int64(tensor.Size())),
			humanize.Bytes(uint64(tensor.Shape().Memory())))
	})
	fmt.Println(t.Render())
}

// runsTable lists the generation runs. Runs that hit the step ceiling are highlighted.
func runsTable(results []*scribe.Result) {
	fmt.Println(titleStyle.Render("Runs"))
	t := newTable([]string{"Line", "Run", "Steps", "Finished", "Strokes", "Points", "Time"},
		lipgloss.Left, lipgloss.Left, lipgloss.Right, lipgloss.Left, lipgloss.Right)
	for _, result := range results {
		t.Row(!result.Finished, result.Text, result.RunID.String(),
			humanize.Comma(int64(result.Steps)),
			fmt.Sprint(result.Finished),
			humanize.Comma(int64(len(result.Drawing.Runs))),
			humanize.Comma(int64(result.Drawing.NumPoints())),
			result.Elapsed.Round(time.Millisecond).String())
	}
	fmt.Println(t.Render())
}

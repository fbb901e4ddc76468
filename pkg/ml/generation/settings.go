// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package generation

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/Eeman1113/likho/pkg/support/fsutil"
	"github.com/pkg/errors"
)

// ParseSettings updates params from settings -- typically the contents of a flag set by the user.
// The settings are a list separated by ";": e.g.: "speed=3.1;bias=1.2;style=none".
//
// Known parameters: speed, bias, width (or stroke_width), style (an id, or "none"), seed and max_steps.
// For integer values "_" is removed, so large numbers can be written as 1_000.
//
// A setting "file:<path>" reads settings from a file, one or more per line. Lines starting with "#"
// are ignored.
//
// It returns the list of parameters set, in order.
func ParseSettings(params *Params, settings string) (paramsSet []string, err error) {
	for _, setting := range strings.Split(settings, ";") {
		paramsSet, err = parseSetting(params, setting, paramsSet)
		if err != nil {
			return
		}
	}
	return
}

func parseSetting(params *Params, setting string, paramsSet []string) (newParamsSet []string, err error) {
	newParamsSet = paramsSet
	setting = strings.TrimSpace(setting)
	if setting == "" {
		return
	}
	if strings.HasPrefix(setting, "file:") {
		filePath := strings.TrimPrefix(setting, "file:")
		filePath, err = fsutil.ReplaceTildeInDir(filePath)
		if err != nil {
			return
		}
		var contents []byte
		contents, err = os.ReadFile(filePath)
		if err != nil {
			err = errors.Wrapf(err, "failed to read settings from file %q", filePath)
			return
		}
		for _, line := range strings.Split(string(contents), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			for _, setting := range strings.Split(line, ";") {
				newParamsSet, err = parseSetting(params, setting, newParamsSet)
				if err != nil {
					return
				}
			}
		}
		return
	}

	parts := strings.Split(setting, "=")
	if len(parts) != 2 {
		err = errors.Errorf("can't parse settings %q: each setting requires the format \"<param>=<value>\"", setting)
		return
	}
	name, valueStr := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	switch name {
	case "speed":
		err = json.Unmarshal([]byte(valueStr), &params.Speed)
	case "bias":
		err = json.Unmarshal([]byte(valueStr), &params.Bias)
	case "width", "stroke_width":
		err = json.Unmarshal([]byte(valueStr), &params.StrokeWidth)
	case "style":
		if valueStr == "none" {
			params.Style = StyleNone
			break
		}
		var style int
		err = json.Unmarshal([]byte(strings.ReplaceAll(valueStr, "_", "")), &style)
		if err == nil {
			params.Style = Style(style)
		}
	case "seed":
		err = json.Unmarshal([]byte(strings.ReplaceAll(valueStr, "_", "")), &params.Seed)
	case "max_steps":
		err = json.Unmarshal([]byte(strings.ReplaceAll(valueStr, "_", "")), &params.MaxSteps)
	default:
		err = errors.Errorf("unknown parameter %q in setting %q, known parameters are speed, bias, width, style, seed and max_steps",
			name, setting)
		return
	}
	if err != nil {
		err = errors.Wrapf(err, "failed to parse value %q for parameter %q", valueStr, name)
		return
	}
	newParamsSet = append(newParamsSet, name)
	return
}

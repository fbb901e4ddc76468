// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package scribe

// State of the model of a Session.
//
//go:generate go tool enumer -type=State -trimprefix=State -transform=snake -text -values -output=gen_state_enumer.go
type State int32

const (
	// StateNotLoaded is the state before the first Load.
	StateNotLoaded State = iota

	// StateLoading while a Load is in progress. A previously loaded model is still used meanwhile.
	StateLoading

	// StateReady when a model is loaded.
	StateReady

	// StateFailed when the first Load failed. Failed reloads keep the previous model, and the
	// session in StateReady.
	StateFailed
)

//go:build js && wasm

// Command wasm exposes the traction engine to the browser via WebAssembly.
// After loading, it registers two global JavaScript functions:
//
//	runSimulation(jsonString) -> jsonString
//	convoyMetrics(jsonString) -> jsonString
//
// The input and output of runSimulation are a JSON-encoded SimulationInput
// and SimulationLog, convoyMetrics takes a MetricsInput and returns
// ConvoyMetrics: the same contract the CLI uses.
package main

import (
	"syscall/js"

	"github.com/cxd309/traction-engine/internal/engine"
)

func main() {
	js.Global().Set("runSimulation", js.FuncOf(wrap(engine.RunJSON)))
	js.Global().Set("convoyMetrics", js.FuncOf(wrap(engine.MetricsJSON)))
	select {} // keep the WASM module alive until the page is closed
}

func wrap(entry func(string, ...engine.Option) (string, error)) func(js.Value, []js.Value) any {
	return func(_ js.Value, args []js.Value) any {
		if len(args) < 1 {
			return map[string]any{"error": "no input provided"}
		}
		result, err := entry(args[0].String())
		if err != nil {
			return map[string]any{"error": err.Error()}
		}
		return result
	}
}

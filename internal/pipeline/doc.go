// Package pipeline runs the phases of a diagnostic run in sequence.
//
// A diagnostic run has three phases in fixed order: configuration
// inspection, reachability probing, and CORS testing against the first
// reachable server. Each phase is a Step that receives the run's
// model.DiagnosticReport and appends its results.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It provides consistent error handling and logging across steps
// 2. It supports cancellation between phases via context
// 3. It allows easy addition/removal of steps without modifying core logic
//
// Concurrency lives inside the reachability and CORS phases; the pipeline
// itself is sequential so the report order never depends on timing.
package pipeline

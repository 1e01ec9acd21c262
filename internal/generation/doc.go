// Package generation is the orchestration layer between the application and
// the generative AI endpoint that writes exam questions.
//
// It turns reference files plus exam parameters into a validated request
// (BuildExamRequest), runs endpoint calls under a retry policy that retries
// rate limiting and temporary unavailability with exponential backoff
// (RetryPolicy), and turns the endpoint's JSON text into domain questions
// with batch-unique identifiers (Normalizer). Failures are reported with the
// sentinel errors in errors.go; transport adapters classify endpoint failures
// into a *CallError so the retry policy can tell transient from terminal ones.
//
// The Generator interface is the boundary implemented by the Gemini adapter
// in internal/platform/gemini.
package generation

// Package gemini implements generation.Generator on top of Google's Gemini
// API (google.golang.org/genai).
//
// It is the infrastructure adapter between the generation core and the
// external endpoint:
//
//   - Transport resolves a credential and builds a fresh client for every
//     attempt, then extracts the response text.
//   - Classify translates endpoint failures into generation.CallError kinds,
//     which drive the retry policy.
//   - QuestionListSchema and AnalysisSchema constrain the endpoint's output
//     to the shapes the normalizer parses.
//   - Generator ties these together with the request builder, the retry
//     policy and the normalizer.
package gemini

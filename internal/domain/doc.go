// Package domain contains the core business entities of the exam generator:
// reference files, exam parameters, questions, analysis results, exam sessions
// and users. It is independent of the generative endpoint, the database and
// the HTTP delivery layer.
package domain

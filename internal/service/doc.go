// Package service contains the application use cases: signing learners in,
// generating exams from their reference files, scoring submitted answers,
// analyzing results and generating follow-up exams focused on weak topics.
//
// Services depend on the store interfaces and on generation.Generator, never
// on a concrete database or endpoint client.
package service

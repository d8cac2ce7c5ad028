// Package learning defines the domain records produced by the content
// pipeline: learner profiles, profile analyses, planned learning paths,
// generated content, assessment items, and the final learning package.
//
// These types are deliberately free of workflow concerns. They are written by
// stage generators, threaded through the session state, and ultimately
// persisted by the library store once a run completes. Identifier fields are
// UUID strings assigned at creation.
package learning

// Package surveyio reads and writes the file formats the detection
// pipelines exchange with survey tooling.
//
// Responsibilities: CSV point clouds in and out, per-vertex trend line CSV,
// segment CSV for both pipelines, GeoJSON feature collections, and
// export-path containment for server-side writes.
//
// Dependency rule: depends on internal/trend, internal/edges and
// internal/security. No HTTP, no SQL.
package surveyio

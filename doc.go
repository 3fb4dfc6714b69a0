// Package fuzzor provides a lightweight orchestrator that builds and runs
// fuzz targets inside a containerized environment.
//
// The engine reads a declarative YAML document describing fuzz targets,
// builds every enabled project once per (project, sanitizer) pair and then
// runs each target under a bounded worker pool, streaming helper output to
// per-target artifact logs for later triage.
//
// End-users typically interact with the orchestrator via the high-level
// Service façade exposed by the root package:
//
//	srv := fuzzor.New(fuzzor.WithConfig(cfg))
//	err := srv.Run(ctx)
//
// For more details see the individual sub-packages.
package fuzzor

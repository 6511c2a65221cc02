// Package services implements the core use cases of the sync pipeline:
// the paginated fetch and enrichment run, the snapshot merge engine, the
// recovery source loader and the consistency reporter.
package services

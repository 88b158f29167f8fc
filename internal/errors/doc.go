// Package errors provides structured errors for the muncher pipeline.
//
// Errors carry a Code, a user-facing Message, an optional Cause and metadata.
//
// # Basic Usage
//
//	err := errors.NotFoundf("document %q not found", name).
//	    WithMeta("collection", collection)
//
//	if err := repo.Insert(ctx, input); err != nil {
//	    return errors.Wrap(err, "failed to insert document")
//	}
//
// # Run-level taxonomy
//
// The import pipeline separates failures that stop a run from failures that
// only degrade a single entity:
//   - AcquisitionError: CodeUnavailable, CodeUnauthenticated, CodePermissionDenied.
//     The proxy could not be reached, or refused our credentials.
//   - RemoteRejection: CodeRemoteRejected. The proxy answered success=false;
//     GetMessage returns its message unchanged.
//   - EntitySynthesisError: never surfaced as an error value. The failing step
//     is rolled back for that entity and the run continues.
//   - PersistenceError: recorded on the per-entity upsert result.
//
// IsRunFatal reports whether an error belongs to the first two groups.
//
// # Validation Errors
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRequired("proxy.endpoint", cfg.Proxy.Endpoint, vb)
//	errors.ValidateEnum("homebrew", cfg.Homebrew, []string{"only", "exclude", "include"}, vb)
//	if err := vb.Build(); err != nil {
//	    return err
//	}
package errors

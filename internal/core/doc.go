// Package core provides the business logic for candidate CSV imports.
//
// It is independent of any transport and can be driven by the web handlers,
// a CLI or tests.
//
// # Pipeline
//
// An uploaded file goes through a fixed sequence of pure steps:
//
//  1. [ReadText] strips a UTF-8 BOM, replaces invalid bytes and enforces the
//     size limit.
//  2. [ParseText] splits lines, normalizes headers with [NormalizeHeaders]
//     and drops blank rows.
//  3. [AssemblePreviews] reads each mapped field through a [RowAccessor],
//     coerces numeric and custom values, and runs [ValidateCandidate].
//
// [ProcessFile] runs all three. Per-row problems never fail the file; they are
// reported as issues on the row. Only an unreadable, oversized or empty file
// is an error.
//
// # Sessions
//
// [Service.PreviewImport] keeps its result as an import session for a limited
// time so the operator can review it and then call [Service.CommitImport],
// which inserts only valid, non-excluded rows. A committed import can be
// undone with [Service.RollbackImport].
//
// # Audit
//
// With an [AuditStore] configured, previews, commits, rollbacks and template
// changes are recorded with the caller's address from [ContextWithClient].
// [Service.StartAuditRetention] purges old entries.
//
// # Error Handling
//
// Technical errors are mapped to coded messages with [MapError]:
// FILE, VAL, IMP, TPL, DB and RATE codes, with ERR000 as the fallback.
package core

// Package core provides the business logic for transaction fetch jobs.
//
// This package is the heart of the fetcher, containing all domain logic
// independent of any UI or transport layer. It can be used by web handlers,
// CLI tools, or tests without modification.
//
// # Architecture
//
// The package is organized around a few key concepts:
//
//   - Uploaded files: Parsed CSV hash lists held in memory, registered via
//     [Service.AddFile] and consumed by fetch jobs.
//   - Service: The main entry point for all operations (upload, fetch,
//     progress, export).
//   - Fetch jobs: One background goroutine per job walks the rows in order,
//     resolving each hash against the explorer API.
//   - Job limiter: A weighted semaphore bounds concurrent jobs.
//
// # Fetch Flow
//
//  1. Client calls [Service.AddFile] with the raw CSV bytes and receives a
//     preview with the detected columns.
//  2. Client calls [Service.StartFetch] naming the hash column; a job ID is
//     returned immediately.
//  3. The worker fetches one hash at a time, pausing a configurable delay
//     between API calls. Row-level failures become error statuses in the
//     output, never job failures.
//  4. Progress is broadcast to subscribers via [Service.SubscribeProgress];
//     the finished result is available from [Service.GetResult] and can be
//     exported with [WriteResultsCSV].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - NET001-NET003: Network errors reaching the explorer API
//   - FILE001-FILE006: File errors (size, encoding, format)
//   - COL001: Hash column resolution
//   - JOB001-JOB006: Job lifecycle errors (cancelled, timeout, not found)
//   - RATE001: Request throttling
package core

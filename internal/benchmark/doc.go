// SPDX-License-Identifier: MPL-2.0

// Package benchmark drives repeated build-and-verify cycles across every
// backend and collects one elapsed-time sample per backend per repetition.
//
// A session moves through Idle, WarmingUp, Running, Finalizing and Done.
// Repetitions run strictly one after another and backends within a
// repetition run one at a time, so builds never contend for the machine.
// A failing backend or repetition is recorded as a null sample with a
// warning; it never aborts the session.
package benchmark

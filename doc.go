// Package expenses implements a single-user expense ledger backed by plain
// files. It is designed to be local-first and auditable: the data is a CSV
// file the user can open and edit, and everything the application knows
// lives in one directory the user owns.
//
// The core functionalities include:
//   - Ledger Management: Recording expenses and income as an append-mostly
//     CSV file, where deleting marks a record instead of erasing it and a
//     transaction is identified by its date, merchant and amount, making
//     every import idempotent.
//   - Import and Sync: Mapping foreign bank-export CSV files and TrueLayer
//     bank feeds into candidate batches that merge safely into the ledger.
//   - Safety Net: Throttled tar.gz backups of the whole data directory
//     before every change, with pruning, explicit restore, and automatic
//     recovery when the ledger file turns out corrupted.
//   - Insight: Monthly summaries with spending trends, merchant display
//     aliases, category assignments, and AI-suggested categories.
//
// This package serves as the foundational logic for the `exps` command-line
// tool, ensuring that all operations are consistent and based on a single
// source of truth.
package expenses

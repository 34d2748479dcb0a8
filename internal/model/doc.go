// Package model defines the entities shared by the replica, queue, and sync
// engine: students, payments, expenses, the session user, and the mutation
// envelopes that travel to the remote endpoint.
//
// Wire compatibility: field names and loose typing (numeric strings, two date
// layouts) follow the spreadsheet endpoint's existing JSON contract. The
// flexible types in this package (Rupees, FlexString, TxnRef) absorb that
// looseness at the boundary so the rest of the codebase works with proper Go
// types.
package model

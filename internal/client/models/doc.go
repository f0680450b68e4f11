// Package models defines the records exchanged with the Bitácora API:
// service logs (bitácoras) and their line items (partidas), payment
// enumerations, the signed-in user, report summaries and the typed
// submissions sent on create/update.
//
// JSON tags follow the server's field names, which are Spanish.
package models
